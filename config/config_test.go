package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunking.Strategy != "hierarchical" {
		t.Errorf("expected default strategy 'hierarchical', got '%s'", cfg.Chunking.Strategy)
	}
	if cfg.Chunking.MaxTokens <= cfg.Chunking.OverlapTokens {
		t.Errorf("default overlap (%d) must be smaller than max tokens (%d)",
			cfg.Chunking.OverlapTokens, cfg.Chunking.MaxTokens)
	}
	if cfg.VectorDB.Provider != "qdrant" {
		t.Errorf("expected default provider 'qdrant', got '%s'", cfg.VectorDB.Provider)
	}
	if cfg.Embeddings.BatchSize <= 0 {
		t.Error("default batch size must be positive")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.VectorDB.Collection != "documents" {
		t.Errorf("expected default collection, got '%s'", cfg.VectorDB.Collection)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data:
  input_dir: /tmp/docs
  include_glob: ["*.pdf"]
  max_file_mb: 10
chunking:
  strategy: markdown
  max_tokens: 256
  overlap_tokens: 32
vectordb:
  provider: pgvector
  dsn: postgres://localhost/rag
  collection: papers
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Data.InputDir != "/tmp/docs" {
		t.Errorf("unexpected input dir: %s", cfg.Data.InputDir)
	}
	if cfg.Chunking.Strategy != "markdown" {
		t.Errorf("unexpected strategy: %s", cfg.Chunking.Strategy)
	}
	if cfg.VectorDB.Provider != "pgvector" {
		t.Errorf("unexpected provider: %s", cfg.VectorDB.Provider)
	}
	// Unset sections keep their defaults.
	if cfg.Embeddings.Model != "text-embedding-3-small" {
		t.Errorf("expected default embedding model, got '%s'", cfg.Embeddings.Model)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QDRANT_URL", "http://qdrant:6333")
	t.Setenv("PGVECTOR_DSN", "postgres://env/rag")
	t.Setenv("EMBEDDINGS_MODEL", "text-embedding-3-large")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.VectorDB.URL != "http://qdrant:6333" {
		t.Errorf("QDRANT_URL override not applied: %s", cfg.VectorDB.URL)
	}
	if cfg.VectorDB.DSN != "postgres://env/rag" {
		t.Errorf("PGVECTOR_DSN override not applied: %s", cfg.VectorDB.DSN)
	}
	if cfg.Embeddings.Model != "text-embedding-3-large" {
		t.Errorf("EMBEDDINGS_MODEL override not applied: %s", cfg.Embeddings.Model)
	}
}
