package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the docrag pipeline.
type Config struct {
	Data       DataConfig      `yaml:"data"`
	Converter  ConverterConfig `yaml:"converter"`
	Chunking   ChunkingConfig  `yaml:"chunking"`
	Embeddings EmbeddingConfig `yaml:"embeddings"`
	VectorDB   VectorDBConfig  `yaml:"vectordb"`
	RAG        RAGConfig       `yaml:"rag"`
	Server     ServerConfig    `yaml:"server"`
	Logging    LoggingConfig   `yaml:"logging"`
}

// DataConfig holds discovery and cache configuration.
type DataConfig struct {
	InputDir    string   `yaml:"input_dir"`
	IncludeGlob []string `yaml:"include_glob"`
	ExcludeGlob []string `yaml:"exclude_glob"`
	MaxFileMB   int64    `yaml:"max_file_mb"`
	CacheDir    string   `yaml:"cache_dir"`
}

// ConverterConfig holds the external conversion service configuration.
type ConverterConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
	CacheConverted bool   `yaml:"cache_converted"`
}

// ChunkingConfig holds chunking configuration.
type ChunkingConfig struct {
	Strategy      string `yaml:"strategy"` // "token", "hierarchical", "markdown", "docling"
	MaxTokens     int    `yaml:"max_tokens"`
	OverlapTokens int    `yaml:"overlap_tokens"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"` // "openai", "huggingface", "mock"
	Model       string `yaml:"model"`
	BatchSize   int    `yaml:"batch_size"`
	TimeoutSecs int    `yaml:"request_timeout_secs"`
}

// VectorDBConfig holds vector store configuration. URL/Host/Port/APIKey
// apply to qdrant, DSN to pgvector, Path to the local bbolt store.
type VectorDBConfig struct {
	Provider   string `yaml:"provider"` // "qdrant", "pgvector", "local"
	URL        string `yaml:"url"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	APIKey     string `yaml:"api_key"`
	DSN        string `yaml:"dsn"`
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
}

// RAGConfig holds answer generation configuration.
type RAGConfig struct {
	LLMProvider     string `yaml:"llm_provider"` // "openai", "ollama"
	LLMModel        string `yaml:"llm_model"`
	LLMURL          string `yaml:"llm_url"`
	MaxContextChars int    `yaml:"max_context_chars"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			InputDir:    "data/input",
			IncludeGlob: []string{"*.pdf", "*.docx", "*.md", "*.txt"},
			ExcludeGlob: []string{},
			MaxFileMB:   50,
			CacheDir:    "data/cache",
		},
		Converter: ConverterConfig{
			BaseURL:        "http://localhost:5001",
			TimeoutSecs:    120,
			CacheConverted: true,
		},
		Chunking: ChunkingConfig{
			Strategy:      "hierarchical",
			MaxTokens:     512,
			OverlapTokens: 64,
		},
		Embeddings: EmbeddingConfig{
			Provider:    "openai",
			Model:       "text-embedding-3-small",
			BatchSize:   64,
			TimeoutSecs: 60,
		},
		VectorDB: VectorDBConfig{
			Provider:   "qdrant",
			URL:        "http://localhost:6333",
			Collection: "documents",
		},
		RAG: RAGConfig{
			LLMProvider:     "openai",
			LLMModel:        "gpt-4o-mini",
			MaxContextChars: 8000,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file and applies environment
// overrides. A missing file yields the defaults. Environment variables
// win over file values so deployments can override connection targets
// without editing configs.
func Load(path string) (*Config, error) {
	// API keys and overrides may live in a .env next to the process.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QDRANT_URL"); v != "" {
		cfg.VectorDB.URL = v
	}
	if v, ok := os.LookupEnv("QDRANT_API_KEY"); ok {
		cfg.VectorDB.APIKey = v
	}
	if v := os.Getenv("VECTOR_DSN"); v != "" {
		cfg.VectorDB.DSN = v
	} else if v := os.Getenv("PGVECTOR_DSN"); v != "" {
		cfg.VectorDB.DSN = v
	}
	if v := os.Getenv("EMBEDDINGS_PROVIDER"); v != "" {
		cfg.Embeddings.Provider = v
	}
	if v := os.Getenv("EMBEDDINGS_MODEL"); v != "" {
		cfg.Embeddings.Model = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.RAG.LLMProvider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.RAG.LLMModel = v
	}
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
