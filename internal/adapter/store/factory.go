package store

import (
	"context"
	"fmt"
	"time"

	"docrag/config"
	"docrag/internal/port"
)

// New builds a vector store for the configured provider. Unknown
// providers fail before any connection is attempted.
func New(ctx context.Context, cfg config.VectorDBConfig) (port.VectorStore, error) {
	switch cfg.Provider {
	case "qdrant":
		url := cfg.URL
		if url == "" && cfg.Host != "" {
			p := cfg.Port
			if p == 0 {
				p = 6333
			}
			url = fmt.Sprintf("http://%s:%d", cfg.Host, p)
		}
		if url == "" {
			return nil, fmt.Errorf("qdrant: url is required")
		}
		return NewQdrantStore(QdrantConfig{
			URL:        url,
			APIKey:     cfg.APIKey,
			Collection: cfg.Collection,
			Timeout:    30 * time.Second,
		}), nil
	case "pgvector":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("pgvector: dsn is required")
		}
		return NewPgvectorStore(ctx, cfg.DSN)
	case "local":
		path := cfg.Path
		if path == "" {
			path = "data/vectors.db"
		}
		return NewLocalStore(path)
	default:
		return nil, fmt.Errorf("unknown vector store provider: %s", cfg.Provider)
	}
}
