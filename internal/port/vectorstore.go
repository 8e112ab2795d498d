package port

import (
	"context"

	"docrag/internal/domain"
)

// VectorStore stores and searches embedding records. Implementations map
// the uniform contract onto backends with different native semantics;
// scores rank within one backend only and are not comparable across
// backends.
type VectorStore interface {
	// EnsureCollection idempotently creates the dimension-typed container
	// if it does not exist. Behavior when the container exists with a
	// different dimensionality is backend-defined.
	EnsureCollection(ctx context.Context, name string, dims int) error

	// Upsert inserts or replaces records by ID. Safe to call repeatedly
	// with overlapping ID sets.
	Upsert(ctx context.Context, records []domain.EmbeddingRecord) error

	// Search returns up to topK results ordered by descending relevance.
	// filters is an equality-predicate map over metadata fields; an empty
	// map means no filtering.
	Search(ctx context.Context, vector []float32, topK int, filters map[string]string) ([]domain.SearchResult, error)

	Close() error
}
