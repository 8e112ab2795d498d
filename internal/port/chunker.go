package port

import (
	"context"

	"docrag/internal/domain"
)

// Chunker splits a converted document into bounded, overlapping chunks.
// Chunk indices are 0-based and contiguous for a single invocation.
type Chunker interface {
	Chunk(ctx context.Context, conv domain.DocumentConversion) ([]domain.Chunk, error)
}
