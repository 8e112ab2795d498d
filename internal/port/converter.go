package port

import (
	"context"
	"encoding/json"

	"docrag/internal/domain"
)

// Converter turns source files into structured text via an external
// conversion service. Convert is cache-aware: identical bytes (same hash)
// are served from the on-disk cache without touching the service.
type Converter interface {
	// Convert converts the file, using the conversion cache keyed by the
	// file's content hash. A cached conversion carries no structured
	// payload.
	Convert(ctx context.Context, file domain.DiscoveredFile) (domain.DocumentConversion, error)

	// Reconvert calls the conversion service directly, bypassing the
	// cache. Used to reconstruct the opaque structured payload when
	// delegated chunking needs it.
	Reconvert(ctx context.Context, path string) (domain.DocumentConversion, error)

	// ChunkStructured runs the conversion service's own chunker over an
	// opaque structured payload and returns the chunk texts in order.
	ChunkStructured(ctx context.Context, structured json.RawMessage, maxTokens int) ([]string, error)
}
