package port

import "docrag/internal/domain"

// FileWalker enumerates candidate source files under a root directory,
// applying name patterns and the size cap before hashing.
type FileWalker interface {
	// Walk returns the discovered files plus per-file errors for entries
	// that matched the filters but could not be read or hashed. Filter
	// misses are not errors.
	Walk(root string) ([]domain.DiscoveredFile, []error)
}
