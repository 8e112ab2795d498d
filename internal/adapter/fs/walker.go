package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"docrag/internal/domain"
)

// Walker discovers ingestible files. Include/exclude patterns match the
// file's base name; the size cap is enforced before any bytes are hashed.
type Walker struct {
	includes  []string
	excludes  []string
	maxFileMB int64
}

func NewWalker(includes, excludes []string, maxFileMB int64) *Walker {
	if len(includes) == 0 {
		includes = []string{"*"}
	}
	if maxFileMB <= 0 {
		maxFileMB = 50
	}
	return &Walker{
		includes:  includes,
		excludes:  excludes,
		maxFileMB: maxFileMB,
	}
}

// Walk enumerates files under root. Files failing the name or size filter
// are silently excluded. Files that match but cannot be read or hashed
// yield a per-file error without aborting the pass.
func (w *Walker) Walk(root string) ([]domain.DiscoveredFile, []error) {
	var files []domain.DiscoveredFile
	var errs []error

	maxBytes := w.maxFileMB * 1024 * 1024

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			errs = append(errs, fmt.Errorf("walk %s: %w", path, err))
			return nil
		}
		if info.IsDir() {
			return nil
		}

		name := filepath.Base(path)
		if !w.shouldInclude(name) || w.shouldExclude(name) {
			return nil
		}
		if info.Size() > maxBytes {
			return nil
		}

		sum, err := hashFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("hash %s: %w", path, err))
			return nil
		}

		files = append(files, domain.DiscoveredFile{
			Path:      path,
			SizeBytes: info.Size(),
			SHA256:    sum,
		})
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}

	return files, errs
}

func (w *Walker) shouldInclude(name string) bool {
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(name string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// hashFile computes the SHA-256 hex digest of the file's full byte stream.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
