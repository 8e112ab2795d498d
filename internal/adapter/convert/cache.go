package convert

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"docrag/internal/domain"
)

// Cache stores conversion results on disk keyed by content hash. Writes
// are idempotent (same key, same value), so concurrent writers racing on
// one key are harmless; the rename keeps readers from ever seeing a
// partial file.
type Cache struct {
	dir string
}

func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) path(sha256 string) string {
	return filepath.Join(c.dir, sha256+".json")
}

// Get returns the cached conversion for the hash, or ok=false on a miss.
// Cached conversions carry no structured payload.
func (c *Cache) Get(sha256 string) (domain.DocumentConversion, bool, error) {
	data, err := os.ReadFile(c.path(sha256))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DocumentConversion{}, false, nil
		}
		return domain.DocumentConversion{}, false, fmt.Errorf("read conversion cache: %w", err)
	}

	var conv domain.DocumentConversion
	if err := json.Unmarshal(data, &conv); err != nil {
		return domain.DocumentConversion{}, false, fmt.Errorf("decode conversion cache %s: %w", sha256, err)
	}
	return conv, true, nil
}

// Put writes the conversion under the hash via temp file + rename.
func (c *Cache) Put(sha256 string, conv domain.DocumentConversion) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode conversion: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, sha256+".*.tmp")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), c.path(sha256)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish cache entry: %w", err)
	}
	return nil
}
