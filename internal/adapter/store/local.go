package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"go.etcd.io/bbolt"

	"docrag/internal/domain"
)

var bucketMeta = []byte("meta")

// LocalStore is a file-backed vector store for offline runs and tests.
// Records live in one bbolt bucket per collection; search is brute-force
// cosine similarity over every record.
type LocalStore struct {
	db         *bbolt.DB
	collection string
}

type localRecord struct {
	Vector   []float32      `json:"vector"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

func NewLocalStore(path string) (*LocalStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	return &LocalStore{db: db}, nil
}

func (s *LocalStore) EnsureCollection(ctx context.Context, name string, dims int) error {
	if name == "" {
		return fmt.Errorf("collection name is empty")
	}
	if dims <= 0 {
		return fmt.Errorf("invalid dimension: %d", dims)
	}
	s.collection = name

	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", name, err)
		}
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		return meta.Put([]byte(name), []byte(fmt.Sprintf("%d", dims)))
	})
}

func (s *LocalStore) Upsert(ctx context.Context, records []domain.EmbeddingRecord) error {
	if s.collection == "" {
		return fmt.Errorf("collection not initialized")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(s.collection))
		if b == nil {
			return fmt.Errorf("collection not found: %s", s.collection)
		}
		for _, rec := range records {
			data, err := json.Marshal(localRecord{
				Vector:   rec.Vector,
				Text:     rec.Text,
				Metadata: rec.Metadata,
			})
			if err != nil {
				return fmt.Errorf("failed to marshal record %s: %w", rec.ID, err)
			}
			if err := b.Put([]byte(rec.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *LocalStore) Search(ctx context.Context, vector []float32, topK int, filters map[string]string) ([]domain.SearchResult, error) {
	if s.collection == "" {
		return nil, fmt.Errorf("collection not initialized")
	}
	if topK <= 0 {
		topK = 5
	}

	var results []domain.SearchResult
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(s.collection))
		if b == nil {
			return fmt.Errorf("collection not found: %s", s.collection)
		}
		return b.ForEach(func(k, v []byte) error {
			var rec localRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("failed to parse record %s: %w", k, err)
			}
			if !matchesFilters(rec.Metadata, filters) {
				return nil
			}
			results = append(results, domain.SearchResult{
				ID:       string(k),
				Score:    cosineSimilarity(vector, rec.Vector),
				Text:     rec.Text,
				Metadata: rec.Metadata,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

func matchesFilters(metadata map[string]any, filters map[string]string) bool {
	for k, want := range filters {
		got, ok := metadata[k].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
