package store

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"docrag/internal/domain"
)

var collectionNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Metadata fields promoted to dedicated columns so equality filters can
// hit indexes. Everything else lives in the metadata JSONB column.
var filterColumns = map[string]bool{
	"source_path":  true,
	"file_name":    true,
	"section_path": true,
	"doc_id":       true,
	"sha256":       true,
}

// PgvectorStore keeps records in a Postgres table with a pgvector column.
// Ranking uses L2 distance; scores are mapped to 1/(1+distance) so higher
// still means closer.
type PgvectorStore struct {
	pool  *pgxpool.Pool
	table string
}

func NewPgvectorStore(ctx context.Context, connStr string) (*PgvectorStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &PgvectorStore{pool: pool}, nil
}

func (s *PgvectorStore) EnsureCollection(ctx context.Context, name string, dims int) error {
	if !collectionNameRe.MatchString(name) {
		return fmt.Errorf("invalid collection name: %q", name)
	}
	if dims <= 0 {
		return fmt.Errorf("invalid dimension: %d", dims)
	}
	s.table = name

	tbl := pgx.Identifier{name}.Sanitize()
	query := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			embedding vector(%d),
			source_path TEXT,
			file_name TEXT,
			section_path TEXT,
			doc_id TEXT,
			sha256 TEXT,
			metadata JSONB
		);

		CREATE INDEX IF NOT EXISTS %s ON %s USING ivfflat (embedding vector_l2_ops)
		WITH (lists = 100);

		CREATE INDEX IF NOT EXISTS %s ON %s (source_path);
		CREATE INDEX IF NOT EXISTS %s ON %s (doc_id);
	`,
		tbl, dims,
		pgx.Identifier{"idx_" + name + "_embedding"}.Sanitize(), tbl,
		pgx.Identifier{"idx_" + name + "_source_path"}.Sanitize(), tbl,
		pgx.Identifier{"idx_" + name + "_doc_id"}.Sanitize(), tbl,
	)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

func (s *PgvectorStore) Upsert(ctx context.Context, records []domain.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}
	if s.table == "" {
		return fmt.Errorf("collection not initialized")
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, content, embedding, source_path, file_name, section_path, doc_id, sha256, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			source_path = EXCLUDED.source_path,
			file_name = EXCLUDED.file_name,
			section_path = EXCLUDED.section_path,
			doc_id = EXCLUDED.doc_id,
			sha256 = EXCLUDED.sha256,
			metadata = EXCLUDED.metadata
	`, pgx.Identifier{s.table}.Sanitize())

	batch := &pgx.Batch{}
	for _, rec := range records {
		metaJSON, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", rec.ID, err)
		}
		batch.Queue(query,
			rec.ID,
			rec.Text,
			pgvector.NewVector(rec.Vector),
			metaString(rec.Metadata, "source_path"),
			metaString(rec.Metadata, "file_name"),
			metaString(rec.Metadata, "section_path"),
			metaString(rec.Metadata, "doc_id"),
			metaString(rec.Metadata, "sha256"),
			metaJSON,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert records: %w", err)
		}
	}
	return nil
}

func (s *PgvectorStore) Search(ctx context.Context, vector []float32, topK int, filters map[string]string) ([]domain.SearchResult, error) {
	if s.table == "" {
		return nil, fmt.Errorf("collection not initialized")
	}
	if topK <= 0 {
		topK = 5
	}

	where := "WHERE embedding IS NOT NULL"
	args := []any{pgvector.NewVector(vector), topK}
	for k, v := range filters {
		if !filterColumns[k] {
			return nil, fmt.Errorf("unsupported filter field: %s", k)
		}
		args = append(args, v)
		where += fmt.Sprintf(" AND %s = $%d", k, len(args))
	}

	query := fmt.Sprintf(`
		SELECT id, content, metadata, (embedding <-> $1) AS distance
		FROM %s
		%s
		ORDER BY embedding <-> $1
		LIMIT $2
	`, pgx.Identifier{s.table}.Sanitize(), where)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var (
			id       string
			content  string
			metaJSON []byte
			distance float64
		)
		if err := rows.Scan(&id, &content, &metaJSON, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		metadata := map[string]any{}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &metadata); err != nil {
				return nil, fmt.Errorf("failed to parse metadata for %s: %w", id, err)
			}
		}
		results = append(results, domain.SearchResult{
			ID:       id,
			Score:    distanceToScore(distance),
			Text:     content,
			Metadata: metadata,
		})
	}
	return results, rows.Err()
}

func (s *PgvectorStore) Close() error {
	s.pool.Close()
	return nil
}

// distanceToScore maps an L2 distance onto (0, 1] with higher meaning
// closer. Identical vectors score 1.
func distanceToScore(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}

func metaString(metadata map[string]any, key string) string {
	if v, ok := metadata[key].(string); ok {
		return v
	}
	return ""
}
