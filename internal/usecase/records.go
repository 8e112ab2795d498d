package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"docrag/internal/domain"
)

// StableID derives a deterministic record ID from the source path, the
// file's content hash, and the chunk index. Re-ingesting unchanged input
// produces the same IDs, so repeated runs upsert instead of duplicating.
func StableID(sourcePath, contentHash string, chunkIndex int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d", sourcePath, contentHash, chunkIndex)))
	return hex.EncodeToString(sum[:])[:24]
}

// BuildRecords pairs chunks with their vectors into embedding records.
// Each record's metadata merges the chunk's metadata with its position
// fields so search hits can be cited without loading the source.
func BuildRecords(sourcePath, contentHash string, chunks []domain.Chunk, vectors [][]float32) ([]domain.EmbeddingRecord, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunk/vector count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	records := make([]domain.EmbeddingRecord, len(chunks))
	for i, chunk := range chunks {
		metadata := make(map[string]any, len(chunk.Metadata)+4)
		for k, v := range chunk.Metadata {
			metadata[k] = v
		}
		metadata["chunk_index"] = chunk.Index
		metadata["char_span"] = []int{chunk.CharStart, chunk.CharEnd}
		if chunk.SectionPath != "" {
			metadata["section_path"] = chunk.SectionPath
		}
		if len(chunk.PageNumbers) > 0 {
			metadata["page_numbers"] = chunk.PageNumbers
		}

		records[i] = domain.EmbeddingRecord{
			ID:       StableID(sourcePath, contentHash, chunk.Index),
			Vector:   vectors[i],
			Text:     chunk.Text,
			Metadata: metadata,
		}
	}
	return records, nil
}
