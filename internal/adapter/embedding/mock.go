package embedding

import "context"

// mockBackend produces deterministic vectors derived from the input
// text. Useful for tests and offline runs.
type mockBackend struct {
	dimension int
}

func newMockBackend(dimension int) *mockBackend {
	return &mockBackend{dimension: dimension}
}

func (b *mockBackend) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = make([]float32, b.dimension)
		for j, r := range texts[i] {
			if j < b.dimension {
				embeddings[i][j] = float32(r) / 1000.0
			}
		}
	}
	return embeddings, nil
}
