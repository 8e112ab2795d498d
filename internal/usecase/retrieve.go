package usecase

import (
	"context"
	"fmt"

	"docrag/internal/domain"
	"docrag/internal/port"
)

// RetrieveUseCase answers similarity queries: embed the query text and
// search the vector store for the closest chunks.
type RetrieveUseCase struct {
	embedder   port.Embedder
	store      port.VectorStore
	collection string
}

func NewRetrieveUseCase(embedder port.Embedder, store port.VectorStore, collection string) *RetrieveUseCase {
	return &RetrieveUseCase{
		embedder:   embedder,
		store:      store,
		collection: collection,
	}
}

// Search embeds the query and returns up to topK results, most relevant
// first. filters restrict results by metadata equality.
func (u *RetrieveUseCase) Search(ctx context.Context, query string, topK int, filters map[string]string) ([]domain.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if topK <= 0 {
		topK = 5
	}

	vectors, err := u.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	if err := u.store.EnsureCollection(ctx, u.collection, u.embedder.Dimension()); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	results, err := u.store.Search(ctx, vectors[0], topK, filters)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return results, nil
}
