package cli

import (
	"context"
	"fmt"
	"time"

	"docrag/config"
	"docrag/internal/adapter/chunker"
	"docrag/internal/adapter/convert"
	"docrag/internal/adapter/embedding"
	"docrag/internal/adapter/store"
	"docrag/internal/adapter/tokenizer"
	"docrag/internal/port"
	"docrag/internal/usecase"
)

// newEmbedder builds the embedding gateway from config.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	return embedding.NewGateway(embedding.Config{
		Provider:  cfg.Embeddings.Provider,
		Model:     cfg.Embeddings.Model,
		BatchSize: cfg.Embeddings.BatchSize,
		Timeout:   time.Duration(cfg.Embeddings.TimeoutSecs) * time.Second,
	})
}

// newStore builds the configured vector store.
func newStore(ctx context.Context, cfg *config.Config) (port.VectorStore, error) {
	return store.New(ctx, cfg.VectorDB)
}

// newConverter builds the conversion adapter with its on-disk cache.
func newConverter(cfg *config.Config) port.Converter {
	return convert.NewDoclingConverter(
		cfg.Converter.BaseURL,
		cfg.Data.CacheDir,
		time.Duration(cfg.Converter.TimeoutSecs)*time.Second,
		cfg.Converter.CacheConverted,
	)
}

// newChunker builds the configured chunking strategy.
func newChunker(cfg *config.Config, converter port.Converter) (port.Chunker, error) {
	codec, err := tokenizer.NewTiktoken("")
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer: %w", err)
	}
	return chunker.ForStrategy(cfg.Chunking.Strategy, codec, converter,
		cfg.Chunking.MaxTokens, cfg.Chunking.OverlapTokens)
}

// newRetrieve wires the query path: embedder plus vector store.
func newRetrieve(ctx context.Context, cfg *config.Config) (*usecase.RetrieveUseCase, port.VectorStore, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	st, err := newStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create vector store: %w", err)
	}
	return usecase.NewRetrieveUseCase(embedder, st, cfg.VectorDB.Collection), st, nil
}
