package chunker

import (
	"context"
	"fmt"

	"docrag/internal/domain"
	"docrag/internal/port"
)

// DelegatedChunker hands the document's opaque structured payload back to
// the conversion service and lets its chunker split it. The payload does
// not survive the conversion cache, so a cache-hit conversion is
// reconstructed by re-invoking the converter on the source path. Any
// failure is returned to the caller; composition with FallbackChunker
// turns that into a graceful downgrade.
type DelegatedChunker struct {
	converter port.Converter
	maxTokens int
}

func NewDelegatedChunker(converter port.Converter, maxTokens int) *DelegatedChunker {
	return &DelegatedChunker{converter: converter, maxTokens: maxTokens}
}

func (c *DelegatedChunker) Chunk(ctx context.Context, conv domain.DocumentConversion) ([]domain.Chunk, error) {
	structured := conv.Structured
	if len(structured) == 0 {
		if conv.SourcePath == "" {
			return nil, fmt.Errorf("no structured payload and no source path to reconvert")
		}
		fresh, err := c.converter.Reconvert(ctx, conv.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("reconvert %s: %w", conv.SourcePath, err)
		}
		structured = fresh.Structured
		if len(structured) == 0 {
			return nil, fmt.Errorf("reconversion of %s yielded no structured payload", conv.SourcePath)
		}
	}

	texts, err := c.converter.ChunkStructured(ctx, structured, c.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("delegated chunking: %w", err)
	}

	// The service chunker exposes neither section paths nor offsets, so
	// spans cover each chunk's own text.
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			DocID:       conv.DocID,
			Index:       i,
			Text:        text,
			CharStart:   0,
			CharEnd:     len(text),
			PageNumbers: []int{},
			Metadata:    map[string]any{},
		}
	}
	return chunks, nil
}

// FallbackChunker tries each chunker in order and returns the first
// successful result.
type FallbackChunker struct {
	chain []port.Chunker
}

func NewFallbackChunker(chain ...port.Chunker) *FallbackChunker {
	return &FallbackChunker{chain: chain}
}

func (c *FallbackChunker) Chunk(ctx context.Context, conv domain.DocumentConversion) ([]domain.Chunk, error) {
	var lastErr error
	for _, chunker := range c.chain {
		chunks, err := chunker.Chunk(ctx, conv)
		if err == nil {
			return chunks, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all chunking strategies failed: %w", lastErr)
}
