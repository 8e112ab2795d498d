package chunker

import (
	"fmt"

	"docrag/internal/port"
)

// Strategy names accepted in configuration.
const (
	StrategyToken        = "token"
	StrategyHierarchical = "hierarchical"
	StrategyMarkdown     = "markdown"
	StrategyDocling      = "docling"
)

// ForStrategy builds the chunker for a named strategy. The docling
// strategy delegates to the conversion service and falls back to
// markdown-heading chunking when delegation is unavailable.
func ForStrategy(name string, codec port.TokenCodec, converter port.Converter, maxTokens, overlap int) (port.Chunker, error) {
	switch name {
	case StrategyToken:
		return NewTokenChunker(codec, maxTokens, overlap), nil
	case StrategyHierarchical:
		return NewHierarchicalChunker(codec, maxTokens, overlap), nil
	case StrategyMarkdown:
		return NewMarkdownChunker(codec, maxTokens, overlap), nil
	case StrategyDocling:
		markdown := NewMarkdownChunker(codec, maxTokens, overlap)
		return NewFallbackChunker(NewDelegatedChunker(converter, maxTokens), markdown), nil
	default:
		return nil, fmt.Errorf("unknown chunking strategy: %s", name)
	}
}
