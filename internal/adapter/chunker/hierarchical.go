package chunker

import (
	"context"

	"docrag/internal/domain"
	"docrag/internal/port"
)

// HierarchicalChunker splits each section independently, so the overlap
// window resets at section boundaries and sections never bleed into each
// other. Chunks keep their section's path and page numbers. Documents
// without sections fall back to plain token windowing.
type HierarchicalChunker struct {
	split splitter
}

func NewHierarchicalChunker(codec port.TokenCodec, maxTokens, overlap int) *HierarchicalChunker {
	return &HierarchicalChunker{split: newSplitter(codec, maxTokens, overlap)}
}

func (c *HierarchicalChunker) Chunk(ctx context.Context, conv domain.DocumentConversion) ([]domain.Chunk, error) {
	if len(conv.Sections) == 0 {
		return chunkPlainText(c.split, conv.DocID, joinSections(conv)), nil
	}

	var chunks []domain.Chunk
	index := 0
	for _, section := range conv.Sections {
		pieces := c.split.split(section.Text)

		offset := 0
		for _, piece := range pieces {
			start := offset
			end := offset + len(piece)
			chunks = append(chunks, domain.Chunk{
				DocID:       conv.DocID,
				Index:       index,
				Text:        piece,
				CharStart:   start,
				CharEnd:     end,
				SectionPath: section.SectionPath,
				PageNumbers: section.PageNumbers,
				Metadata:    map[string]any{},
			})
			index++
			offset = end
		}
	}
	return chunks, nil
}
