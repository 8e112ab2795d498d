package chunker

import (
	"context"
	"strings"

	"docrag/internal/domain"
	"docrag/internal/port"
)

// splitter emits sliding token windows of size maxTokens advancing by
// maxTokens-overlap. The advance is clamped so the window start always
// moves forward, which keeps overlap >= maxTokens from looping forever.
type splitter struct {
	codec     port.TokenCodec
	maxTokens int
	overlap   int
}

func newSplitter(codec port.TokenCodec, maxTokens, overlap int) splitter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	return splitter{codec: codec, maxTokens: maxTokens, overlap: overlap}
}

func (s splitter) split(text string) []string {
	tokens := s.codec.Encode(text)
	var pieces []string

	start := 0
	for start < len(tokens) {
		end := start + s.maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		pieces = append(pieces, s.codec.Decode(tokens[start:end]))
		if end == len(tokens) {
			break
		}
		next := end - s.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return pieces
}

// joinSections concatenates section texts the way the token strategy
// expects them, double-newline separated.
func joinSections(conv domain.DocumentConversion) string {
	texts := make([]string, len(conv.Sections))
	for i, s := range conv.Sections {
		texts[i] = s.Text
	}
	return strings.Join(texts, "\n\n")
}

// TokenChunker splits the concatenation of all section texts into plain
// token windows, ignoring document structure.
type TokenChunker struct {
	split splitter
}

func NewTokenChunker(codec port.TokenCodec, maxTokens, overlap int) *TokenChunker {
	return &TokenChunker{split: newSplitter(codec, maxTokens, overlap)}
}

func (c *TokenChunker) Chunk(ctx context.Context, conv domain.DocumentConversion) ([]domain.Chunk, error) {
	return chunkPlainText(c.split, conv.DocID, joinSections(conv)), nil
}

// chunkPlainText windows a single text, assigning sequential indices and
// character spans local to that text.
func chunkPlainText(split splitter, docID, text string) []domain.Chunk {
	pieces := split.split(text)
	chunks := make([]domain.Chunk, 0, len(pieces))

	offset := 0
	for i, piece := range pieces {
		start := offset
		end := offset + len(piece)
		chunks = append(chunks, domain.Chunk{
			DocID:       docID,
			Index:       i,
			Text:        piece,
			CharStart:   start,
			CharEnd:     end,
			PageNumbers: []int{},
			Metadata:    map[string]any{},
		})
		offset = end
	}
	return chunks
}
