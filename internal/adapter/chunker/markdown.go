package chunker

import (
	"context"
	"strings"

	"docrag/internal/domain"
	"docrag/internal/port"
)

// MarkdownChunker splits markdown at heading lines, then token-windows
// each heading-delimited segment independently. A document without
// markdown degrades to the plain concatenation of its section texts.
type MarkdownChunker struct {
	split splitter
}

func NewMarkdownChunker(codec port.TokenCodec, maxTokens, overlap int) *MarkdownChunker {
	return &MarkdownChunker{split: newSplitter(codec, maxTokens, overlap)}
}

type mdSegment struct {
	heading string
	text    string
}

func (c *MarkdownChunker) Chunk(ctx context.Context, conv domain.DocumentConversion) ([]domain.Chunk, error) {
	input := conv.Markdown
	if input == "" {
		input = joinSections(conv)
	}

	var chunks []domain.Chunk
	index := 0
	for _, seg := range splitHeadingSegments(input) {
		pieces := c.split.split(seg.text)

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
				SectionPath: seg.heading,
				PageNumbers: []int{},
				Metadata:    map[string]any{},
			})
			index++
			offset = end
		}
	}
	return chunks, nil
}

// splitHeadingSegments starts a new segment at every line whose trimmed
// content begins with a heading marker; the heading line is the first
// line of its segment. Text before the first heading forms a headingless
// leading segment.
func splitHeadingSegments(markdown string) []mdSegment {
	lines := strings.Split(markdown, "\n")

	var segments []mdSegment
	var current []string
	heading := ""

	flush := func() {
		text := strings.Join(current, "\n")
		if strings.TrimSpace(text) != "" {
			segments = append(segments, mdSegment{heading: heading, text: text})
		}
		current = nil
	}

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			flush()
			heading = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
			current = []string{line}
			continue
		}
		current = append(current, line)
	}
	flush()

	return segments
}
