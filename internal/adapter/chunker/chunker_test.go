package chunker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"docrag/internal/domain"
)

// runeCodec treats every rune as one token. Decode(Encode(x)) == x for
// any input, which is all the splitter requires of a codec.
type runeCodec struct{}

func (runeCodec) Encode(text string) []int {
	runes := []rune(text)
	tokens := make([]int, len(runes))
	for i, r := range runes {
		tokens[i] = int(r)
	}
	return tokens
}

func (runeCodec) Decode(tokens []int) string {
	runes := make([]rune, len(tokens))
	for i, t := range tokens {
		runes[i] = rune(t)
	}
	return string(runes)
}

func TestSplitterWindowSizes(t *testing.T) {
	s := newSplitter(runeCodec{}, 10, 3)
	text := "abcdefghijklmnopqrstuvwxyz0123456789"

	pieces := s.split(text)
	if len(pieces) == 0 {
		t.Fatal("expected pieces")
	}
	for i, p := range pieces {
		if n := len([]rune(p)); n > 10 {
			t.Errorf("piece %d has %d tokens, max is 10", i, n)
		}
	}
}

func TestSplitterReconstruction(t *testing.T) {
	const max, overlap = 7, 2
	s := newSplitter(runeCodec{}, max, overlap)
	text := "the quick brown fox jumps over the lazy dog"

	pieces := s.split(text)

	// Dropping the overlapping prefix of every piece after the first
	// must reconstruct the original token stream exactly.
	var rebuilt strings.Builder
	for i, p := range pieces {
		runes := []rune(p)
		if i > 0 && len(runes) > overlap {
			runes = runes[overlap:]
		}
		rebuilt.WriteString(string(runes))
	}
	if rebuilt.String() != text {
		t.Errorf("reconstruction mismatch:\n got %q\nwant %q", rebuilt.String(), text)
	}
}

func TestSplitterEmptyInput(t *testing.T) {
	s := newSplitter(runeCodec{}, 5, 2)
	if pieces := s.split(""); len(pieces) != 0 {
		t.Errorf("empty input must yield zero pieces, got %d", len(pieces))
	}
}

func TestSplitterOverlapAtLeastMaxTerminates(t *testing.T) {
	// overlap >= maxTokens must not loop forever; the advance is clamped
	// to one token.
	s := newSplitter(runeCodec{}, 3, 5)
	pieces := s.split("abcdefgh")
	if len(pieces) == 0 {
		t.Fatal("expected pieces")
	}
	// Clamped advance still covers the whole stream.
	if !strings.Contains(pieces[len(pieces)-1], "h") {
		t.Errorf("last piece does not reach end of stream: %q", pieces[len(pieces)-1])
	}
}

func TestTokenChunkerIndicesAndSpans(t *testing.T) {
	c := NewTokenChunker(runeCodec{}, 5, 1)
	conv := domain.DocumentConversion{
		DocID: "doc1",
		Sections: []domain.SectionText{
			{SectionPath: "A", Text: "hello"},
			{SectionPath: "B", Text: "world"},
		},
	}

	chunks, err := c.Chunk(context.Background(), conv)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunk %d has index %d, indices must be contiguous", i, ch.Index)
		}
		if ch.DocID != "doc1" {
			t.Errorf("chunk %d has doc id %q", i, ch.DocID)
		}
		if ch.CharEnd-ch.CharStart != len(ch.Text) {
			t.Errorf("chunk %d span (%d,%d) does not match text length %d",
				i, ch.CharStart, ch.CharEnd, len(ch.Text))
		}
	}
}

func TestTokenChunkerEmptyDocument(t *testing.T) {
	c := NewTokenChunker(runeCodec{}, 5, 1)
	chunks, err := c.Chunk(context.Background(), domain.DocumentConversion{DocID: "empty"})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("empty document must yield zero chunks, got %d", len(chunks))
	}
}

func TestHierarchicalChunkerBasic(t *testing.T) {
	c := NewHierarchicalChunker(runeCodec{}, 5, 2)
	conv := domain.DocumentConversion{
		DocID: "id",
		Sections: []domain.SectionText{
			{SectionPath: "A", PageNumbers: []int{}, Text: "hello world"},
		},
	}

	chunks, err := c.Chunk(context.Background(), conv)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 1 {
		t.Fatal("expected at least one chunk")
	}
	for _, ch := range chunks {
		if ch.DocID != "id" {
			t.Errorf("doc id mismatch: %q", ch.DocID)
		}
		if ch.SectionPath != "A" {
			t.Errorf("section path not retained: %q", ch.SectionPath)
		}
	}
}

func TestHierarchicalChunkerSectionsDoNotBleed(t *testing.T) {
	c := NewHierarchicalChunker(runeCodec{}, 4, 2)
	conv := domain.DocumentConversion{
		DocID: "id",
		Sections: []domain.SectionText{
			{SectionPath: "first", Text: "aaaaaa"},
			{SectionPath: "second", Text: "bbbbbb"},
		},
	}

	chunks, err := c.Chunk(context.Background(), conv)
	if err != nil {
		t.Fatal(err)
	}
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("indices must stay contiguous across sections, chunk %d has %d", i, ch.Index)
		}
		if strings.Contains(ch.Text, "a") && strings.Contains(ch.Text, "b") {
			t.Errorf("chunk %d mixes sections: %q", i, ch.Text)
		}
	}
}

func TestHierarchicalChunkerNoSectionsFallsBack(t *testing.T) {
	c := NewHierarchicalChunker(runeCodec{}, 5, 1)
	chunks, err := c.Chunk(context.Background(), domain.DocumentConversion{DocID: "id"})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("sectionless empty document must yield zero chunks, got %d", len(chunks))
	}
}

func TestMarkdownChunkerSegments(t *testing.T) {
	c := NewMarkdownChunker(runeCodec{}, 20, 5)
	conv := domain.DocumentConversion{
		DocID:    "id",
		Markdown: "# Title\n\n## Sub\ncontent\n\n## Another\nmore content",
		Sections: []domain.SectionText{
			{SectionPath: "A", Text: "fallback"},
		},
	}

	chunks, err := c.Chunk(context.Background(), conv)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, one per heading segment, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("indices must be contiguous, chunk %d has %d", i, ch.Index)
		}
	}
}

func TestMarkdownChunkerWithoutMarkdown(t *testing.T) {
	c := NewMarkdownChunker(runeCodec{}, 50, 5)
	conv := domain.DocumentConversion{
		DocID: "id",
		Sections: []domain.SectionText{
			{SectionPath: "A", Text: "plain section text"},
		},
	}

	chunks, err := c.Chunk(context.Background(), conv)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk over concatenated sections, got %d", len(chunks))
	}
	if chunks[0].Text != "plain section text" {
		t.Errorf("unexpected chunk text: %q", chunks[0].Text)
	}
}

func TestSplitHeadingSegments(t *testing.T) {
	segments := splitHeadingSegments("intro\n# One\nbody\n## Two\nmore")
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	if segments[0].heading != "" {
		t.Errorf("leading segment must be headingless, got %q", segments[0].heading)
	}
	if segments[1].heading != "One" || segments[2].heading != "Two" {
		t.Errorf("heading extraction wrong: %q, %q", segments[1].heading, segments[2].heading)
	}
	if !strings.HasPrefix(segments[1].text, "# One") {
		t.Errorf("heading line must open its segment: %q", segments[1].text)
	}
}

// fakeConverter scripts converter behavior for delegated chunking tests.
type fakeConverter struct {
	chunkTexts    []string
	chunkErr      error
	reconvertErr  error
	reconverted   domain.DocumentConversion
	reconvertCall int
}

func (f *fakeConverter) Convert(ctx context.Context, file domain.DiscoveredFile) (domain.DocumentConversion, error) {
	return domain.DocumentConversion{}, errors.New("not used")
}

func (f *fakeConverter) Reconvert(ctx context.Context, path string) (domain.DocumentConversion, error) {
	f.reconvertCall++
	if f.reconvertErr != nil {
		return domain.DocumentConversion{}, f.reconvertErr
	}
	return f.reconverted, nil
}

func (f *fakeConverter) ChunkStructured(ctx context.Context, structured json.RawMessage, maxTokens int) ([]string, error) {
	if f.chunkErr != nil {
		return nil, f.chunkErr
	}
	return f.chunkTexts, nil
}

func TestDelegatedChunkerWithHandle(t *testing.T) {
	fc := &fakeConverter{chunkTexts: []string{"first", "second"}}
	c := NewDelegatedChunker(fc, 128)

	conv := domain.DocumentConversion{
		DocID:      "id",
		Structured: []byte(`{"body":[]}`),
	}
	chunks, err := c.Chunk(context.Background(), conv)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].SectionPath != "" {
		t.Error("delegated chunks carry no section path")
	}
	if chunks[1].CharStart != 0 || chunks[1].CharEnd != len("second") {
		t.Errorf("delegated span must cover own text, got (%d,%d)", chunks[1].CharStart, chunks[1].CharEnd)
	}
	if fc.reconvertCall != 0 {
		t.Error("no reconversion expected when a handle is present")
	}
}

func TestDelegatedChunkerReconstructsHandle(t *testing.T) {
	fc := &fakeConverter{
		chunkTexts:  []string{"rebuilt"},
		reconverted: domain.DocumentConversion{Structured: []byte(`{"body":[]}`)},
	}
	c := NewDelegatedChunker(fc, 128)

	conv := domain.DocumentConversion{DocID: "id", SourcePath: "/docs/x.pdf"}
	chunks, err := c.Chunk(context.Background(), conv)
	if err != nil {
		t.Fatal(err)
	}
	if fc.reconvertCall != 1 {
		t.Errorf("expected one reconversion, got %d", fc.reconvertCall)
	}
	if len(chunks) != 1 || chunks[0].Text != "rebuilt" {
		t.Errorf("unexpected chunks: %+v", chunks)
	}
}

func TestDoclingStrategyFallsBackToMarkdown(t *testing.T) {
	fc := &fakeConverter{reconvertErr: errors.New("service down")}
	chk, err := ForStrategy(StrategyDocling, runeCodec{}, fc, 50, 5)
	if err != nil {
		t.Fatal(err)
	}

	conv := domain.DocumentConversion{
		DocID:      "id",
		SourcePath: "/docs/x.pdf",
		Markdown:   "# Title\ncontent",
	}
	chunks, err := chk.Chunk(context.Background(), conv)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) == 0 {
		t.Fatal("fallback must still produce chunks")
	}
	if chunks[0].SectionPath != "Title" {
		t.Errorf("fallback output should be markdown chunks, got section %q", chunks[0].SectionPath)
	}
}

func TestForStrategyUnknown(t *testing.T) {
	if _, err := ForStrategy("bogus", runeCodec{}, nil, 10, 2); err == nil {
		t.Error("unknown strategy must fail")
	}
}
