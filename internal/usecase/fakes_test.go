package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"docrag/internal/domain"
)

// fakeEmbedder returns deterministic vectors and records what it embeds.
type fakeEmbedder struct {
	dimension int
	embedded  [][]string
	fail      bool
}

func (e *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e.fail {
		return nil, errors.New("embedder down")
	}
	e.embedded = append(e.embedded, texts)
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = make([]float32, e.dimension)
		for j, r := range t {
			if j < e.dimension {
				vectors[i][j] = float32(r)
			}
		}
	}
	return vectors, nil
}

func (e *fakeEmbedder) Dimension() int    { return e.dimension }
func (e *fakeEmbedder) ModelName() string { return "fake" }

// fakeStore keeps records in memory and returns canned search results.
type fakeStore struct {
	collection string
	dims       int
	records    map[string]domain.EmbeddingRecord
	results    []domain.SearchResult
	searchErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]domain.EmbeddingRecord)}
}

func (s *fakeStore) EnsureCollection(ctx context.Context, name string, dims int) error {
	s.collection = name
	s.dims = dims
	return nil
}

func (s *fakeStore) Upsert(ctx context.Context, records []domain.EmbeddingRecord) error {
	for _, r := range records {
		s.records[r.ID] = r
	}
	return nil
}

func (s *fakeStore) Search(ctx context.Context, vector []float32, topK int, filters map[string]string) ([]domain.SearchResult, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if len(s.results) > topK {
		return s.results[:topK], nil
	}
	return s.results, nil
}

func (s *fakeStore) Close() error { return nil }

// fakeLLM echoes a canned answer or fails.
type fakeLLM struct {
	answer  string
	fail    bool
	prompts []string
}

func (l *fakeLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if l.fail {
		return "", errors.New("llm down")
	}
	l.prompts = append(l.prompts, userPrompt)
	return l.answer, nil
}

func (l *fakeLLM) ModelName() string { return "fake-llm" }

// fakeWalker returns a fixed file list.
type fakeWalker struct {
	files []domain.DiscoveredFile
	errs  []error
}

func (w *fakeWalker) Walk(root string) ([]domain.DiscoveredFile, []error) {
	return w.files, w.errs
}

// fakeConverter yields one section of text per file.
type fakeConverter struct {
	failPaths map[string]bool
}

func (c *fakeConverter) Convert(ctx context.Context, file domain.DiscoveredFile) (domain.DocumentConversion, error) {
	if c.failPaths[file.Path] {
		return domain.DocumentConversion{}, fmt.Errorf("cannot convert %s", file.Path)
	}
	return domain.DocumentConversion{
		DocID:      file.SHA256,
		SourcePath: file.Path,
		Sections: []domain.SectionText{
			{SectionPath: "Document", Text: "content of " + file.Path},
		},
	}, nil
}

func (c *fakeConverter) Reconvert(ctx context.Context, path string) (domain.DocumentConversion, error) {
	return domain.DocumentConversion{}, errors.New("not supported")
}

func (c *fakeConverter) ChunkStructured(ctx context.Context, structured json.RawMessage, maxTokens int) ([]string, error) {
	return nil, errors.New("not supported")
}

// fakeChunker splits section text on spaces, one chunk per word.
type fakeChunker struct{}

func (fakeChunker) Chunk(ctx context.Context, conv domain.DocumentConversion) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for _, sec := range conv.Sections {
		for _, word := range strings.Fields(sec.Text) {
			chunks = append(chunks, domain.Chunk{
				DocID:       conv.DocID,
				Index:       len(chunks),
				Text:        word,
				SectionPath: sec.SectionPath,
			})
		}
	}
	return chunks, nil
}
