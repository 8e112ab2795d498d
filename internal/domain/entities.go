package domain

import "encoding/json"

// DiscoveredFile is a candidate source file found during discovery.
// SHA256 is the hex digest of the full byte stream and doubles as the
// document identity and conversion cache key.
type DiscoveredFile struct {
	Path      string
	SizeBytes int64
	SHA256    string
}

// SectionText is one ordered section of a converted document.
// PageNumbers may be empty when the source format carries no page info.
type SectionText struct {
	SectionPath string `json:"section_path"`
	PageNumbers []int  `json:"page_numbers"`
	Text        string `json:"text"`
}

// DocumentConversion is the structured output of the conversion service.
// Structured is an opaque payload owned by the converter; it is only ever
// handed back to the converter for delegated chunking, never inspected.
type DocumentConversion struct {
	DocID      string          `json:"doc_id"`
	Title      string          `json:"title,omitempty"`
	Author     string          `json:"author,omitempty"`
	CreatedAt  string          `json:"created_at,omitempty"`
	ModifiedAt string          `json:"modified_at,omitempty"`
	Language   string          `json:"language,omitempty"`
	Markdown   string          `json:"markdown,omitempty"`
	SourcePath string          `json:"source_path,omitempty"`
	Structured json.RawMessage `json:"-"`
	Sections   []SectionText   `json:"sections"`
}

// Chunk is a bounded piece of a document's text, sized for embedding.
// CharStart/CharEnd are offsets into the text the chunk was split from,
// not global file offsets. Index is 0-based and contiguous per document.
type Chunk struct {
	DocID       string
	Index       int
	Text        string
	CharStart   int
	CharEnd     int
	SectionPath string
	PageNumbers []int
	Metadata    map[string]any
}

// EmbeddingRecord is the unit stored in a vector store. ID is a pure
// function of (source path, content hash, chunk index) so repeated
// ingestion of unchanged input upserts instead of duplicating.
type EmbeddingRecord struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata map[string]any
}

// SearchResult is one ranked hit from a vector store. Score scale is
// backend-dependent; higher always means more relevant within a backend.
type SearchResult struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// Source is the citation form of a search result used in answers.
type Source struct {
	ID          string  `json:"id"`
	Score       float64 `json:"score"`
	SourcePath  string  `json:"source_path"`
	SectionPath string  `json:"section_path"`
}

// Answer is a generated response plus its supporting sources.
type Answer struct {
	Text       string   `json:"answer"`
	Sources    []Source `json:"sources"`
	Confidence float64  `json:"confidence"`
}
