package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"docrag/internal/domain"
)

// DoclingConverter talks to an external docling conversion service over
// HTTP. Conversion is idempotent for identical bytes, so results are
// cached on disk keyed by content hash.
type DoclingConverter struct {
	baseURL  string
	cache    *Cache
	client   *http.Client
	useCache bool
}

type convertResponse struct {
	Document struct {
		MdContent   string          `json:"md_content"`
		JSONContent json.RawMessage `json:"json_content"`
	} `json:"document"`
	Title string `json:"title"`
}

type chunkRequest struct {
	Document  json.RawMessage `json:"document"`
	MaxTokens int             `json:"max_tokens"`
}

type chunkResponse struct {
	Chunks []struct {
		Text string `json:"text"`
	} `json:"chunks"`
}

func NewDoclingConverter(baseURL, cacheDir string, timeout time.Duration, useCache bool) *DoclingConverter {
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &DoclingConverter{
		baseURL:  baseURL,
		cache:    NewCache(cacheDir),
		client:   &http.Client{Timeout: timeout},
		useCache: useCache,
	}
}

// Convert converts the file, preferring the cache. A cache hit returns
// without the structured payload; delegated chunking reconstructs it via
// Reconvert when needed.
func (d *DoclingConverter) Convert(ctx context.Context, file domain.DiscoveredFile) (domain.DocumentConversion, error) {
	if d.useCache {
		conv, ok, err := d.cache.Get(file.SHA256)
		if err != nil {
			return domain.DocumentConversion{}, err
		}
		if ok {
			return conv, nil
		}
	}

	conv, err := d.convert(ctx, file.Path)
	if err != nil {
		return domain.DocumentConversion{}, err
	}
	conv.DocID = file.SHA256

	if d.useCache {
		if err := d.cache.Put(file.SHA256, conv); err != nil {
			return domain.DocumentConversion{}, err
		}
	}
	return conv, nil
}

// Reconvert calls the service directly, bypassing the cache.
func (d *DoclingConverter) Reconvert(ctx context.Context, path string) (domain.DocumentConversion, error) {
	return d.convert(ctx, path)
}

func (d *DoclingConverter) convert(ctx context.Context, path string) (domain.DocumentConversion, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.DocumentConversion{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return domain.DocumentConversion{}, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return domain.DocumentConversion{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return domain.DocumentConversion{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v1alpha/convert/file", &body)
	if err != nil {
		return domain.DocumentConversion{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return domain.DocumentConversion{}, fmt.Errorf("conversion request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.DocumentConversion{}, fmt.Errorf("read conversion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.DocumentConversion{}, fmt.Errorf("conversion service returned status %d: %s", resp.StatusCode, string(data))
	}

	var cr convertResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return domain.DocumentConversion{}, fmt.Errorf("parse conversion response: %w", err)
	}

	markdown := cr.Document.MdContent
	conv := domain.DocumentConversion{
		Title:      cr.Title,
		Language:   "en",
		Markdown:   markdown,
		SourcePath: path,
		Structured: cr.Document.JSONContent,
		Sections: []domain.SectionText{
			{SectionPath: "Document", PageNumbers: []int{}, Text: markdown},
		},
	}
	return conv, nil
}

// ChunkStructured runs the service's own chunker over an opaque structured
// payload.
func (d *DoclingConverter) ChunkStructured(ctx context.Context, structured json.RawMessage, maxTokens int) ([]string, error) {
	if len(structured) == 0 {
		return nil, fmt.Errorf("no structured document payload")
	}

	reqBody, err := json.Marshal(chunkRequest{Document: structured, MaxTokens: maxTokens})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v1alpha/chunk", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chunk request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chunk response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chunk service returned status %d: %s", resp.StatusCode, string(data))
	}

	var cr chunkResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return nil, fmt.Errorf("parse chunk response: %w", err)
	}

	texts := make([]string, len(cr.Chunks))
	for i, c := range cr.Chunks {
		texts[i] = c.Text
	}
	return texts, nil
}
