package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"docrag/internal/domain"
)

// QdrantStore is a minimal REST client to Qdrant. Collections use cosine
// distance; search scores are Qdrant's native cosine similarity.
type QdrantStore struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewQdrantStore(cfg QdrantConfig) *QdrantStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &QdrantStore{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *QdrantStore) EnsureCollection(ctx context.Context, name string, dims int) error {
	if dims <= 0 {
		return fmt.Errorf("invalid dimension: %d", dims)
	}
	if name != "" {
		s.collection = name
	}

	status, _, err := s.do(ctx, http.MethodGet, fmt.Sprintf("/collections/%s", s.collection), nil)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dims,
			"distance": "Cosine",
		},
	}
	status, respBody, err := s.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", s.collection), body)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("qdrant create collection %s: status %d: %s", s.collection, status, respBody)
	}
	return nil
}

func (s *QdrantStore) Upsert(ctx context.Context, records []domain.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]map[string]any, len(records))
	for i, rec := range records {
		payload := map[string]any{"text": rec.Text}
		for k, v := range rec.Metadata {
			payload[k] = v
		}
		points[i] = map[string]any{
			"id":      rec.ID,
			"vector":  rec.Vector,
			"payload": payload,
		}
	}

	body := map[string]any{"points": points}
	status, respBody, err := s.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", s.collection), body)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("qdrant upsert: status %d: %s", status, respBody)
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, vector []float32, topK int, filters map[string]string) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if len(filters) > 0 {
		must := make([]map[string]any, 0, len(filters))
		for k, v := range filters {
			must = append(must, map[string]any{
				"key":   k,
				"match": map[string]any{"value": v},
			})
		}
		req["filter"] = map[string]any{"must": must}
	}

	status, respBody, err := s.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", s.collection), req)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("qdrant search: status %d: %s", status, respBody)
	}

	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("qdrant search: decode response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		text, _ := r.Payload["text"].(string)
		metadata := make(map[string]any, len(r.Payload))
		for k, v := range r.Payload {
			if k == "text" {
				continue
			}
			metadata[k] = v
		}
		results = append(results, domain.SearchResult{
			ID:       fmt.Sprintf("%v", r.ID),
			Score:    r.Score,
			Text:     text,
			Metadata: metadata,
		})
	}
	return results, nil
}

func (s *QdrantStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// do issues one JSON request and returns the status code and body. Only
// transport failures are errors; HTTP-level failures are the caller's to
// interpret.
func (s *QdrantStore) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("qdrant %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
