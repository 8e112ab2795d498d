package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const hfAPIKeyEnv = "HF_API_KEY"

// hfBackend calls the Hugging Face inference API's feature-extraction
// pipeline, which serves sentence-transformers models.
type hfBackend struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type hfRequest struct {
	Inputs []string `json:"inputs"`
}

func newHFBackend(model string, timeout time.Duration) (*hfBackend, error) {
	apiKey := os.Getenv(hfAPIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", hfAPIKeyEnv)
	}
	return &hfBackend{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api-inference.huggingface.co/pipeline/feature-extraction",
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (b *hfBackend) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	jsonData, err := json.Marshal(hfRequest{Inputs: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := b.baseURL + "/" + b.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, transientf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transientf("failed to read response: %w", err)
	}

	// The inference API answers 503 while the model is loading.
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, transientf("API returned status %d: %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var embeddings [][]float32
	if err := json.Unmarshal(body, &embeddings); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddings))
	}
	return embeddings, nil
}
