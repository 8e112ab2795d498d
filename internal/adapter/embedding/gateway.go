package embedding

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Retry policy for the whole multi-batch embed operation.
const (
	maxAttempts  = 5
	initialDelay = 1 * time.Second
	maxDelay     = 20 * time.Second
)

// Config selects and configures an embedding backend.
type Config struct {
	Provider  string
	Model     string
	BatchSize int
	Timeout   time.Duration
}

// Gateway implements the Embedder port on top of a provider backend.
// It splits input into fixed-size batches, preserves order, and retries
// the whole multi-batch operation on transient failures with
// exponential backoff and jitter.
type Gateway struct {
	backend   backend
	provider  string
	model     string
	batchSize int
	dimension int
	sleep     func(time.Duration) // overridable in tests
}

// NewGateway builds the gateway for the configured provider. Unknown
// providers fail immediately.
func NewGateway(cfg Config) (*Gateway, error) {
	dims, err := Dimensions(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, err
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	var b backend
	switch cfg.Provider {
	case "openai":
		b, err = newOpenAIBackend(cfg.Model, cfg.Timeout)
	case "huggingface":
		b, err = newHFBackend(cfg.Model, cfg.Timeout)
	case "mock":
		b = newMockBackend(dims)
	default:
		return nil, fmt.Errorf("unknown embeddings provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &Gateway{
		backend:   b,
		provider:  cfg.Provider,
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
		dimension: dims,
		sleep:     time.Sleep,
	}, nil
}

// Dimensions returns the fixed vector length for a (provider, model)
// pair. It is pure so callers can size the vector store's collection
// before any embedding call is made.
func Dimensions(provider, model string) (int, error) {
	switch provider {
	case "openai":
		switch model {
		case "text-embedding-3-large":
			return 3072, nil
		case "text-embedding-3-small":
			return 1536, nil
		default:
			return 1536, nil
		}
	case "huggingface":
		if strings.Contains(model, "MiniLM-L6") {
			return 384, nil
		}
		return 384, nil
	case "mock":
		return 384, nil
	default:
		return 0, fmt.Errorf("unknown embeddings provider: %s", provider)
	}
}

// Embed embeds all texts, one vector per input, in input order.
func (g *Gateway) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			g.sleep(backoffDelay(attempt))
		}

		vectors, err := g.embedAll(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		if !isTransient(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("embedding failed after %d attempts: %w", maxAttempts, lastErr)
}

func (g *Gateway) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += g.batchSize {
		end := i + g.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := g.backend.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-i {
			return nil, fmt.Errorf("backend returned %d vectors for %d inputs", len(batch), end-i)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// backoffDelay is exponential from initialDelay, capped at maxDelay,
// with up to 50% random jitter.
func backoffDelay(attempt int) time.Duration {
	d := initialDelay << (attempt - 1)
	if d > maxDelay {
		d = maxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(d) / 2))
	return d + jitter
}

func (g *Gateway) Dimension() int {
	return g.dimension
}

func (g *Gateway) ModelName() string {
	return g.model
}
