package llm

import (
	"fmt"

	"docrag/internal/port"
)

// New builds an LLM client for the configured provider.
func New(provider, model, baseURL string) (port.LLM, error) {
	switch provider {
	case "openai":
		return NewOpenAIClient(model)
	case "ollama":
		return NewOllamaClient(baseURL, model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
