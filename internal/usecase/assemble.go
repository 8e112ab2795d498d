package usecase

import (
	"fmt"
	"strings"

	"docrag/internal/domain"
)

// SystemPrompt instructs the LLM to stay grounded in the retrieved
// context. BuildPrompt supplies that context as the user message.
const SystemPrompt = "You are a helpful assistant. Use only the context below. Cite sources."

const promptTemplate = "Context:\n%s\n\nQuestion: %s\nAnswer:"

// AssembleContext concatenates search results into a bounded context
// block. Results are taken in the given order, most relevant first; each
// entry is a citation header plus the chunk text. Once the budget runs
// out the current entry's body is truncated to fit and everything after
// it is dropped. Higher-ranked results are never sacrificed for lower
// ones.
func AssembleContext(results []domain.SearchResult, maxChars int) string {
	var parts []string
	used := 0

	for _, r := range results {
		header := fmt.Sprintf("Source: %s | Section: %s | Score: %.3f\n",
			metaString(r.Metadata, "source_path"),
			metaString(r.Metadata, "section_path"),
			r.Score)

		// The joining separator counts against the budget too.
		sep := 0
		if len(parts) > 0 {
			sep = 2
		}

		remaining := maxChars - used - sep - len(header)
		if remaining < 0 {
			break
		}

		body := r.Text
		if len(body) > remaining {
			body = body[:remaining]
		}

		parts = append(parts, header+body)
		used += sep + len(header) + len(body)
		if used >= maxChars {
			break
		}
	}

	return strings.Join(parts, "\n\n")
}

// BuildPrompt renders the grounded prompt for the LLM.
func BuildPrompt(contextBlock, question string) string {
	return fmt.Sprintf(promptTemplate, contextBlock, question)
}

func metaString(metadata map[string]any, key string) string {
	if v, ok := metadata[key].(string); ok {
		return v
	}
	return ""
}
