package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"docrag/internal/domain"
)

// EvalQuery is one labeled retrieval query. A query counts as a hit when
// any expected term appears in the concatenated text of the top-k
// results, matched case-insensitively.
type EvalQuery struct {
	Query         string   `yaml:"query"`
	ExpectedTerms []string `yaml:"expects_any_source_contains"`
}

// EvalResult contains retrieval quality over one query set.
type EvalResult struct {
	K       int
	Hits    int
	Total   int
	Queries []EvalQueryResult
}

// EvalQueryResult is the outcome for one query.
type EvalQueryResult struct {
	Query string
	Hit   bool
}

// LoadEvalQueries parses a YAML file of labeled queries.
func LoadEvalQueries(path string) ([]EvalQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read queries file: %w", err)
	}
	var queries []EvalQuery
	if err := yaml.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("parse queries file: %w", err)
	}
	return queries, nil
}

// EvalUseCase measures retrieval quality as hit-at-k over a labeled
// query set.
type EvalUseCase struct {
	retrieve *RetrieveUseCase
}

func NewEvalUseCase(retrieve *RetrieveUseCase) *EvalUseCase {
	return &EvalUseCase{retrieve: retrieve}
}

// Run executes every query and scores it against its expected terms.
func (u *EvalUseCase) Run(ctx context.Context, queries []EvalQuery, k int) (*EvalResult, error) {
	result := &EvalResult{K: k, Total: len(queries)}
	for _, q := range queries {
		results, err := u.retrieve.Search(ctx, q.Query, k, nil)
		if err != nil {
			return nil, fmt.Errorf("query %q failed: %w", q.Query, err)
		}
		hit := HitAtK(q.ExpectedTerms, results)
		if hit {
			result.Hits++
		}
		result.Queries = append(result.Queries, EvalQueryResult{Query: q.Query, Hit: hit})
	}
	return result, nil
}

// HitAtK reports whether any expected term occurs in the concatenated
// result text, ignoring case. No expected terms means no hit.
func HitAtK(expectedTerms []string, results []domain.SearchResult) bool {
	if len(expectedTerms) == 0 {
		return false
	}
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	hay := strings.ToLower(strings.Join(texts, "\n"))
	for _, term := range expectedTerms {
		if strings.Contains(hay, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
