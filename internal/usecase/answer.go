package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"docrag/internal/domain"
	"docrag/internal/port"
)

// AnswerUnavailable is returned as the answer text when the LLM cannot
// be reached. Retrieval results are still returned as sources.
const AnswerUnavailable = "[LLM unavailable]"

// AnswerUseCase generates grounded answers: retrieve relevant chunks,
// assemble them into a bounded prompt, and ask the LLM.
type AnswerUseCase struct {
	retrieve        *RetrieveUseCase
	llm             port.LLM
	maxContextChars int
	log             *slog.Logger
}

func NewAnswerUseCase(retrieve *RetrieveUseCase, llm port.LLM, maxContextChars int, log *slog.Logger) *AnswerUseCase {
	if maxContextChars <= 0 {
		maxContextChars = 8000
	}
	return &AnswerUseCase{
		retrieve:        retrieve,
		llm:             llm,
		maxContextChars: maxContextChars,
		log:             log,
	}
}

// Answer retrieves context for the question and generates an answer.
// An unreachable LLM degrades to a sentinel answer instead of an error;
// retrieval failures are real errors.
func (u *AnswerUseCase) Answer(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	results, err := u.retrieve.Search(ctx, question, topK, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	contextBlock := AssembleContext(results, u.maxContextChars)
	prompt := BuildPrompt(contextBlock, question)

	text, err := u.llm.Generate(ctx, SystemPrompt, prompt)
	if err != nil {
		u.log.Warn("llm generation failed", "model", u.llm.ModelName(), "error", err)
		text = AnswerUnavailable
	}

	sources := make([]domain.Source, len(results))
	for i, r := range results {
		sources[i] = domain.Source{
			ID:          r.ID,
			Score:       r.Score,
			SourcePath:  metaString(r.Metadata, "source_path"),
			SectionPath: metaString(r.Metadata, "section_path"),
		}
	}

	confidence := 0.0
	if len(results) > 0 {
		confidence = results[0].Score
	}

	return &domain.Answer{
		Text:       text,
		Sources:    sources,
		Confidence: confidence,
	}, nil
}
