package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docrag/internal/adapter/llm"
	"docrag/internal/usecase"
)

var (
	ragQuery string
	ragTopK  int
)

var ragCmd = &cobra.Command{
	Use:   "rag",
	Short: "Answer a question grounded in the indexed documents",
	Long: `Rag retrieves the most relevant chunks for the question, assembles them
into a bounded context with citations, and asks the configured LLM. When
the LLM is unreachable the sources are still printed with a sentinel
answer.

Example:
  docrag rag -q "what does the conversion cache key on?" -k 5`,
	RunE: runRAG,
}

func init() {
	ragCmd.Flags().StringVarP(&ragQuery, "query", "q", "", "question (required)")
	ragCmd.Flags().IntVarP(&ragTopK, "top-k", "k", 5, "number of chunks to retrieve")
	ragCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(ragCmd)
}

func runRAG(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	retrieve, st, err := newRetrieve(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	model, err := llm.New(cfg.RAG.LLMProvider, cfg.RAG.LLMModel, cfg.RAG.LLMURL)
	if err != nil {
		return fmt.Errorf("failed to create llm client: %w", err)
	}

	uc := usecase.NewAnswerUseCase(retrieve, model, cfg.RAG.MaxContextChars, logger)
	answer, err := uc.Answer(ctx, ragQuery, ragTopK)
	if err != nil {
		return fmt.Errorf("rag failed: %w", err)
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Printf("\nSources (confidence %.3f):\n", answer.Confidence)
		for _, s := range answer.Sources {
			fmt.Printf("  [%.3f] %s", s.Score, s.SourcePath)
			if s.SectionPath != "" {
				fmt.Printf(" > %s", s.SectionPath)
			}
			fmt.Println()
		}
	}
	return nil
}
