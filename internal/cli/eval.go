package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docrag/internal/usecase"
)

var (
	evalQueries string
	evalK       int
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Measure retrieval quality over a labeled query set",
	Long: `Eval runs every query from a YAML file against the index and reports
hit-at-k: a query hits when any of its expected terms appears in the
concatenated text of the top-k results.

Example:
  docrag eval --queries samples/queries.yaml -k 5`,
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVar(&evalQueries, "queries", "samples/queries.yaml", "labeled queries file")
	evalCmd.Flags().IntVarP(&evalK, "k", "k", 5, "results per query")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	queries, err := usecase.LoadEvalQueries(evalQueries)
	if err != nil {
		return err
	}

	retrieve, st, err := newRetrieve(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := usecase.NewEvalUseCase(retrieve).Run(ctx, queries, evalK)
	if err != nil {
		return fmt.Errorf("eval failed: %w", err)
	}

	for _, q := range result.Queries {
		mark := "miss"
		if q.Hit {
			mark = "hit"
		}
		fmt.Printf("  [%s] %s\n", mark, q.Query)
	}
	fmt.Printf("hit@%d=%d/%d\n", result.K, result.Hits, result.Total)
	return nil
}
