package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	searchQuery string
	searchTopK  int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the vector store for similar chunks",
	Long: `Search embeds the query and returns the most similar indexed chunks
with their scores and provenance.

Example:
  docrag search -q "how is chunk overlap handled?" -k 5`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "query text (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 5, "number of results")
	searchCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	retrieve, st, err := newRetrieve(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := retrieve.Search(ctx, searchQuery, searchTopK, nil)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. [%.3f] %s\n", i+1, r.Score, metaString(r.Metadata, "source_path"))
		if section := metaString(r.Metadata, "section_path"); section != "" {
			fmt.Printf("   Section: %s\n", section)
		}
		fmt.Printf("   %s\n\n", truncate(r.Text, 200))
	}
	return nil
}

func metaString(metadata map[string]any, key string) string {
	if v, ok := metadata[key].(string); ok {
		return v
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
