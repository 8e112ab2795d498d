package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"docrag/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docrag",
	Short: "Document RAG pipeline - ingest documents and answer questions over them",
	Long: `docrag ingests documents through an external converter, chunks and embeds
their text, stores the vectors in a pluggable vector database, and answers
questions grounded in the retrieved chunks.

Example usage:
  docrag ingest --config configs/default.yaml
  docrag search --config configs/default.yaml -q "chunk overlap" -k 5
  docrag rag --config configs/default.yaml -q "how is identity derived?"
  docrag serve --config configs/default.yaml`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger = newLogger(cfg.Logging.Level)
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/default.yaml", "config file path")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
