package cli

import (
	"fmt"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docrag/internal/adapter/fs"
	"docrag/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Discover, convert, chunk, embed and index documents",
	Long: `Ingest walks the input directory, converts each document through the
conversion service, chunks and embeds the text, and upserts the vectors
into the configured store. Unchanged files produce identical record IDs,
so re-running converges instead of duplicating.

Examples:
  docrag ingest                      # Ingest the configured input_dir
  docrag ingest /path/to/documents   # Ingest a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	root := cfg.Data.InputDir
	if len(args) > 0 {
		root = args[0]
	}

	ctx := cmd.Context()

	walker := fs.NewWalker(cfg.Data.IncludeGlob, cfg.Data.ExcludeGlob, cfg.Data.MaxFileMB)
	converter := newConverter(cfg)

	chk, err := newChunker(cfg, converter)
	if err != nil {
		return err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	st, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create vector store: %w", err)
	}
	defer st.Close()

	uc := usecase.NewIngestUseCase(walker, converter, chk, embedder, st, logger)

	fmt.Printf("Scanning %s...\n", root)

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	progress := func(processed, total int, currentFile string) {
		barMu.Lock()
		defer barMu.Unlock()
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(processed)
	}

	result, err := uc.Ingest(ctx, root, cfg.VectorDB.Collection, progress)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Files discovered: %d\n", result.FilesDiscovered)
	fmt.Printf("  Files ingested:   %d\n", result.FilesIngested)
	fmt.Printf("  Files failed:     %d\n", result.FilesFailed)
	fmt.Printf("  Chunks indexed:   %d\n", result.ChunksIndexed)

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	return nil
}
