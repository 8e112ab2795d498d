package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"docrag/internal/adapter/llm"
	"docrag/internal/api"
	"docrag/internal/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the retrieval endpoints over HTTP:

  GET  /health
  POST /search  {query, top_k, filters}
  POST /rag     {query, top_k}`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
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

	answer := usecase.NewAnswerUseCase(retrieve, model, cfg.RAG.MaxContextChars, logger)
	srv := api.NewServer(cfg.Server.Addr, api.NewHandler(retrieve, answer), logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		srv.Shutdown()
	}()

	return srv.Run()
}
