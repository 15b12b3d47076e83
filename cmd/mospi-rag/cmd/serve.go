package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openstatlab/mospi-rag/internal/api"
	"github.com/openstatlab/mospi-rag/internal/ollama"
	"github.com/openstatlab/mospi-rag/internal/retrieval"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP question answering API",
	Long: `Start the HTTP server that answers questions grounded in the indexed
publications.

Endpoints:
  GET  /health  Liveness check
  POST /query   Answer a question using retrieved context

Example:
  mospi-rag serve --addr :8000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	addr := cfg.API.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	client := ollama.New(cfg.Ollama.BaseURL)
	embedder := retrieval.NewOllamaEmbedder(client, cfg.Ollama.EmbedModel)

	retriever, err := retrieval.Load(cfg.Data.IndexPath(), embedder)
	if err != nil {
		return fmt.Errorf("loading index (run 'mospi-rag index' first): %w", err)
	}

	handler := api.NewHandler(api.Deps{
		Retriever: retriever,
		Chat:      client,
		ChatModel: cfg.Ollama.ChatModel,
		TopK:      cfg.Retrieval.TopK,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	slog.Info("http server stopped")
	return nil
}
