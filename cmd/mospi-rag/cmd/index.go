package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openstatlab/mospi-rag/internal/index"
	"github.com/openstatlab/mospi-rag/internal/ollama"
	"github.com/openstatlab/mospi-rag/internal/retrieval"
	"github.com/openstatlab/mospi-rag/pkg/models"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed processed chunks and build the vector index",
	Long: `Read the processed documents, embed every text chunk with the configured
Ollama embedding model, and write the vector index and its metadata to
data/rag/.

Example:
  mospi-rag index`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()

	processed, err := models.LoadProcessed(cfg.Data.ProcessedDocumentsPath())
	if err != nil {
		return fmt.Errorf("loading processed documents (run 'mospi-rag process' first): %w", err)
	}

	client := ollama.New(cfg.Ollama.BaseURL)
	if !client.IsRunning(ctx) {
		return fmt.Errorf("ollama is not reachable at %s", cfg.Ollama.BaseURL)
	}

	embedder := retrieval.NewOllamaEmbedder(client, cfg.Ollama.EmbedModel)
	builder := index.NewBuilder(embedder)

	flat, entries, err := builder.Build(ctx, processed)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	indexPath := cfg.Data.IndexPath()
	if err := index.WriteArtifacts(indexPath, flat, entries); err != nil {
		return fmt.Errorf("writing index artifacts: %w", err)
	}

	fmt.Printf("Indexed %d chunks (dimension %d) to %s\n", flat.Len(), flat.Dim(), indexPath)
	return nil
}
