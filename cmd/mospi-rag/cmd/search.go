package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openstatlab/mospi-rag/internal/ollama"
	"github.com/openstatlab/mospi-rag/internal/retrieval"
)

var (
	searchTopK   int
	searchFormat string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the vector index",
	Long: `Retrieve the chunks most relevant to a query from the built index.

Examples:
  # Basic search
  mospi-rag search "gdp growth rate"

  # Limit results
  mospi-rag search "consumer price index" --top-k 3

  # JSON output for scripting
  mospi-rag search "unemployment" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchTopK, "top-k", 0, "Maximum number of results (overrides config)")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "Output format: text or json")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	query := args[0]
	cfg := GetConfig()

	topK := cfg.Retrieval.TopK
	if searchTopK > 0 {
		topK = searchTopK
	}

	client := ollama.New(cfg.Ollama.BaseURL)
	embedder := retrieval.NewOllamaEmbedder(client, cfg.Ollama.EmbedModel)

	retriever, err := retrieval.Load(cfg.Data.IndexPath(), embedder)
	if err != nil {
		return fmt.Errorf("loading index (run 'mospi-rag index' first): %w", err)
	}

	entries := retriever.Retrieve(ctx, query, topK)
	if len(entries) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if searchFormat == "json" {
		output, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
	} else {
		fmt.Printf("Found %d results:\n\n", len(entries))
		for i, entry := range entries {
			fmt.Printf("─── Result %d ───\n", i+1)
			fmt.Printf("Document: %s\n", entry.DocumentTitle)
			fmt.Printf("ID:       %s\n", entry.DocumentID)
			fmt.Printf("Chunk:    %d\n", entry.ChunkIndex)

			text := entry.ChunkText
			if len(text) > 500 {
				text = text[:500] + "..."
			}
			fmt.Printf("Text:\n%s\n\n", text)
		}
	}

	return nil
}
