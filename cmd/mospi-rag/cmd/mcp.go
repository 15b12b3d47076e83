package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openstatlab/mospi-rag/internal/mcp"
	"github.com/openstatlab/mospi-rag/internal/ollama"
	"github.com/openstatlab/mospi-rag/internal/retrieval"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the MCP server for document retrieval.

The server communicates via stdio and provides one tool:
  - search_documents: Search indexed chunks by semantic similarity

Example:
  mospi-rag mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	client := ollama.New(cfg.Ollama.BaseURL)
	embedder := retrieval.NewOllamaEmbedder(client, cfg.Ollama.EmbedModel)

	retriever, err := retrieval.Load(cfg.Data.IndexPath(), embedder)
	if err != nil {
		return fmt.Errorf("loading index (run 'mospi-rag index' first): %w", err)
	}

	server := mcp.NewServer(mcp.Config{
		Name:    cfg.MCP.Name,
		Version: cfg.MCP.Version,
		TopK:    cfg.Retrieval.TopK,
	}, retriever)

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")

	return server.ServeStdio()
}
