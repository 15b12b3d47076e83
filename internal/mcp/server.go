package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openstatlab/mospi-rag/pkg/models"
)

// Retriever finds the chunks most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) []models.IndexEntry
}

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
	TopK    int
}

// Server exposes the document index to MCP clients over stdio.
type Server struct {
	mcpServer *server.MCPServer
	retriever Retriever
	topK      int
}

// NewServer creates an MCP server with a search tool over the index.
func NewServer(config Config, retriever Retriever) *Server {
	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		retriever: retriever,
		topK:      config.TopK,
	}

	searchTool := mcp.NewTool("search_documents",
		mcp.WithDescription("Search indexed publication chunks by semantic similarity. Returns the matching chunks with their source document titles."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string"),
		),
		mcp.WithNumber("top_k",
			mcp.Description(fmt.Sprintf("Maximum number of chunks to return (default: %d)", config.TopK)),
		),
	)
	mcpServer.AddTool(searchTool, s.searchHandler)

	return s
}

// searchHandler handles the search_documents tool call.
func (s *Server) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	topK := req.GetInt("top_k", s.topK)
	if topK <= 0 {
		return mcp.NewToolResultError("top_k must be positive"), nil
	}

	result, err := json.Marshal(s.handleSearch(ctx, query, topK))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(result)), nil
}

// handleSearch runs retrieval, normalizing an empty result to an empty
// slice so clients always receive a JSON array.
func (s *Server) handleSearch(ctx context.Context, query string, topK int) []models.IndexEntry {
	entries := s.retriever.Retrieve(ctx, query, topK)
	if entries == nil {
		entries = []models.IndexEntry{}
	}
	return entries
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
