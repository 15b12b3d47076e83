// Package retrieval answers queries against a built index by embedding the
// query and returning the nearest chunk metadata.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openstatlab/mospi-rag/internal/index"
	"github.com/openstatlab/mospi-rag/internal/ollama"
	"github.com/openstatlab/mospi-rag/pkg/models"
)

// QueryEmbedder produces a vector for a query string.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OllamaEmbedder adapts the Ollama client to QueryEmbedder by fixing the
// embedding model name.
type OllamaEmbedder struct {
	client *ollama.Client
	model  string
}

// NewOllamaEmbedder wraps the given client and model.
func NewOllamaEmbedder(client *ollama.Client, model string) *OllamaEmbedder {
	return &OllamaEmbedder{client: client, model: model}
}

// Embed returns the embedding for text using the configured model.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, e.model, text)
}

// Retriever searches a flat index and maps result positions back to chunk
// metadata. entries[i] always describes vector i of the index.
type Retriever struct {
	index    *index.Flat
	entries  []models.IndexEntry
	embedder QueryEmbedder
}

// New creates a Retriever over an index/metadata pair.
func New(idx *index.Flat, entries []models.IndexEntry, embedder QueryEmbedder) *Retriever {
	return &Retriever{index: idx, entries: entries, embedder: embedder}
}

// Load reads the index artifacts from indexPath and returns a Retriever
// over them.
func Load(indexPath string, embedder QueryEmbedder) (*Retriever, error) {
	idx, entries, err := index.LoadArtifacts(indexPath)
	if err != nil {
		return nil, fmt.Errorf("loading index artifacts: %w", err)
	}
	return New(idx, entries, embedder), nil
}

// Retrieve embeds the query and returns up to topK chunk entries ranked
// nearest first. A missing index or a failed query embedding yields an
// empty result, never partial or misleading matches.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) []models.IndexEntry {
	if r.index == nil || r.index.Len() == 0 || len(r.entries) == 0 || r.embedder == nil {
		slog.Error("retrieval attempted without an index, metadata or embedding service")
		return nil
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		slog.Error("query embedding failed", "error", err)
		return nil
	}

	results, err := r.index.Search(vec, topK)
	if err != nil {
		slog.Error("index search failed", "error", err)
		return nil
	}

	entries := make([]models.IndexEntry, 0, len(results))
	for _, res := range results {
		if res.Position < 0 || res.Position >= len(r.entries) {
			slog.Warn("search returned position outside metadata range", "position", res.Position)
			continue
		}
		entries = append(entries, r.entries[res.Position])
	}
	return entries
}
