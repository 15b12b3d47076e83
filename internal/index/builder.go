package index

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/openstatlab/mospi-rag/pkg/models"
)

// embedWorkers bounds concurrent embedding calls against the model server.
const embedWorkers = 4

// Embedder produces a vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Builder embeds document chunks and assembles the index/metadata pair.
type Builder struct {
	embedder Embedder
}

// NewBuilder creates a Builder using the given embedding service.
func NewBuilder(embedder Embedder) *Builder {
	return &Builder{embedder: embedder}
}

// candidate is one chunk queued for embedding, in corpus order.
type candidate struct {
	entry models.IndexEntry
	vec   []float32 // nil until embedded; stays nil on failure
}

// Build embeds every chunk of every processed document. Embedding calls run
// concurrently, but vectors and metadata are appended sequentially in corpus
// order, so a chunk whose embedding failed disappears from both sequences
// and entry i always describes vector i. A corpus where nothing embeds is a
// build failure, not an empty index.
func (b *Builder) Build(ctx context.Context, docs []models.ProcessedDocument) (*Flat, []models.IndexEntry, error) {
	var candidates []*candidate
	for _, doc := range docs {
		for _, file := range doc.ProcessedFiles {
			for i, chunk := range file.TextChunks {
				candidates = append(candidates, &candidate{
					entry: models.IndexEntry{
						DocumentID:    doc.ID,
						DocumentTitle: doc.Title,
						ChunkText:     chunk,
						ChunkIndex:    i,
					},
				})
			}
		}
	}
	slog.Info("embedding chunks", "count", len(candidates))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(embedWorkers)
	for _, c := range candidates {
		g.Go(func() error {
			vec, err := b.embedder.Embed(gCtx, c.entry.ChunkText)
			if err != nil {
				// Per-chunk failure: drop the chunk, keep building.
				slog.Warn("embedding failed, dropping chunk",
					"document_id", c.entry.DocumentID,
					"chunk_index", c.entry.ChunkIndex,
					"error", err)
				return nil
			}
			c.vec = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var flat *Flat
	var entries []models.IndexEntry
	for _, c := range candidates {
		if c.vec == nil {
			continue
		}
		if flat == nil {
			f, err := NewFlat(len(c.vec))
			if err != nil {
				return nil, nil, err
			}
			flat = f
		}
		if err := flat.Add(c.vec); err != nil {
			slog.Warn("dropping chunk with mismatched vector",
				"document_id", c.entry.DocumentID, "error", err)
			continue
		}
		entries = append(entries, c.entry)
	}

	if flat == nil || flat.Len() == 0 {
		return nil, nil, fmt.Errorf("no chunks embedded successfully, index not built")
	}

	slog.Info("index built", "vectors", flat.Len(), "dimension", flat.Dim())
	return flat, entries, nil
}
