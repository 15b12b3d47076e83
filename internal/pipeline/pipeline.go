// Package pipeline turns crawled documents into chunked, index-ready records.
package pipeline

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"

	"github.com/openstatlab/mospi-rag/internal/chunker"
	"github.com/openstatlab/mospi-rag/pkg/models"
)

// Extractor parses a downloaded file into text and tables.
type Extractor interface {
	Extract(path string) (*models.ExtractedContent, error)
}

// Pipeline runs the extract-and-chunk stage over crawled documents.
type Pipeline struct {
	extractor Extractor
	chunker   *chunker.Chunker
	pdfDir    string
}

// New creates a Pipeline reading downloaded files from pdfDir.
func New(extractor Extractor, c *chunker.Chunker, pdfDir string) *Pipeline {
	return &Pipeline{extractor: extractor, chunker: c, pdfDir: pdfDir}
}

// Process extracts and chunks every PDF of every document. Documents missing
// a title or URL are dropped with a warning; extraction failures keep the
// document with zero processed files.
func (p *Pipeline) Process(docs []models.Document) []models.ProcessedDocument {
	slog.Info("starting processing", "documents", len(docs))

	processed := make([]models.ProcessedDocument, 0, len(docs))
	for _, doc := range docs {
		if doc.Title == "" || doc.URL == "" {
			slog.Warn("skipping document with missing title or URL", "id", doc.ID)
			continue
		}

		record := models.ProcessedDocument{
			ID:             doc.ID,
			Title:          doc.Title,
			URL:            doc.URL,
			DatePublished:  doc.DatePublished,
			ProcessedFiles: []models.ProcessedFile{},
		}

		for _, link := range doc.FileLinks {
			if link.FileType != "pdf" {
				continue
			}
			localPath := p.localPath(link)
			content, err := p.extractor.Extract(localPath)
			if err != nil {
				slog.Error("content extraction failed", "path", localPath, "error", err)
				continue
			}

			tablesJSON, err := json.Marshal(content.Tables)
			if err != nil {
				slog.Error("encoding tables failed", "path", localPath, "error", err)
				tablesJSON = []byte("[]")
			}

			record.ProcessedFiles = append(record.ProcessedFiles, models.ProcessedFile{
				URL:        link.URL,
				Path:       localPath,
				TextChunks: p.chunker.Chunk(content.Text),
				TablesJSON: string(tablesJSON),
			})
		}

		processed = append(processed, record)
	}

	slog.Info("processing finished", "documents", len(processed))
	return processed
}

// localPath resolves where a file link's download should live. The crawl
// stamps FilePath on success; older crawl outputs without it fall back to
// the same URL-derived name the fetcher uses.
func (p *Pipeline) localPath(link models.FileLink) string {
	if link.FilePath != "" {
		return link.FilePath
	}
	u, err := url.Parse(link.URL)
	if err != nil {
		return filepath.Join(p.pdfDir, path.Base(link.URL))
	}
	return filepath.Join(p.pdfDir, path.Base(u.Path))
}
