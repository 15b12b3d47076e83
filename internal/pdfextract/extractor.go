// Package pdfextract pulls text and tabular content out of downloaded PDFs.
package pdfextract

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/openstatlab/mospi-rag/pkg/models"
)

// cellGap is the horizontal whitespace, in points, treated as a column
// boundary when grouping text fragments into table cells.
const cellGap = 4.0

// Extractor parses PDF files into text and tables.
type Extractor struct{}

// New creates a PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses the PDF at path. Text is the concatenation of every page's
// plain text in page order; a page that fails to render contributes nothing.
// Tables are read from the first page only. A missing or unreadable file
// yields an error the caller can recover from.
func (e *Extractor) Extract(path string) (content *models.ExtractedContent, err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, fmt.Errorf("file not found at %s: %w", path, statErr)
	}

	// The pdf library panics on some malformed documents; a corrupt file is
	// a recoverable failure, not a crash.
	defer func() {
		if r := recover(); r != nil {
			content = nil
			err = fmt.Errorf("parsing %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("page yielded no text", "path", path, "page", i, "error", err)
			continue
		}
		text.WriteString(pageText)
	}

	return &models.ExtractedContent{
		Text:   text.String(),
		Tables: firstPageTables(reader, path),
	}, nil
}

// firstPageTables reconstructs tabular rows from the first page. Rows come
// from the PDF's vertical text grouping; cells are fragments split on
// horizontal gaps wider than cellGap. Jagged rows are kept as-is.
// Later pages are intentionally not inspected.
func firstPageTables(reader *pdf.Reader, path string) []models.TableMatrix {
	if reader.NumPage() < 1 {
		return nil
	}
	page := reader.Page(1)
	if page.V.IsNull() {
		return nil
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		slog.Warn("table extraction failed on first page", "path", path, "error", err)
		return nil
	}

	var matrix models.TableMatrix
	for _, row := range rows {
		cells := splitCells(row.Content)
		if len(cells) > 0 {
			matrix = append(matrix, cells)
		}
	}
	if len(matrix) == 0 {
		return nil
	}
	return []models.TableMatrix{matrix}
}

func splitCells(fragments []pdf.Text) []string {
	var cells []string
	var current strings.Builder
	lastEnd := 0.0

	for _, frag := range fragments {
		if current.Len() > 0 && frag.X-lastEnd > cellGap {
			cells = append(cells, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(frag.S)
		lastEnd = frag.X + frag.W
	}
	if current.Len() > 0 {
		cells = append(cells, strings.TrimSpace(current.String()))
	}

	// Drop rows that reduce to empty cells after trimming.
	out := cells[:0]
	for _, c := range cells {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
