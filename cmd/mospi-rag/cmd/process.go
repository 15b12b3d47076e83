package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openstatlab/mospi-rag/internal/chunker"
	"github.com/openstatlab/mospi-rag/internal/pdfextract"
	"github.com/openstatlab/mospi-rag/internal/pipeline"
	"github.com/openstatlab/mospi-rag/pkg/models"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract text and tables from downloaded PDFs and chunk them",
	Long: `Read the crawl output, extract text and first-page tables from each
downloaded PDF, split the text into overlapping chunks, and write the
result to data/processed/processed_documents.json.

Example:
  mospi-rag process`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	docs, err := models.LoadDocuments(cfg.Data.CrawledDocumentsPath())
	if err != nil {
		return fmt.Errorf("loading crawl output (run 'mospi-rag crawl' first): %w", err)
	}

	c, err := chunker.New(cfg.Chunker.Size, cfg.Chunker.Overlap)
	if err != nil {
		return fmt.Errorf("invalid chunker configuration: %w", err)
	}

	p := pipeline.New(pdfextract.New(), c, cfg.Data.PDFDir())
	processed := p.Process(docs)

	outPath := cfg.Data.ProcessedDocumentsPath()
	if err := models.WriteProcessed(outPath, processed); err != nil {
		return fmt.Errorf("writing processed output: %w", err)
	}

	totalFiles := 0
	totalChunks := 0
	for _, doc := range processed {
		totalFiles += len(doc.ProcessedFiles)
		for _, f := range doc.ProcessedFiles {
			totalChunks += len(f.TextChunks)
		}
	}
	fmt.Printf("Processed %d documents (%d files, %d chunks) to %s\n",
		len(processed), totalFiles, totalChunks, outPath)
	return nil
}
