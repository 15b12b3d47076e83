package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openstatlab/mospi-rag/internal/crawler"
	"github.com/openstatlab/mospi-rag/pkg/models"
)

var (
	crawlSeedURL  string
	crawlMaxPages int
	noDownload    bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl the publications listing and download linked PDFs",
	Long: `Crawl the configured listing site page by page, extract the publication
rows, download the linked PDF files, and write the crawl output to
data/raw/crawled_documents.json.

Examples:
  # Crawl using the configured seed URL
  mospi-rag crawl

  # Crawl a specific listing URL
  mospi-rag crawl --url https://mospi.gov.in/publication

  # Crawl listing metadata only, skip PDF downloads
  mospi-rag crawl --no-download`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().StringVar(&crawlSeedURL, "url", "", "Listing URL to crawl (overrides config)")
	crawlCmd.Flags().IntVar(&crawlMaxPages, "max-pages", 0, "Maximum listing pages to fetch (overrides config)")
	crawlCmd.Flags().BoolVar(&noDownload, "no-download", false, "Skip downloading linked PDF files")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	if crawlSeedURL != "" {
		cfg.Crawler.SeedURL = crawlSeedURL
	}
	if crawlMaxPages > 0 {
		cfg.Crawler.MaxPages = crawlMaxPages
	}
	if cfg.Crawler.SeedURL == "" {
		return fmt.Errorf("no seed URL configured and no --url provided")
	}

	c := crawler.New(crawler.Config{
		SeedURL:   cfg.Crawler.SeedURL,
		MaxPages:  cfg.Crawler.MaxPages,
		RateLimit: cfg.Crawler.RateLimit,
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.Crawler.Timeout,
	})

	fmt.Printf("Crawling: %s\n", cfg.Crawler.SeedURL)
	docs, err := c.Run(ctx)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	fmt.Printf("  Documents found: %d\n", len(docs))

	if !noDownload {
		fetcher := crawler.NewFetcher(cfg.Crawler.Timeout, cfg.Crawler.UserAgent)
		fetcher.FetchAll(ctx, docs, cfg.Data.PDFDir())
	}

	outPath := cfg.Data.CrawledDocumentsPath()
	if err := models.WriteDocuments(outPath, docs); err != nil {
		return fmt.Errorf("writing crawl output: %w", err)
	}

	fmt.Printf("\nWrote %d documents to %s\n", len(docs), outPath)
	return nil
}
