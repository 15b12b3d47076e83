package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/openstatlab/mospi-rag/pkg/models"
)

// Config holds crawl configuration.
type Config struct {
	SeedURL   string
	MaxPages  int           // budget of successful page fetches
	RateLimit time.Duration // mandatory delay between fetches
	UserAgent string
	Timeout   time.Duration
}

// Crawler walks listing pages starting from a seed URL. The fetch loop is
// sequential: one page at a time, with the configured politeness delay
// between requests. URL bookkeeping lives in the Frontier; the collector is
// transport only.
type Crawler struct {
	config    Config
	frontier  *Frontier
	collector *colly.Collector

	// last response body, valid only within a fetch call
	pageBody string
	gotPage  bool
}

// New creates a Crawler with the given configuration.
func New(config Config) *Crawler {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "mospi-rag/1.0"
	}

	// AllowURLRevisit because dedup is the Frontier's job; the collector
	// must not keep its own visited state.
	collector := colly.NewCollector(
		colly.UserAgent(config.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       config.RateLimit,
		Parallelism: 1,
	})
	collector.SetRequestTimeout(config.Timeout)

	c := &Crawler{
		config:    config,
		frontier:  NewFrontier(),
		collector: collector,
	}
	collector.OnResponse(func(r *colly.Response) {
		c.pageBody = string(r.Body)
		c.gotPage = true
	})
	return c
}

// Run crawls from the seed URL until the frontier is empty or the page
// budget is exhausted, returning every document extracted along the way.
// Fetch and structural-parse failures are logged and skipped.
func (c *Crawler) Run(ctx context.Context) ([]models.Document, error) {
	if c.config.SeedURL == "" {
		return nil, errors.New("seed URL is required")
	}

	c.frontier.Enqueue(c.config.SeedURL)

	var documents []models.Document
	fetched := 0

	// Budget is checked before popping so no more than MaxPages successful
	// fetches ever happen.
	for fetched < c.config.MaxPages {
		if err := ctx.Err(); err != nil {
			slog.Info("crawl cancelled", "pages_fetched", fetched)
			return documents, err
		}

		pageURL, ok := c.frontier.Next()
		if !ok {
			break
		}

		body, err := c.fetch(pageURL)
		if err != nil {
			slog.Error("failed to fetch page", "url", pageURL, "error", err)
			continue
		}
		fetched++
		c.frontier.MarkVisited(pageURL)

		docs, err := ParseListing(body, pageURL)
		if err != nil {
			slog.Warn("page has no listing structure, skipping", "url", pageURL, "error", err)
			continue
		}
		documents = append(documents, docs...)

		for _, link := range FindPaginationLinks(body, pageURL) {
			// A spent budget means no more fetches, so queue growth would
			// be pointless.
			if fetched >= c.config.MaxPages {
				break
			}
			if c.frontier.Enqueue(link) {
				slog.Debug("queued pagination link", "url", link)
			}
		}
	}

	slog.Info("crawl finished", "pages_fetched", fetched, "documents", len(documents))
	return documents, nil
}

// fetch retrieves one page through the collector, which applies the
// politeness delay, user agent and timeout.
func (c *Crawler) fetch(pageURL string) (string, error) {
	c.pageBody = ""
	c.gotPage = false

	if err := c.collector.Visit(pageURL); err != nil {
		return "", err
	}
	if !c.gotPage {
		return "", fmt.Errorf("no response received for %s", pageURL)
	}
	return c.pageBody, nil
}
