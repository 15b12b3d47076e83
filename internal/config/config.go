package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Crawler   Crawler   `mapstructure:"crawler"`
	Data      Data      `mapstructure:"data"`
	Chunker   Chunker   `mapstructure:"chunker"`
	Ollama    Ollama    `mapstructure:"ollama"`
	Retrieval Retrieval `mapstructure:"retrieval"`
	API       API       `mapstructure:"api"`
	MCP       MCP       `mapstructure:"mcp"`
}

// Crawler holds listing-site crawl configuration.
type Crawler struct {
	SeedURL   string        `mapstructure:"seed_url"`
	MaxPages  int           `mapstructure:"max_pages"`
	RateLimit time.Duration `mapstructure:"rate_limit"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Data holds the on-disk layout for crawl, pipeline and index artifacts.
type Data struct {
	Dir string `mapstructure:"dir"`
}

// CrawledDocumentsPath is the crawl output file.
func (d Data) CrawledDocumentsPath() string {
	return filepath.Join(d.Dir, "raw", "crawled_documents.json")
}

// PDFDir is where downloaded PDF files land.
func (d Data) PDFDir() string {
	return filepath.Join(d.Dir, "raw", "pdf")
}

// ProcessedDocumentsPath is the pipeline output file.
func (d Data) ProcessedDocumentsPath() string {
	return filepath.Join(d.Dir, "processed", "processed_documents.json")
}

// IndexPath is the vector index blob; its metadata sibling is derived from it.
func (d Data) IndexPath() string {
	return filepath.Join(d.Dir, "rag", "index.bin")
}

// Chunker holds text chunking configuration.
type Chunker struct {
	Size    int `mapstructure:"size"`
	Overlap int `mapstructure:"overlap"`
}

// Ollama holds the local model server configuration.
type Ollama struct {
	BaseURL    string `mapstructure:"base_url"`
	EmbedModel string `mapstructure:"embed_model"`
	ChatModel  string `mapstructure:"chat_model"`
}

// Retrieval holds query-time configuration.
type Retrieval struct {
	TopK int `mapstructure:"top_k"`
}

// API holds the HTTP query server configuration.
type API struct {
	Addr string `mapstructure:"addr"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Crawler: Crawler{
			MaxPages:  5,
			RateLimit: 1 * time.Second,
			UserAgent: "mospi-rag/1.0 (+https://github.com/openstatlab/mospi-rag)",
			Timeout:   10 * time.Second,
		},
		Data: Data{
			Dir: "data",
		},
		Chunker: Chunker{
			Size:    500,
			Overlap: 50,
		},
		Ollama: Ollama{
			BaseURL:    "http://localhost:11434",
			EmbedModel: "nomic-embed-text",
			ChatModel:  "llama3",
		},
		Retrieval: Retrieval{
			TopK: 5,
		},
		API: API{
			Addr: ":8000",
		},
		MCP: MCP{
			Name:    "mospi-rag",
			Version: "1.0.0",
		},
	}
}

// Validate rejects configuration that would make a run misbehave later.
// Called once at startup; these are fatal, never silently defaulted.
func (c Config) Validate() error {
	if c.Chunker.Size <= 0 {
		return fmt.Errorf("chunker.size must be positive, got %d", c.Chunker.Size)
	}
	if c.Chunker.Overlap < 0 {
		return fmt.Errorf("chunker.overlap must not be negative, got %d", c.Chunker.Overlap)
	}
	if c.Chunker.Overlap >= c.Chunker.Size {
		return fmt.Errorf("chunker.overlap (%d) must be strictly less than chunker.size (%d)",
			c.Chunker.Overlap, c.Chunker.Size)
	}
	if c.Crawler.MaxPages <= 0 {
		return fmt.Errorf("crawler.max_pages must be positive, got %d", c.Crawler.MaxPages)
	}
	if c.Crawler.RateLimit < 0 {
		return fmt.Errorf("crawler.rate_limit must not be negative, got %v", c.Crawler.RateLimit)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir must not be empty")
	}
	return nil
}
