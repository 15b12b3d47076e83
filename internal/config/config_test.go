package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults_AreValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Errorf("Defaults() should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "overlap equals size",
			mutate:  func(c *Config) { c.Chunker.Size = 100; c.Chunker.Overlap = 100 },
			wantErr: "strictly less",
		},
		{
			name:    "overlap exceeds size",
			mutate:  func(c *Config) { c.Chunker.Size = 100; c.Chunker.Overlap = 150 },
			wantErr: "strictly less",
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.Chunker.Size = 0 },
			wantErr: "chunker.size",
		},
		{
			name:    "negative overlap",
			mutate:  func(c *Config) { c.Chunker.Overlap = -1 },
			wantErr: "chunker.overlap",
		},
		{
			name:    "zero max pages",
			mutate:  func(c *Config) { c.Crawler.MaxPages = 0 },
			wantErr: "max_pages",
		},
		{
			name:    "zero top k",
			mutate:  func(c *Config) { c.Retrieval.TopK = 0 },
			wantErr: "top_k",
		},
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.Data.Dir = "" },
			wantErr: "data.dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestData_Paths(t *testing.T) {
	d := Data{Dir: "data"}

	if got, want := d.CrawledDocumentsPath(), filepath.Join("data", "raw", "crawled_documents.json"); got != want {
		t.Errorf("CrawledDocumentsPath = %q, want %q", got, want)
	}
	if got, want := d.PDFDir(), filepath.Join("data", "raw", "pdf"); got != want {
		t.Errorf("PDFDir = %q, want %q", got, want)
	}
	if got, want := d.ProcessedDocumentsPath(), filepath.Join("data", "processed", "processed_documents.json"); got != want {
		t.Errorf("ProcessedDocumentsPath = %q, want %q", got, want)
	}
	if got, want := d.IndexPath(), filepath.Join("data", "rag", "index.bin"); got != want {
		t.Errorf("IndexPath = %q, want %q", got, want)
	}
}
