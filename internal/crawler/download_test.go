package crawler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openstatlab/mospi-rag/pkg/models"
)

func TestFetcher_Idempotent(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer server.Close()

	dir := t.TempDir()
	f := NewFetcher(5*time.Second, "test-agent")

	first, err := f.Fetch(t.Context(), server.URL+"/files/report.pdf", dir)
	if err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	if filepath.Base(first) != "report.pdf" {
		t.Errorf("filename = %q, want report.pdf", filepath.Base(first))
	}

	second, err := f.Fetch(t.Context(), server.URL+"/files/report.pdf", dir)
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if second != first {
		t.Errorf("second path %q != first %q", second, first)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("network requests = %d, want exactly 1", got)
	}

	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("file content = %q", data)
	}
}

func TestFetcher_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/files/final.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pdf-bytes"))
	})
	mux.HandleFunc("/moved.pdf", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/files/final.pdf", http.StatusMovedPermanently)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := NewFetcher(5*time.Second, "")
	p, err := f.Fetch(t.Context(), server.URL+"/moved.pdf", t.TempDir())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// Destination name comes from the requested URL, not the redirect target.
	if filepath.Base(p) != "moved.pdf" {
		t.Errorf("filename = %q, want moved.pdf", filepath.Base(p))
	}
}

func TestFetcher_StatusErrorLeavesNoFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dir := t.TempDir()
	f := NewFetcher(5*time.Second, "")

	if _, err := f.Fetch(t.Context(), server.URL+"/missing.pdf", dir); err == nil {
		t.Fatal("expected error for 404")
	}
	if _, err := os.Stat(filepath.Join(dir, "missing.pdf")); !os.IsNotExist(err) {
		t.Error("failed download must not leave a file behind")
	}
}

func TestFetcher_FetchAll(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path == "/files/b.pdf" {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		w.Write([]byte("pdf"))
	}))
	defer server.Close()

	dir := t.TempDir()
	docs := []models.Document{
		{
			ID: "d1",
			FileLinks: []models.FileLink{
				{URL: server.URL + "/files/a.pdf", FileType: "pdf"},
				{URL: server.URL + "/files/b.pdf", FileType: "pdf"},
			},
		},
		{
			ID: "d2",
			FileLinks: []models.FileLink{
				// Duplicate of d1's first link: must be downloaded once.
				{URL: server.URL + "/files/a.pdf", FileType: "pdf"},
				// Non-pdf link: never fetched.
				{URL: server.URL + "/files/c.docx", FileType: "docx"},
			},
		},
	}

	f := NewFetcher(5*time.Second, "")
	f.FetchAll(t.Context(), docs, dir)

	// a.pdf and b.pdf each requested once, c.docx never.
	if got := requests.Load(); got != 2 {
		t.Errorf("network requests = %d, want 2", got)
	}

	if docs[0].FileLinks[0].FilePath == "" {
		t.Error("successful download should stamp FilePath")
	}
	if docs[0].FileLinks[1].FilePath != "" {
		t.Error("failed download must leave FilePath empty")
	}
	if docs[1].FileLinks[0].FilePath != docs[0].FileLinks[0].FilePath {
		t.Error("duplicate URL should share the same local path")
	}
	if docs[1].FileLinks[1].FilePath != "" {
		t.Error("non-pdf link must not be downloaded")
	}
}
