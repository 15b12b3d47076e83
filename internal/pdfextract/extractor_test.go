package pdfextract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtract_MissingFile(t *testing.T) {
	e := New()

	_, err := e.Extract(filepath.Join(t.TempDir(), "nope.pdf"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error should carry a diagnostic reason, got %v", err)
	}
}

func TestExtract_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := New()
	content, err := e.Extract(path)
	if err == nil {
		t.Fatal("expected error for corrupt file")
	}
	if content != nil {
		t.Error("failed extraction must not return partial content")
	}
}

func TestExtract_TruncatedHeader(t *testing.T) {
	// A valid header with a garbage body must still fail cleanly, not panic.
	path := filepath.Join(t.TempDir(), "truncated.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\ngarbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := New()
	if _, err := e.Extract(path); err == nil {
		t.Fatal("expected error for truncated file")
	}
}
