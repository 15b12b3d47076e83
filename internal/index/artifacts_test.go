package index

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/openstatlab/mospi-rag/pkg/models"
)

func sampleEntries(n int) []models.IndexEntry {
	entries := make([]models.IndexEntry, n)
	for i := range entries {
		entries[i] = models.IndexEntry{
			DocumentID:    "doc",
			DocumentTitle: "Doc",
			ChunkText:     string(rune('a' + i)),
			ChunkIndex:    i,
		}
	}
	return entries
}

func TestMetadataPath(t *testing.T) {
	got := MetadataPath(filepath.Join("data", "rag", "index.bin"))
	want := filepath.Join("data", "rag", "index_metadata.json")
	if got != want {
		t.Errorf("MetadataPath = %q, want %q", got, want)
	}
}

func TestArtifacts_RoundTrip(t *testing.T) {
	f, _ := NewFlat(3)
	f.Add([]float32{1, 2, 3})
	f.Add([]float32{4, 5, 6})

	path := filepath.Join(t.TempDir(), "rag", "index.bin")
	if err := WriteArtifacts(path, f, sampleEntries(2)); err != nil {
		t.Fatalf("WriteArtifacts: %v", err)
	}

	loaded, entries, err := LoadArtifacts(path)
	if err != nil {
		t.Fatalf("LoadArtifacts: %v", err)
	}
	if loaded.Dim() != 3 || loaded.Len() != 2 {
		t.Errorf("loaded dim=%d len=%d, want 3, 2", loaded.Dim(), loaded.Len())
	}
	if len(entries) != 2 || entries[1].ChunkIndex != 1 {
		t.Errorf("entries = %+v", entries)
	}

	// The loaded index must search identically to the built one.
	results, err := loaded.Search([]float32{1, 2, 3}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Position != 0 {
		t.Errorf("results = %+v, want position 0 nearest", results)
	}
}

func TestWriteArtifacts_RefusesEmptyIndex(t *testing.T) {
	f, _ := NewFlat(3)
	path := filepath.Join(t.TempDir(), "index.bin")

	if err := WriteArtifacts(path, f, nil); err == nil {
		t.Fatal("expected error for empty index")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no artifact may be written for an empty index")
	}
}

func TestWriteArtifacts_RefusesMisalignedPair(t *testing.T) {
	f, _ := NewFlat(2)
	f.Add([]float32{1, 2})

	if err := WriteArtifacts(filepath.Join(t.TempDir(), "index.bin"), f, sampleEntries(2)); err == nil {
		t.Error("expected error when vector and metadata counts differ")
	}
}

func TestLoadArtifacts_MissingMetadata(t *testing.T) {
	f, _ := NewFlat(2)
	f.Add([]float32{1, 2})

	path := filepath.Join(t.TempDir(), "index.bin")
	if err := WriteArtifacts(path, f, sampleEntries(1)); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(MetadataPath(path)); err != nil {
		t.Fatal(err)
	}

	if _, _, err := LoadArtifacts(path); err == nil {
		t.Error("loading the blob without its metadata sibling must fail")
	}
}

func TestLoadArtifacts_MissingIndex(t *testing.T) {
	if _, _, err := LoadArtifacts(filepath.Join(t.TempDir(), "index.bin")); err == nil {
		t.Error("expected error for missing index blob")
	}
}

func TestLoadArtifacts_HeaderCountExceedsBlob(t *testing.T) {
	// A header may claim far more vectors than the file holds; the declared
	// size must be rejected before anything is allocated for it.
	var buf bytes.Buffer
	for _, v := range []uint32{blobMagic, 1024, 1 << 30} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "index.bin")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := LoadArtifacts(path); err == nil {
		t.Error("expected error for a header declaring more vectors than the blob holds")
	}
}

func TestLoadArtifacts_NotABlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	if err := os.WriteFile(path, []byte("garbage data here"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadArtifacts(path); err == nil {
		t.Error("expected error for a non-index file")
	}
}
