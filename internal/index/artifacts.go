package index

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openstatlab/mospi-rag/pkg/models"
)

// blobMagic identifies the vector blob format.
const blobMagic = uint32(0x4d524147) // "MRAG"

// blobHeaderBytes is the size of the magic/dim/count header.
const blobHeaderBytes = 12

// MetadataPath derives the metadata sibling of an index blob by replacing
// the blob's extension, so the pair can never drift apart by configuration.
func MetadataPath(indexPath string) string {
	ext := filepath.Ext(indexPath)
	return strings.TrimSuffix(indexPath, ext) + "_metadata.json"
}

// WriteArtifacts persists the index blob and its metadata as a pair. An
// empty index is refused: persisting it would let a later serve run start
// against an index that can never return results.
func WriteArtifacts(indexPath string, f *Flat, entries []models.IndexEntry) error {
	if f.Len() == 0 {
		return fmt.Errorf("refusing to persist an empty index")
	}
	if f.Len() != len(entries) {
		return fmt.Errorf("index has %d vectors but %d metadata entries", f.Len(), len(entries))
	}

	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(indexPath), err)
	}

	blob, err := os.Create(indexPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", indexPath, err)
	}
	w := bufio.NewWriter(blob)
	for _, v := range []uint32{blobMagic, uint32(f.dim), uint32(f.Len())} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			blob.Close()
			return fmt.Errorf("writing index header: %w", err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, f.vectors); err != nil {
		blob.Close()
		return fmt.Errorf("writing vectors: %w", err)
	}
	if err := w.Flush(); err != nil {
		blob.Close()
		return fmt.Errorf("flushing %s: %w", indexPath, err)
	}
	if err := blob.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", indexPath, err)
	}

	meta, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.WriteFile(MetadataPath(indexPath), meta, 0o644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// LoadArtifacts reads an index blob together with its metadata sibling.
// A missing half of the pair, or a count mismatch between the two, is a
// configuration error: the files only mean anything together.
func LoadArtifacts(indexPath string) (*Flat, []models.IndexEntry, error) {
	blob, err := os.Open(indexPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening index %s: %w", indexPath, err)
	}
	defer blob.Close()

	r := bufio.NewReader(blob)
	var magic, dim, count uint32
	for _, v := range []*uint32{&magic, &dim, &count} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, nil, fmt.Errorf("reading index header: %w", err)
		}
	}
	if magic != blobMagic {
		return nil, nil, fmt.Errorf("%s is not a vector index blob", indexPath)
	}
	if dim == 0 {
		return nil, nil, fmt.Errorf("index %s declares zero dimension", indexPath)
	}

	// The header's counts size the allocation, so they must be backed by
	// actual blob bytes before any memory is reserved.
	info, err := blob.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", indexPath, err)
	}
	need := blobHeaderBytes + 4*int64(dim)*int64(count)
	if info.Size() < need {
		return nil, nil, fmt.Errorf("index %s declares %d vectors of dimension %d but holds only %d bytes",
			indexPath, count, dim, info.Size())
	}

	vectors := make([]float32, int64(dim)*int64(count))
	if err := binary.Read(r, binary.LittleEndian, vectors); err != nil {
		return nil, nil, fmt.Errorf("reading vectors: %w", err)
	}

	metaPath := MetadataPath(indexPath)
	metaBytes, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening metadata %s: %w", metaPath, err)
	}
	var entries []models.IndexEntry
	if err := json.Unmarshal(metaBytes, &entries); err != nil {
		return nil, nil, fmt.Errorf("decoding metadata %s: %w", metaPath, err)
	}

	if int(count) != len(entries) {
		return nil, nil, fmt.Errorf("index holds %d vectors but metadata has %d entries", count, len(entries))
	}

	return &Flat{dim: int(dim), vectors: vectors}, entries, nil
}
