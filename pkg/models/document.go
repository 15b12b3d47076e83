package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Date is a calendar date serialized as "2006-01-02". Listing pages carry
// publication dates without a time component, so a bare time.Time would
// round-trip with a spurious midnight timestamp.
type Date struct {
	time.Time
}

// DateFormat is the JSON wire format for Date values.
const DateFormat = "2006-01-02"

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON encodes the date as a quoted "2006-01-02" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateFormat) + `"`), nil
}

// UnmarshalJSON decodes a quoted "2006-01-02" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	t, err := time.Parse(`"`+DateFormat+`"`, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// FileLink is a reference to a downloadable asset found on a listing row.
// It is owned by its parent Document and never modified after the crawl
// stamps the local path post-download.
type FileLink struct {
	URL      string `json:"url"`
	FileType string `json:"file_type"`
	FilePath string `json:"file_path,omitempty"`
}

// Document represents one publication extracted from a listing page.
type Document struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	DatePublished *Date      `json:"date_published"`
	FileLinks     []FileLink `json:"file_links"`
	ContentHash   string     `json:"content_hash,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// DocumentID creates a deterministic ID from a document URL.
// The ID is the first 16 hex chars of the SHA-256 of the URL, so re-crawls
// of the same URL always produce the same ID across process runs.
func DocumentID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}

// TableMatrix is a table as rows of cell strings. Rows may be jagged.
type TableMatrix [][]string

// ExtractedContent is the transient result of content extraction for one file.
type ExtractedContent struct {
	Text   string
	Tables []TableMatrix
}

// ProcessedFile is one extracted and chunked file within a processed document.
type ProcessedFile struct {
	URL        string   `json:"url"`
	Path       string   `json:"path"`
	TextChunks []string `json:"text_chunks"`
	TablesJSON string   `json:"tables_json"`
}

// ProcessedDocument is the pipeline output record for one document.
type ProcessedDocument struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	URL            string          `json:"url"`
	DatePublished  *Date           `json:"date_published"`
	ProcessedFiles []ProcessedFile `json:"processed_files"`
}

// IndexEntry is the metadata record for one embedded chunk. The entry at
// position i of the metadata sequence describes the vector at position i of
// the index; the two are always written and loaded as a pair.
type IndexEntry struct {
	DocumentID    string `json:"document_id"`
	DocumentTitle string `json:"document_title"`
	ChunkText     string `json:"chunk_text"`
	ChunkIndex    int    `json:"chunk_index"`
}
