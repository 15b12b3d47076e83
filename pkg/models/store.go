package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteDocuments writes the crawl output as an indented JSON array.
func WriteDocuments(path string, docs []Document) error {
	return writeJSON(path, docs)
}

// LoadDocuments reads a crawl output file.
func LoadDocuments(path string) ([]Document, error) {
	var docs []Document
	if err := readJSON(path, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// WriteProcessed writes the pipeline output as an indented JSON array.
func WriteProcessed(path string, docs []ProcessedDocument) error {
	return writeJSON(path, docs)
}

// LoadProcessed reads a pipeline output file.
func LoadProcessed(path string) ([]ProcessedDocument, error) {
	var docs []ProcessedDocument
	if err := readJSON(path, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
