package segment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Document is the persisted segment exchange format: the segment list plus
// the flat word pool the transcriber produced.
type Document struct {
	Language string    `json:"language,omitempty"`
	Segments []Segment `json:"segments"`
	Words    []Word    `json:"words,omitempty"`
}

// LoadDocument reads a segment document from disk.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read segments: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse segments %s: %w", path, err)
	}
	return &doc, nil
}

// SaveDocument writes a segment document atomically: the content lands in a
// temp file in the destination directory and is renamed into place, so a
// crashed writer never leaves a truncated document behind.
func SaveDocument(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode segments: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".segments-*.json")
	if err != nil {
		return fmt.Errorf("create temp segments file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write segments: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close segments: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace segments: %w", err)
	}
	return nil
}
