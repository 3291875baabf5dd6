// Package marker writes the small JSON file whose content changes before
// every synthetic commit, giving git a real modification to record.
package marker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPath is the marker file name, relative to the repository root.
const DefaultPath = "data.json"

// Record is the marker file content.
type Record struct {
	Date  string `json:"date"`
	Seq   int    `json:"seq,omitempty"`
	RunID string `json:"run_id,omitempty"`
}

// Writer persists Records to a fixed path.
type Writer struct {
	path string
}

// NewWriter returns a writer for path. An empty path means DefaultPath.
func NewWriter(path string) *Writer {
	if path == "" {
		path = DefaultPath
	}
	return &Writer{path: path}
}

// Path returns the file the writer replaces.
func (w *Writer) Path() string { return w.path }

// Write replaces the marker file with rec. The file is written to a
// temporary sibling first and renamed into place.
func (w *Writer) Write(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal marker: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".marker-*")
	if err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write marker: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	return nil
}
