package emit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteJSON encodes a dataset as indented JSON and writes it to w.
// Because every dataset slice is sorted at construction, identical runs
// produce byte-identical output.
func WriteJSON(ds *Dataset, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a dataset to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(ds *Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(ds, f)
}

// JSONEmitter writes datasets to a fixed file path. An empty path writes
// to Out instead, which the CLI points at stdout.
type JSONEmitter struct {
	Path string
	Out  io.Writer
}

// Emit implements [Emitter].
func (e *JSONEmitter) Emit(_ context.Context, ds *Dataset) error {
	if e.Path == "" {
		return WriteJSON(ds, e.Out)
	}
	return ExportJSON(ds, e.Path)
}
