package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Renderer writes pipeline output as JSON Lines
type Renderer struct{}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderRecords writes one dataset record per line
func (r *Renderer) RenderRecords(result *BuildResult, path string) error {
	return writeJSONL(path, result.Records)
}

// RenderFeatures writes one feature group per line
func (r *Renderer) RenderFeatures(result *FeatureResult, path string) error {
	return writeJSONL(path, result.Groups)
}

// RenderSummary prints run statistics
func (r *Renderer) RenderSummary(w io.Writer, split string, stats Stats) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Split:             %s\n", split)
	fmt.Fprintf(w, "  Rows:              %d\n", stats.Rows)
	fmt.Fprintf(w, "  Malformed rows:    %d\n", stats.Malformed)
	fmt.Fprintf(w, "  Missing evidence:  %d\n", stats.MissingEvidence)
	fmt.Fprintf(w, "  Examples:          %d\n", stats.Examples)
	if stats.Features > 0 {
		fmt.Fprintf(w, "  Features:          %d\n", stats.Features)
	}
	fmt.Fprintf(w, "\n")
}

func writeJSONL[T any](path string, items []T) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	for i, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("encode line %d: %w", i+1, err)
		}
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
