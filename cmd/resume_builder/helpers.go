package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-builder/internal/customlayout"
	"github.com/jonathan/resume-builder/internal/interchange"
	"github.com/jonathan/resume-builder/internal/preview"
)

// firstNonEmpty returns the first non-empty value: flags before config values.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// loadData reads a resume data file in any supported shape.
func loadData(path string) (interchange.Imported, error) {
	if path == "" {
		return interchange.Imported{}, fmt.Errorf("no data file given (use --data or the config file)")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return interchange.Imported{}, fmt.Errorf("data file not found: %s", path)
	}
	return interchange.ReadFile(path)
}

// readCustomLayout returns the snippet stored at path, or "" when path is empty.
func readCustomLayout(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read custom layout file: %w", err)
	}
	return string(content), nil
}

// newPreviewer builds a previewer honoring the configured execution limits.
func newPreviewer() *preview.Previewer {
	renderer := customlayout.NewRenderer(
		customlayout.WithLogger(logger),
		customlayout.WithLimits(cfg.MaxSteps, cfg.MaxDepth),
	)
	return preview.New(preview.WithLogger(logger), preview.WithRenderer(renderer))
}

// writeOutput writes content to path, creating parent directories, or to w when
// path is empty.
func writeOutput(w io.Writer, path string, content []byte) error {
	if path == "" {
		_, err := w.Write(content)
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
