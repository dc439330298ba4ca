// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements datasheet-to-HTML conversion with pluggable backends.
package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/datasheet-miner/pkg/types"
)

const (
	// htmlDir is the subdirectory under the datasheets base for HTML output.
	htmlDir = "html"
	// rawDir is the subdirectory under the datasheets base for raw files.
	rawDir = "raw"
)

// Converter transforms a raw datasheet file into HTML text. Different
// backends (pdftohtml, docling, passthrough) implement this interface.
type Converter interface {
	// Convert reads a raw file at rawPath and returns the HTML content.
	Convert(rawPath string) (string, error)
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of datasheets processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any datasheets failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertDatasheet converts a single raw datasheet to HTML, writing the
// result to the output directory. It returns the status of the conversion.
// If the HTML output already exists, it skips conversion and returns
// ConversionNone.
func ConvertDatasheet(c Converter, ds types.Datasheet, datasheetsDir string, w io.Writer) types.ConversionStatus {
	outDir := filepath.Join(datasheetsDir, htmlDir)
	base := strings.TrimSuffix(filepath.Base(ds.Path), filepath.Ext(ds.Path))
	htmlPath := filepath.Join(outDir, base+".html")

	if _, err := os.Stat(htmlPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
		return ConversionNone
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return types.ConversionFailed
	}

	raw, err := c.Convert(ds.Path)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return types.ConversionFailed
	}

	content := addHeader(ds, raw)

	if err := os.WriteFile(htmlPath, []byte(content), 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return types.ConversionFailed
	}

	fmt.Fprintf(w, "converted: %s\n", base)
	return types.ConversionDone
}

// ConvertBatch processes a list of datasheets, printing per-file status to
// w and returning a summary. PDF datasheets go through the given converter;
// HTML raws are passed through unchanged.
func ConvertBatch(c Converter, sheets []types.Datasheet, datasheetsDir string, w io.Writer) BatchResult {
	var result BatchResult
	for _, ds := range sheets {
		conv := c
		if ds.Format == types.FormatHTML {
			conv = Passthrough{}
		}
		status := ConvertDatasheet(conv, ds, datasheetsDir, w)
		switch status {
		case types.ConversionDone:
			result.Converted++
		case ConversionNone:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// ConvertPaths builds Datasheet records from raw file paths and delegates
// to ConvertBatch. Each path is turned into a minimal Datasheet with ID
// derived from the filename and format derived from the extension.
func ConvertPaths(c Converter, rawPaths []string, datasheetsDir string, w io.Writer) BatchResult {
	sheets := make([]types.Datasheet, len(rawPaths))
	for i, p := range rawPaths {
		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		format := types.FormatPDF
		switch strings.ToLower(filepath.Ext(p)) {
		case ".html", ".htm":
			format = types.FormatHTML
		}
		sheets[i] = types.Datasheet{
			ID:     base,
			Path:   p,
			Format: format,
		}
	}
	return ConvertBatch(c, sheets, datasheetsDir, w)
}

// ConversionNone is a local alias for "skip" status (HTML already exists).
const ConversionNone = types.ConversionNone

// addHeader prepends a comment header to the converted HTML content.
func addHeader(ds types.Datasheet, body string) string {
	ts := time.Now().UTC().Format(time.RFC3339)
	var b strings.Builder
	fmt.Fprintf(&b, "<!-- datasheet_id: %q -->\n", ds.ID)
	fmt.Fprintf(&b, "<!-- source_file: %q -->\n", ds.Path)
	fmt.Fprintf(&b, "<!-- converted_at: %q -->\n", ts)
	b.WriteString("\n")
	b.WriteString(body)
	return b.String()
}
