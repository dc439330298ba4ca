// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/datasheet-miner/pkg/types"
)

// fakeConverter implements Converter for testing. It returns canned HTML
// or an error, depending on configuration.
type fakeConverter struct {
	output string
	err    error
}

func (f *fakeConverter) Convert(rawPath string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

// setupPDF creates a temporary raw PDF file and returns its path and the
// temp dir.
func setupPDF(t *testing.T) (rawPath, tmpDir string) {
	t.Helper()
	tmpDir = t.TempDir()
	rawDir := filepath.Join(tmpDir, "raw")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		t.Fatal(err)
	}
	rawPath = filepath.Join(rawDir, "lm317.pdf")
	if err := os.WriteFile(rawPath, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	return rawPath, tmpDir
}

func TestConvertDatasheet(t *testing.T) {
	tests := []struct {
		name       string
		converter  *fakeConverter
		preCreate  bool // create output HTML before running
		wantStatus types.ConversionStatus
		wantLog    string
	}{
		{
			name:       "successful conversion",
			converter:  &fakeConverter{output: "<html><body><h1>LM317</h1></body></html>"},
			wantStatus: types.ConversionDone,
			wantLog:    "converted:",
		},
		{
			name:       "skip existing html",
			converter:  &fakeConverter{output: "should not be called"},
			preCreate:  true,
			wantStatus: ConversionNone,
			wantLog:    "skipped:",
		},
		{
			name:       "conversion failure",
			converter:  &fakeConverter{err: errors.New("backend crashed")},
			wantStatus: types.ConversionFailed,
			wantLog:    "failed:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rawPath, tmpDir := setupPDF(t)

			if tt.preCreate {
				outDir := filepath.Join(tmpDir, "html")
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(filepath.Join(outDir, "lm317.html"), []byte("existing"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			ds := types.Datasheet{ID: "lm317", Path: rawPath, Format: types.FormatPDF}
			var log bytes.Buffer

			status := ConvertDatasheet(tt.converter, ds, tmpDir, &log)

			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if !strings.Contains(log.String(), tt.wantLog) {
				t.Errorf("log output %q does not contain %q", log.String(), tt.wantLog)
			}
		})
	}
}

func TestConvertDatasheet_Header(t *testing.T) {
	rawPath, tmpDir := setupPDF(t)
	conv := &fakeConverter{output: "<html><body><h1>LM317</h1></body></html>"}
	ds := types.Datasheet{ID: "lm317", Path: rawPath, Format: types.FormatPDF}

	var log bytes.Buffer
	status := ConvertDatasheet(conv, ds, tmpDir, &log)
	if status != types.ConversionDone {
		t.Fatalf("expected ConversionDone, got %q", status)
	}

	htmlPath := filepath.Join(tmpDir, "html", "lm317.html")
	data, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "<!--") {
		t.Error("output should start with a comment header")
	}
	if !strings.Contains(content, `datasheet_id: "lm317"`) {
		t.Error("header should contain datasheet_id")
	}
	if !strings.Contains(content, `source_file:`) {
		t.Error("header should contain source_file")
	}
	if !strings.Contains(content, `converted_at:`) {
		t.Error("header should contain converted_at")
	}
	if !strings.Contains(content, "<h1>LM317</h1>") {
		t.Error("output should contain the original HTML body")
	}
}

func TestConvertBatch(t *testing.T) {
	tmpDir := t.TempDir()
	rawDir := filepath.Join(tmpDir, "raw")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		t.Fatal(err)
	}

	// Four raws: one converts, one is pre-existing, one fails, and one is
	// an HTML raw that bypasses the converter entirely.
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if err := os.WriteFile(filepath.Join(rawDir, name), []byte("%PDF-"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	htmlRaw := filepath.Join(rawDir, "d.html")
	if err := os.WriteFile(htmlRaw, []byte("<html><body>D</body></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Pre-create output for "b" to trigger skip.
	outDir := filepath.Join(tmpDir, "html")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "b.html"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Converter that fails for "c.pdf".
	conv := &selectiveConverter{
		outputs: map[string]string{
			filepath.Join(rawDir, "a.pdf"): "<h1>A</h1>",
			filepath.Join(rawDir, "b.pdf"): "<h1>B</h1>",
		},
		errors: map[string]error{
			filepath.Join(rawDir, "c.pdf"): errors.New("bad pdf"),
		},
	}

	sheets := []types.Datasheet{
		{ID: "a", Path: filepath.Join(rawDir, "a.pdf"), Format: types.FormatPDF},
		{ID: "b", Path: filepath.Join(rawDir, "b.pdf"), Format: types.FormatPDF},
		{ID: "c", Path: filepath.Join(rawDir, "c.pdf"), Format: types.FormatPDF},
		{ID: "d", Path: htmlRaw, Format: types.FormatHTML},
	}

	var log bytes.Buffer
	result := ConvertBatch(conv, sheets, tmpDir, &log)

	if result.Converted != 2 {
		t.Errorf("converted = %d, want 2", result.Converted)
	}
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if !result.HasFailures() {
		t.Error("HasFailures should be true")
	}
	if result.Total() != 4 {
		t.Errorf("total = %d, want 4", result.Total())
	}

	// HTML raw content survives passthrough.
	data, err := os.ReadFile(filepath.Join(outDir, "d.html"))
	if err != nil {
		t.Fatalf("reading passthrough output: %v", err)
	}
	if !strings.Contains(string(data), "<body>D</body>") {
		t.Error("passthrough output should contain the raw HTML body")
	}

	if !strings.Contains(log.String(), "Batch summary:") {
		t.Error("batch output should contain summary line")
	}
}

func TestConvertPaths(t *testing.T) {
	tmpDir := t.TempDir()
	rawDir := filepath.Join(tmpDir, "raw")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		t.Fatal(err)
	}

	pdfPath := filepath.Join(rawDir, "test.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-"), 0o644); err != nil {
		t.Fatal(err)
	}
	htmlPath := filepath.Join(rawDir, "page.html")
	if err := os.WriteFile(htmlPath, []byte("<html>page</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	conv := &fakeConverter{output: "<h1>Test</h1>"}
	var log bytes.Buffer
	result := ConvertPaths(conv, []string{pdfPath, htmlPath}, tmpDir, &log)

	if result.Converted != 2 {
		t.Errorf("converted = %d, want 2", result.Converted)
	}

	for _, name := range []string{"test.html", "page.html"} {
		if _, err := os.Stat(filepath.Join(tmpDir, "html", name)); err != nil {
			t.Errorf("expected output file %s: %v", name, err)
		}
	}
}

func TestPassthrough(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.html")
	if err := os.WriteFile(path, []byte("<html>x</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	conv := Passthrough{}
	out, err := conv.Convert(path)
	if err != nil {
		t.Fatal(err)
	}
	if out != "<html>x</html>" {
		t.Errorf("output = %q", out)
	}

	empty := filepath.Join(dir, "empty.html")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := conv.Convert(empty); err == nil {
		t.Error("expected error for empty file")
	}

	if _, err := conv.Convert(filepath.Join(dir, "missing.html")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPdftohtmlConverter(t *testing.T) {
	conv := &PdftohtmlConverter{
		run: func(name string, args []string, stdout io.Writer) error {
			if name != binPdftohtml {
				t.Errorf("binary = %q, want %q", name, binPdftohtml)
			}
			if args[len(args)-1] != "doc.pdf" {
				t.Errorf("last arg = %q, want the PDF path", args[len(args)-1])
			}
			fmt.Fprint(stdout, "<html><body>converted</body></html>")
			return nil
		},
	}

	out, err := conv.Convert("doc.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "converted") {
		t.Errorf("output = %q", out)
	}
}

func TestPdftohtmlConverterErrors(t *testing.T) {
	failing := &PdftohtmlConverter{
		run: func(name string, args []string, stdout io.Writer) error {
			return errors.New("exit status 1")
		},
	}
	if _, err := failing.Convert("doc.pdf"); err == nil {
		t.Error("expected error when the binary fails")
	}

	silent := &PdftohtmlConverter{
		run: func(name string, args []string, stdout io.Writer) error {
			return nil
		},
	}
	if _, err := silent.Convert("doc.pdf"); err == nil {
		t.Error("expected error for empty output")
	}
}

// selectiveConverter returns different results per file path.
type selectiveConverter struct {
	outputs map[string]string
	errors  map[string]error
}

func (s *selectiveConverter) Convert(rawPath string) (string, error) {
	if err, ok := s.errors[rawPath]; ok {
		return "", err
	}
	if out, ok := s.outputs[rawPath]; ok {
		return out, nil
	}
	return "", errors.New("unexpected path: " + rawPath)
}
