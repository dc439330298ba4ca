// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/datasheet-miner/pkg/types"
)

const fakePDFContent = "%PDF-1.4 fake datasheet"

const fakeHTMLContent = `<!DOCTYPE html><html><body><h1>BC547</h1></body></html>`

// newTestServer creates an httptest server that serves fake PDF and HTML
// datasheets based on URL path.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/pdf/"):
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, fakePDFContent)
		case strings.HasPrefix(r.URL.Path, "/html/"):
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, fakeHTMLContent)
		default:
			http.NotFound(w, r)
		}
	}))
}

// overrideVendorURLs points the vendor URL templates at the test server
// and returns a cleanup function that restores the originals.
func overrideVendorURLs(tsURL string) func() {
	orig := vendorURLPatterns
	vendorURLPatterns = map[string]string{}
	for vendor := range orig {
		vendorURLPatterns[vendor] = tsURL + "/pdf/%s.pdf"
	}
	return func() { vendorURLPatterns = orig }
}

func testConfig(dir string) types.AcquisitionConfig {
	return types.AcquisitionConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "datasheet-miner-test/0.1",
		},
		DownloadDelay: 0,
		DatasheetsDir: dir,
	}
}

func TestSniffFormat(t *testing.T) {
	if got := sniffFormat([]byte(fakePDFContent)); got != types.FormatPDF {
		t.Errorf("sniffFormat(pdf) = %v, want %v", got, types.FormatPDF)
	}
	if got := sniffFormat([]byte(fakeHTMLContent)); got != types.FormatHTML {
		t.Errorf("sniffFormat(html) = %v, want %v", got, types.FormatHTML)
	}
	if got := sniffFormat(nil); got != types.FormatHTML {
		t.Errorf("sniffFormat(empty) = %v, want %v", got, types.FormatHTML)
	}
}

func TestAcquireDatasheetSendsVendorToken(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, fakePDFContent)
	}))
	defer ts.Close()
	restore := overrideVendorURLs(ts.URL)
	defer restore()

	cfg := testConfig(t.TempDir())
	cfg.VendorTokens = map[string]string{"ti": "tok-123"}
	var buf bytes.Buffer

	if _, _, err := AcquireDatasheet(context.Background(), ts.Client(), "ti:LM317", cfg, &buf); err != nil {
		t.Fatalf("AcquireDatasheet: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}

	// A vendor without a configured token sends no credential.
	gotAuth = "unset"
	cfg.VendorTokens = map[string]string{"onsemi": "tok-456"}
	if _, _, err := AcquireDatasheet(context.Background(), ts.Client(), "ti:BC547", cfg, &buf); err != nil {
		t.Fatalf("AcquireDatasheet: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

func TestAcquireDatasheetVendorPart(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()
	restore := overrideVendorURLs(ts.URL)
	defer restore()

	dir := t.TempDir()
	cfg := testConfig(dir)
	var buf bytes.Buffer

	ds, skipped, err := AcquireDatasheet(context.Background(), ts.Client(), "ti:LM317", cfg, &buf)
	if err != nil {
		t.Fatalf("AcquireDatasheet: %v", err)
	}
	if skipped {
		t.Error("expected download, got skipped")
	}
	if ds.ID != "lm317" {
		t.Errorf("ds.ID = %q, want %q", ds.ID, "lm317")
	}
	if ds.Manufacturer != "Texas Instruments" {
		t.Errorf("ds.Manufacturer = %q, want %q", ds.Manufacturer, "Texas Instruments")
	}
	if len(ds.PartNumbers) != 1 || ds.PartNumbers[0] != "LM317" {
		t.Errorf("ds.PartNumbers = %v, want [LM317]", ds.PartNumbers)
	}
	if ds.Format != types.FormatPDF {
		t.Errorf("ds.Format = %v, want %v", ds.Format, types.FormatPDF)
	}
	if ds.ConversionStatus != types.ConversionNone {
		t.Errorf("ds.ConversionStatus = %v, want %v", ds.ConversionStatus, types.ConversionNone)
	}

	data, err := os.ReadFile(filepath.Join(dir, "raw", "lm317.pdf"))
	if err != nil {
		t.Fatalf("reading raw file: %v", err)
	}
	if string(data) != fakePDFContent {
		t.Errorf("raw content = %q, want %q", string(data), fakePDFContent)
	}

	if _, err := os.Stat(filepath.Join(dir, "metadata", "lm317.yaml")); err != nil {
		t.Fatalf("metadata file missing: %v", err)
	}

	if !strings.Contains(buf.String(), "acquiring:") {
		t.Error("output should contain 'acquiring:'")
	}
}

func TestAcquireDatasheetURLDetectsHTML(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	dir := t.TempDir()
	cfg := testConfig(dir)
	var buf bytes.Buffer

	srcURL := ts.URL + "/html/BC547.html"
	ds, skipped, err := AcquireDatasheet(context.Background(), ts.Client(), srcURL, cfg, &buf)
	if err != nil {
		t.Fatalf("AcquireDatasheet: %v", err)
	}
	if skipped {
		t.Error("expected download, got skipped")
	}
	if ds.Format != types.FormatHTML {
		t.Errorf("ds.Format = %v, want %v", ds.Format, types.FormatHTML)
	}
	if ds.SourceURL != srcURL {
		t.Errorf("ds.SourceURL = %q, want %q", ds.SourceURL, srcURL)
	}
	if ds.Manufacturer != "" {
		t.Errorf("URL datasheet should have empty manufacturer, got %q", ds.Manufacturer)
	}
	if _, err := os.Stat(filepath.Join(dir, "raw", "bc547.html")); err != nil {
		t.Fatalf("raw HTML file missing: %v", err)
	}
}

func TestAcquireDatasheetLocalFile(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	srcPath := filepath.Join(t.TempDir(), "TIP120.pdf")
	if err := os.WriteFile(srcPath, []byte(fakePDFContent), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	ds, skipped, err := AcquireDatasheet(context.Background(), http.DefaultClient, srcPath, cfg, &buf)
	if err != nil {
		t.Fatalf("AcquireDatasheet: %v", err)
	}
	if skipped {
		t.Error("expected import, got skipped")
	}
	if ds.ID != "tip120" {
		t.Errorf("ds.ID = %q, want %q", ds.ID, "tip120")
	}
	if ds.SourceURL != "" {
		t.Errorf("local file should have empty source URL, got %q", ds.SourceURL)
	}

	data, err := os.ReadFile(filepath.Join(dir, "raw", "tip120.pdf"))
	if err != nil {
		t.Fatalf("reading raw file: %v", err)
	}
	if string(data) != fakePDFContent {
		t.Errorf("raw content = %q, want %q", string(data), fakePDFContent)
	}

	// Source file is copied, not moved.
	if _, err := os.Stat(srcPath); err != nil {
		t.Errorf("source file should remain: %v", err)
	}
}

func TestAcquireDatasheetSkipExisting(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()
	restore := overrideVendorURLs(ts.URL)
	defer restore()

	dir := t.TempDir()
	cfg := testConfig(dir)

	rawPath := filepath.Join(dir, "raw")
	if err := os.MkdirAll(rawPath, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(rawPath, "lm317.pdf"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	ds, skipped, err := AcquireDatasheet(context.Background(), ts.Client(), "ti:LM317", cfg, &buf)
	if err != nil {
		t.Fatalf("AcquireDatasheet: %v", err)
	}
	if !skipped {
		t.Error("expected skipped, got download")
	}
	if ds.ID != "lm317" {
		t.Errorf("ds.ID = %q, want %q", ds.ID, "lm317")
	}
	if !strings.Contains(buf.String(), "skipped:") {
		t.Error("output should contain 'skipped:'")
	}

	// File was not overwritten.
	data, err := os.ReadFile(filepath.Join(rawPath, "lm317.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "existing" {
		t.Errorf("raw content = %q, want %q", string(data), "existing")
	}
}

func TestAcquireDatasheetUnknownIdentifier(t *testing.T) {
	var buf bytes.Buffer
	_, _, err := AcquireDatasheet(context.Background(), http.DefaultClient, "not-an-id", testConfig(t.TempDir()), &buf)
	if err == nil {
		t.Fatal("expected error for unknown identifier")
	}
	if !strings.Contains(err.Error(), "unrecognized identifier") {
		t.Errorf("error = %v, want unrecognized identifier", err)
	}
}

func TestAcquireBatch(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()
	restore := overrideVendorURLs(ts.URL)
	defer restore()

	dir := t.TempDir()
	cfg := testConfig(dir)
	var buf bytes.Buffer

	ids := []string{"ti:LM317", "not-an-id", "onsemi:2N7002"}
	result := AcquireBatch(context.Background(), ts.Client(), ids, cfg, &buf)

	if result.Downloaded != 2 {
		t.Errorf("Downloaded = %d, want 2", result.Downloaded)
	}
	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
	if result.Total() != 3 {
		t.Errorf("Total() = %d, want 3", result.Total())
	}
	if !result.HasFailures() {
		t.Error("HasFailures() = false, want true")
	}
	if len(result.Datasheets) != 2 {
		t.Errorf("len(Datasheets) = %d, want 2", len(result.Datasheets))
	}
	if !strings.Contains(buf.String(), "Batch summary:") {
		t.Error("output should contain batch summary")
	}
}

func TestLoadAllMetadata(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()
	restore := overrideVendorURLs(ts.URL)
	defer restore()

	dir := t.TempDir()
	cfg := testConfig(dir)
	var buf bytes.Buffer
	AcquireBatch(context.Background(), ts.Client(), []string{"ti:LM317", "onsemi:2N7002"}, cfg, &buf)

	sheets, err := LoadAllMetadata(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(sheets) != 2 {
		t.Fatalf("len(sheets) = %d, want 2", len(sheets))
	}
	// Sorted by ID.
	if sheets[0].ID != "2n7002" || sheets[1].ID != "lm317" {
		t.Errorf("IDs = %q, %q, want 2n7002, lm317", sheets[0].ID, sheets[1].ID)
	}
}

func TestLoadAllMetadataMissingDir(t *testing.T) {
	sheets, err := LoadAllMetadata(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if len(sheets) != 0 {
		t.Errorf("len(sheets) = %d, want 0", len(sheets))
	}
}

func TestAcquireBatchSkipsExistingOnSecondRun(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()
	restore := overrideVendorURLs(ts.URL)
	defer restore()

	dir := t.TempDir()
	cfg := testConfig(dir)
	ids := []string{"ti:LM317"}

	var buf bytes.Buffer
	AcquireBatch(context.Background(), ts.Client(), ids, cfg, &buf)

	buf.Reset()
	result := AcquireBatch(context.Background(), ts.Client(), ids, cfg, &buf)
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}
	if result.Downloaded != 0 {
		t.Errorf("Downloaded = %d, want 0", result.Downloaded)
	}
}
