// Package acquire downloads datasheets and creates metadata records.
package acquire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/datasheet-miner/internal/httputil"
	"github.com/pdiddy/datasheet-miner/pkg/types"
)

const (
	rawDir      = "raw"
	metadataDir = "metadata"
)

// pdfMagic is the leading byte signature of a PDF file.
var pdfMagic = []byte("%PDF-")

// BatchResult holds the outcome of a batch acquisition run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Datasheets []*types.Datasheet
}

// Total returns the total number of identifiers processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any datasheets failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// AcquireDatasheet resolves a single identifier, fetches the raw file,
// and writes metadata. If the raw file already exists on disk, it skips
// the fetch. The skipped return value indicates whether the fetch was
// skipped.
func AcquireDatasheet(ctx context.Context, client *http.Client, identifier string, cfg types.AcquisitionConfig, w io.Writer) (ds *types.Datasheet, skipped bool, err error) {
	idType, normalized := Classify(identifier)
	if idType == TypeUnknown {
		return nil, false, fmt.Errorf("unrecognized identifier format: %q", identifier)
	}

	slug := Slug(idType, normalized)
	metaPath := filepath.Join(cfg.DatasheetsDir, metadataDir, slug+".yaml")

	// Skip if a raw file already exists under either format.
	for _, format := range []types.Format{types.FormatPDF, types.FormatHTML} {
		existing := rawPath(cfg.DatasheetsDir, slug, format)
		if _, statErr := os.Stat(existing); statErr == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", slug)
			d, readErr := readMetadata(metaPath)
			if readErr != nil {
				d = &types.Datasheet{ID: slug, Path: existing, Format: format}
			}
			return d, true, nil
		}
	}

	for _, dir := range []string{
		filepath.Join(cfg.DatasheetsDir, rawDir),
		filepath.Join(cfg.DatasheetsDir, metadataDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, false, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	fmt.Fprintf(w, "acquiring: %s (%s)\n", slug, idType)

	var sourceURL string
	var format types.Format
	var path string

	switch idType {
	case TypeFile:
		format, path, err = importFile(normalized, cfg.DatasheetsDir, slug)
		if err != nil {
			return nil, false, fmt.Errorf("importing %s: %w", slug, err)
		}
	default:
		sourceURL = DatasheetURL(idType, normalized)
		if sourceURL == "" {
			return nil, false, fmt.Errorf("cannot resolve datasheet URL for %q", identifier)
		}
		var vendor string
		if idType == TypeVendorPart {
			vendor, _, _ = strings.Cut(normalized, ":")
		}
		format, path, err = downloadFile(ctx, client, sourceURL, vendor, cfg, slug)
		if err != nil {
			return nil, false, fmt.Errorf("downloading %s: %w", slug, err)
		}
	}

	d := &types.Datasheet{
		ID:               slug,
		SourceURL:        sourceURL,
		Path:             path,
		Format:           format,
		Title:            slug,
		Manufacturer:     Manufacturer(idType, normalized),
		Date:             time.Now().UTC(),
		ConversionStatus: types.ConversionNone,
	}
	if idType == TypeVendorPart {
		_, part, _ := strings.Cut(normalized, ":")
		d.PartNumbers = []string{strings.ToUpper(part)}
	}

	if err := writeMetadata(d, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing metadata for %s: %w", slug, err)
	}

	return d, false, nil
}

// AcquireBatch processes multiple identifiers, printing per-item status
// and returning a summary. It continues after individual failures and
// applies a delay between consecutive downloads.
func AcquireBatch(ctx context.Context, client *http.Client, identifiers []string, cfg types.AcquisitionConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i, id := range identifiers {
		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}
		ds, wasSkipped, err := AcquireDatasheet(ctx, client, id, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", id, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
		result.Datasheets = append(result.Datasheets, ds)
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

func rawPath(datasheetsDir, slug string, format types.Format) string {
	return filepath.Join(datasheetsDir, rawDir, slug+"."+string(format))
}

// sniffFormat detects the raw file format from its leading bytes.
// Anything that is not a PDF is treated as HTML.
func sniffFormat(head []byte) types.Format {
	if bytes.HasPrefix(head, pdfMagic) {
		return types.FormatPDF
	}
	return types.FormatHTML
}

// downloadFile fetches url into datasheets/raw/ using a temporary file,
// sniffing the format from the response body before the final rename.
// Rate-limited responses are retried with backoff. When a portal token
// is configured for the vendor, it is sent as a bearer credential.
func downloadFile(ctx context.Context, client *http.Client, url, vendor string, cfg types.AcquisitionConfig, slug string) (types.Format, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf, text/html")
	if token := cfg.VendorTokens[vendor]; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	destDir := filepath.Join(cfg.DatasheetsDir, rawDir)
	tmpFile, err := os.CreateTemp(destDir, ".acquire-*.tmp")
	if err != nil {
		return "", "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	head, err := readHead(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return "", "", err
	}
	format := sniffFormat(head)
	destPath := rawPath(cfg.DatasheetsDir, slug, format)

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("renaming temp file: %w", err)
	}
	return format, destPath, nil
}

// importFile copies a local file into datasheets/raw/, sniffing the
// format from its contents.
func importFile(srcPath, datasheetsDir, slug string) (types.Format, string, error) {
	head, err := readHead(srcPath)
	if err != nil {
		return "", "", err
	}
	format := sniffFormat(head)
	destPath := rawPath(datasheetsDir, slug, format)

	src, err := os.Open(srcPath)
	if err != nil {
		return "", "", fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".acquire-*.tmp")
	if err != nil {
		return "", "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, src)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("copying file: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("renaming temp file: %w", err)
	}
	return format, destPath, nil
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	return head[:n], nil
}

// writeMetadata writes a Datasheet record to a YAML file.
func writeMetadata(ds *types.Datasheet, path string) error {
	data, err := yaml.Marshal(ds)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadAllMetadata reads every Datasheet record under
// datasheetsDir/metadata/, sorted by ID. A missing metadata directory
// yields an empty slice.
func LoadAllMetadata(datasheetsDir string) ([]types.Datasheet, error) {
	metaDir := filepath.Join(datasheetsDir, metadataDir)
	entries, err := os.ReadDir(metaDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading metadata directory %s: %w", metaDir, err)
	}

	var sheets []types.Datasheet
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		ds, err := readMetadata(filepath.Join(metaDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading metadata %s: %w", entry.Name(), err)
		}
		sheets = append(sheets, *ds)
	}
	sort.Slice(sheets, func(i, j int) bool { return sheets[i].ID < sheets[j].ID })
	return sheets, nil
}

// readMetadata reads a Datasheet record from a YAML file.
func readMetadata(path string) (*types.Datasheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ds types.Datasheet
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}
