// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse builds per-document figure inventories from converted
// datasheets.
package parse

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/datasheet-miner/pkg/types"
)

const (
	htmlDir   = "html"
	parsedDir = "parsed"
)

// Parser extracts a figure inventory from one converted document.
// Each source format (HTML, Markdown) implements this interface.
type Parser interface {
	Name() string
	Parse(docID string, r io.Reader) (types.ParseResult, error)
}

// ParserFor returns the parser for a converted file based on extension.
func ParserFor(path string) (Parser, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return &HTMLParser{}, true
	case ".md":
		return &MarkdownParser{}, true
	default:
		return nil, false
	}
}

// BatchSummary holds counts from a batch parse run.
type BatchSummary struct {
	Parsed  int
	Skipped int
	Failed  int
}

// Total returns the number of documents processed.
func (s BatchSummary) Total() int {
	return s.Parsed + s.Skipped + s.Failed
}

// HasFailures reports whether any documents failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// docStatus is the per-document outcome reported by a worker.
type docStatus struct {
	docID   string
	figures int
	parts   int
	skipped bool
	err     error
}

// ParseAll processes all converted files in datasheetsDir/html/ and
// writes figure inventories to corpusDir/parsed/. Documents are parsed
// concurrently up to cfg.Parallelism workers; unchanged documents are
// skipped by mod-time comparison.
func ParseAll(ctx context.Context, cfg types.ParseConfig, w io.Writer) (BatchSummary, error) {
	srcDir := filepath.Join(cfg.DatasheetsDir, htmlDir)
	outDir := filepath.Join(cfg.CorpusDir, parsedDir)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("reading converted directory %s: %w", srcDir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := ParserFor(entry.Name()); ok {
			paths = append(paths, filepath.Join(srcDir, entry.Name()))
		}
	}

	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}

	jobs := make(chan string)
	results := make(chan docStatus, len(paths))
	var wg sync.WaitGroup

	for i := 0; i < parallelism; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- parseOne(path, outDir)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, p := range paths {
			select {
			case <-ctx.Done():
				return
			case jobs <- p:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var summary BatchSummary
	for st := range results {
		switch {
		case st.err != nil:
			fmt.Fprintf(w, "failed  %s: %v\n", st.docID, st.err)
			summary.Failed++
		case st.skipped:
			fmt.Fprintf(w, "skipped %s\n", st.docID)
			summary.Skipped++
		default:
			fmt.Fprintf(w, "parsed  %s (%d figures, %d part occurrences)\n", st.docID, st.figures, st.parts)
			summary.Parsed++
		}
	}

	fmt.Fprintf(w, "\nparsed: %d, skipped: %d, failed: %d\n",
		summary.Parsed, summary.Skipped, summary.Failed)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// parseOne parses a single converted file and writes its inventory YAML.
func parseOne(path, outDir string) docStatus {
	base := filepath.Base(path)
	docID := strings.TrimSuffix(base, filepath.Ext(base))
	outPath := filepath.Join(outDir, docID+"-figures.yaml")

	st := docStatus{docID: docID}

	changed, err := hasChanged(path, outPath)
	if err != nil {
		st.err = err
		return st
	}
	if !changed {
		st.skipped = true
		return st
	}

	p, _ := ParserFor(path)

	f, err := os.Open(path)
	if err != nil {
		st.err = fmt.Errorf("opening %s: %w", path, err)
		return st
	}
	defer f.Close()

	result, err := p.Parse(docID, f)
	if err != nil {
		st.err = fmt.Errorf("%s parser: %w", p.Name(), err)
		return st
	}

	result.Figures = dedupeFigures(result.Figures)

	data, err := yaml.Marshal(&result)
	if err != nil {
		st.err = fmt.Errorf("marshaling inventory: %w", err)
		return st
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		st.err = fmt.Errorf("writing inventory: %w", err)
		return st
	}

	st.figures = len(result.Figures)
	st.parts = len(result.Parts)
	return st
}

// dedupeFigures drops repeated image sources within a document, keeping
// the first occurrence and renumbering indexes.
func dedupeFigures(figs []types.Figure) []types.Figure {
	seen := make(map[string]bool, len(figs))
	var out []types.Figure
	for _, f := range figs {
		if f.Source != "" && seen[f.Source] {
			continue
		}
		seen[f.Source] = true
		f.Index = len(out)
		out = append(out, f)
	}
	return out
}

// hasChanged reports whether the converted file is newer than the
// inventory file. Returns true if the inventory does not exist.
func hasChanged(srcPath, outPath string) (bool, error) {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return false, fmt.Errorf("stat source %s: %w", srcPath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat inventory %s: %w", outPath, err)
	}

	return srcInfo.ModTime().After(outInfo.ModTime()), nil
}
