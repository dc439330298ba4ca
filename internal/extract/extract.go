// Package extract turns parsed figure inventories into mentions and
// candidates.
package extract

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/datasheet-miner/pkg/types"
)

const (
	parsedDir    = "parsed"
	extractedDir = "extracted"
)

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of documents processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any documents failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractAll processes all inventories in corpusDir/parsed/, extracts
// mentions via the matcher, pairs candidates, and writes results to
// corpusDir/extracted/. It skips unchanged inventories and re-extracts
// changed ones.
func ExtractAll(ctx context.Context, matcher Matcher, cfg types.ExtractConfig, w io.Writer) (BatchSummary, error) {
	inDir := filepath.Join(cfg.CorpusDir, parsedDir)
	outDir := filepath.Join(cfg.CorpusDir, extractedDir)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	entries, err := os.ReadDir(inDir)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("reading inventory directory %s: %w", inDir, err)
	}

	var summary BatchSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "-figures.yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		docID := strings.TrimSuffix(entry.Name(), "-figures.yaml")
		inPath := filepath.Join(inDir, entry.Name())
		outPath := filepath.Join(outDir, docID+"-items.yaml")

		changed, err := hasChanged(inPath, outPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}
		if !changed {
			fmt.Fprintf(w, "skipped %s\n", docID)
			summary.Skipped++
			continue
		}

		result, err := ExtractDocument(matcher, docID, inPath, cfg)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		if err := writeResult(outPath, result); err != nil {
			fmt.Fprintf(w, "failed  %s: write error: %v\n", docID, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "extracted %s (%d mentions, %d candidates)\n",
			docID, len(result.Mentions), len(result.Candidates))
		summary.Extracted++
	}

	fmt.Fprintf(w, "\nextracted: %d, skipped: %d, failed: %d\n",
		summary.Extracted, summary.Skipped, summary.Failed)

	return summary, nil
}

// ExtractDocument extracts mentions and candidates from a single parsed
// inventory file.
func ExtractDocument(matcher Matcher, docID, inPath string, cfg types.ExtractConfig) (*types.ExtractionResult, error) {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("reading inventory %s: %w", inPath, err)
	}

	var parsed types.ParseResult
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing inventory %s: %w", inPath, err)
	}

	result := &types.ExtractionResult{DocID: docID}

	var figureMentions []types.Mention
	for _, fig := range parsed.Figures {
		ok, conf := matcher.Match(fig)
		if !ok {
			continue
		}

		text := fig.Caption
		if text == "" {
			text = fig.Source
		}

		m := types.Mention{
			ID:          stableID(docID, "figure", fig.Source, text),
			Type:        types.MentionFigure,
			Text:        text,
			DocID:       docID,
			Section:     fig.Section,
			Page:        fig.Page,
			FigureIndex: fig.Index,
			Block:       fig.Block,
			Confidence:  conf,
		}
		if err := validateMention(m); err != nil {
			return nil, fmt.Errorf("figure %d: %w", fig.Index, err)
		}
		figureMentions = append(figureMentions, m)
	}
	result.Mentions = append(result.Mentions, figureMentions...)

	partMentions := make([]types.Mention, 0, len(parsed.Parts))
	for _, p := range parsed.Parts {
		m := types.Mention{
			ID:          stableID(docID, "part", fmt.Sprintf("%d", p.Block), p.Text),
			Type:        types.MentionPart,
			Text:        p.Text,
			DocID:       docID,
			Section:     p.Section,
			Page:        p.Page,
			FigureIndex: -1,
			Block:       p.Block,
			Confidence:  1.0,
		}
		if err := validateMention(m); err != nil {
			return nil, fmt.Errorf("part occurrence %q: %w", p.Text, err)
		}
		partMentions = append(partMentions, m)
	}
	result.Mentions = append(result.Mentions, partMentions...)

	result.Candidates = PairCandidates(docID, partMentions, figureMentions, cfg.MaxPairDistance)

	return result, nil
}

// validateMention rejects mentions that would corrupt the corpus store.
func validateMention(m types.Mention) error {
	if m.Text == "" {
		return fmt.Errorf("empty mention text")
	}
	if m.Confidence < 0.0 || m.Confidence > 1.0 {
		return fmt.Errorf("confidence %f out of range [0,1]", m.Confidence)
	}
	return nil
}

// stableID generates a deterministic ID from the document, kind, anchor,
// and text. The ID is the first 12 hex characters of the SHA-256 digest,
// so re-extracting unchanged content reproduces the same IDs.
func stableID(docID, kind, anchor, text string) string {
	h := sha256.New()
	h.Write([]byte(docID))
	h.Write([]byte(kind))
	h.Write([]byte(anchor))
	h.Write([]byte(text))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// hasChanged reports whether the inventory file is newer than the output
// file. Returns true if the output does not exist.
func hasChanged(inPath, outPath string) (bool, error) {
	inInfo, err := os.Stat(inPath)
	if err != nil {
		return false, fmt.Errorf("stat inventory %s: %w", inPath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}

	return inInfo.ModTime().After(outInfo.ModTime()), nil
}

// writeResult marshals the ExtractionResult to a YAML file.
func writeResult(path string, result *types.ExtractionResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
