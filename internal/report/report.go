// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders corpus summary reports as Markdown.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/datasheet-miner/internal/corpus"
	"github.com/pdiddy/datasheet-miner/pkg/types"
)

const reportsDir = "reports"

// reportFilename returns the report filename for a given day:
// corpus-report-YYYY-MM-DD.md.
func reportFilename(now time.Time) string {
	return fmt.Sprintf("corpus-report-%s.md", now.UTC().Format("2006-01-02"))
}

// RenderMarkdown produces the report body from corpus stats and the
// current split file. The split file may be nil when no partition has
// been computed yet.
func RenderMarkdown(stats corpus.Stats, splits *types.SplitFile, now time.Time) string {
	var b strings.Builder

	b.WriteString("# Corpus report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", now.UTC().Format(time.RFC3339))

	b.WriteString("## Totals\n\n")
	fmt.Fprintf(&b, "- Documents: %d\n", stats.Documents)
	fmt.Fprintf(&b, "- Mentions: %d\n", stats.Mentions)
	fmt.Fprintf(&b, "- Candidates: %d\n", stats.Candidates)
	b.WriteString("\n")

	b.WriteString("## Splits\n\n")
	if splits == nil {
		b.WriteString("No partition has been computed.\n\n")
	} else {
		fmt.Fprintf(&b, "Fractions: train %.2f, dev %.2f\n\n", splits.TrainFrac, splits.DevFrac)
		b.WriteString("| Split | Documents |\n")
		b.WriteString("|-------|-----------|\n")
		for _, label := range []types.SplitLabel{types.SplitTrain, types.SplitDev, types.SplitTest} {
			fmt.Fprintf(&b, "| %s | %d |\n", label, splits.Counts[label])
		}
		b.WriteString("\n")
	}

	if len(stats.Splits) > 0 {
		b.WriteString("## Indexed splits\n\n")
		b.WriteString("| Split | Documents |\n")
		b.WriteString("|-------|-----------|\n")
		for _, sc := range stats.Splits {
			fmt.Fprintf(&b, "| %s | %d |\n", sc.Split, sc.Docs)
		}
		b.WriteString("\n")
	}

	if len(stats.ByVendor) > 0 {
		b.WriteString("## Manufacturers\n\n")
		b.WriteString("| Manufacturer | Documents |\n")
		b.WriteString("|--------------|-----------|\n")
		vendors := make([]string, 0, len(stats.ByVendor))
		for v := range stats.ByVendor {
			vendors = append(vendors, v)
		}
		sort.Strings(vendors)
		for _, v := range vendors {
			fmt.Fprintf(&b, "| %s | %d |\n", v, stats.ByVendor[v])
		}
		b.WriteString("\n")
	}

	return b.String()
}

// WriteReport renders the report and writes it under outputDir/reports/.
// It returns the path of the written file.
func WriteReport(stats corpus.Stats, splits *types.SplitFile, cfg types.ReportConfig) (string, error) {
	outDir := filepath.Join(cfg.OutputDir, reportsDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports directory: %w", err)
	}

	now := time.Now()
	path := filepath.Join(outDir, reportFilename(now))
	content := RenderMarkdown(stats, splits, now)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// LoadSplitFile reads corpus/splits.yaml if present. A missing file is
// not an error; it returns nil.
func LoadSplitFile(corpusDir string) (*types.SplitFile, error) {
	data, err := os.ReadFile(filepath.Join(corpusDir, corpus.SplitsFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading split file: %w", err)
	}
	var sf types.SplitFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing split file: %w", err)
	}
	return &sf, nil
}
