package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/datasheet-miner/internal/acquire"
	"github.com/pdiddy/datasheet-miner/internal/container"
	"github.com/pdiddy/datasheet-miner/internal/convert"
	"github.com/pdiddy/datasheet-miner/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [datasheets...]",
	Short: "Convert raw datasheets to HTML",
	Long: `Convert transforms raw datasheet files into HTML. PDF raws go through
the selected backend (pdftohtml binary or docling container); HTML raws
are passed through unchanged. Already-converted datasheets are skipped.
With no arguments, all acquired datasheets are converted.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("backend", string(types.BackendPdftohtml), "conversion backend: pdftohtml or docling")
	convertCmd.Flags().String("datasheets-dir", "datasheets", "base directory for datasheets")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	backend, _ := cmd.Flags().GetString("backend")
	datasheetsDir, _ := cmd.Flags().GetString("datasheets-dir")

	conv, err := newConverter(types.ConversionBackend(backend))
	if err != nil {
		return err
	}

	sheets, err := acquire.LoadAllMetadata(datasheetsDir)
	if err != nil {
		return err
	}

	if len(sheets) == 0 {
		// No metadata yet; fall back to whatever is in raw/.
		paths, err := rawFilePaths(datasheetsDir)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no datasheets found under %s: run acquire first", datasheetsDir)
		}
		result := convert.ConvertPaths(conv, paths, datasheetsDir, os.Stdout)
		return convertResultErr(result)
	}

	if len(args) > 0 {
		sheets = filterByID(sheets, args)
		if len(sheets) == 0 {
			return fmt.Errorf("no matching datasheets for %v", args)
		}
	}

	result := convert.ConvertBatch(conv, sheets, datasheetsDir, os.Stdout)
	return convertResultErr(result)
}

func newConverter(backend types.ConversionBackend) (convert.Converter, error) {
	switch backend {
	case types.BackendPdftohtml, "":
		return convert.NewPdftohtmlConverter()
	case types.BackendDocling:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return convert.NewDoclingConverter(rt)
	default:
		return nil, fmt.Errorf("unsupported backend %q: use pdftohtml or docling", backend)
	}
}

func rawFilePaths(datasheetsDir string) ([]string, error) {
	rawGlob := filepath.Join(datasheetsDir, "raw", "*")
	paths, err := filepath.Glob(rawGlob)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", rawGlob, err)
	}
	var out []string
	for _, p := range paths {
		switch filepath.Ext(p) {
		case ".pdf", ".html", ".htm":
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func filterByID(sheets []types.Datasheet, ids []string) []types.Datasheet {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []types.Datasheet
	for _, ds := range sheets {
		if want[ds.ID] {
			out = append(out, ds)
		}
	}
	return out
}

func convertResultErr(result convert.BatchResult) error {
	if result.HasFailures() {
		return fmt.Errorf("%d datasheet(s) failed conversion", result.Failed)
	}
	return nil
}
