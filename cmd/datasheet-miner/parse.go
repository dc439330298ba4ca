package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/datasheet-miner/internal/parse"
	"github.com/pdiddy/datasheet-miner/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse converted HTML into figure and part inventories",
	Long: `Parse walks the converted HTML documents, locates figures (img, figure,
object elements) and part-number occurrences, and writes a per-document
inventory to corpus/parsed/. Unchanged documents are skipped.`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("datasheets-dir", "datasheets", "base directory for datasheets (contains html/)")
	parseCmd.Flags().String("corpus-dir", "corpus", "base directory for corpus output (contains parsed/)")
	parseCmd.Flags().Int("parallelism", 4, "number of documents parsed concurrently")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	datasheetsDir, _ := cmd.Flags().GetString("datasheets-dir")
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	parallelism, _ := cmd.Flags().GetInt("parallelism")

	cfg := types.ParseConfig{
		DatasheetsDir: datasheetsDir,
		CorpusDir:     corpusDir,
		Parallelism:   parallelism,
	}

	summary, err := parse.ParseAll(cmd.Context(), cfg, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed parsing", summary.Failed)
	}
	return nil
}
