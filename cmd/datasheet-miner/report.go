package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/datasheet-miner/internal/corpus"
	"github.com/pdiddy/datasheet-miner/internal/report"
	"github.com/pdiddy/datasheet-miner/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a Markdown summary report of the corpus",
	Long: `Report collects document, mention, and candidate totals from the corpus
index, combines them with the current split assignment, and writes a
Markdown report under output/reports/.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("corpus-dir", "corpus", "base directory for corpus data")
	reportCmd.Flags().String("datasheets-dir", "datasheets", "base directory for datasheets")
	reportCmd.Flags().String("output-dir", "output", "base directory for generated reports")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	datasheetsDir, _ := cmd.Flags().GetString("datasheets-dir")
	outputDir, _ := cmd.Flags().GetString("output-dir")

	store, err := corpus.NewStore(types.CorpusConfig{CorpusDir: corpusDir}, datasheetsDir)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.CollectStats(context.Background())
	if err != nil {
		return err
	}

	splits, err := report.LoadSplitFile(corpusDir)
	if err != nil {
		return err
	}

	path, err := report.WriteReport(stats, splits, types.ReportConfig{OutputDir: outputDir})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Wrote %s\n", path)
	return nil
}
