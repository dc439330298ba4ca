package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/datasheet-miner/internal/acquire"
	"github.com/pdiddy/datasheet-miner/internal/corpus"
	"github.com/pdiddy/datasheet-miner/pkg/types"
)

const (
	defaultTrainFrac = 0.8
	defaultDevFrac   = 0.9
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Partition the corpus into train, dev, and test sets",
	Long: `Split sorts the acquired documents by name and partitions them at two
fractional cut points: documents ranked below train-frac*N go to train,
below dev-frac*N to dev, and the rest to test. The same inputs always
produce the same partition. The assignment is written to
corpus/splits.yaml and, when a corpus database exists, recorded there
as well.`,
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().Float64("train-frac", defaultTrainFrac, "fraction of documents assigned to train")
	splitCmd.Flags().Float64("dev-frac", defaultDevFrac, "fraction of documents assigned to train+dev")
	splitCmd.Flags().String("datasheets-dir", "datasheets", "base directory for datasheets (contains metadata/)")
	splitCmd.Flags().String("corpus-dir", "corpus", "base directory for corpus output")

	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	trainFrac, _ := cmd.Flags().GetFloat64("train-frac")
	devFrac, _ := cmd.Flags().GetFloat64("dev-frac")
	datasheetsDir, _ := cmd.Flags().GetString("datasheets-dir")
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")

	docs, err := acquire.LoadAllMetadata(datasheetsDir)
	if err != nil {
		return err
	}

	splits, err := corpus.Partition(docs, trainFrac, devFrac)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(corpusDir, 0o755); err != nil {
		return fmt.Errorf("creating corpus directory: %w", err)
	}

	sf := splits.File(trainFrac, devFrac)
	data, err := yaml.Marshal(&sf)
	if err != nil {
		return fmt.Errorf("marshaling split file: %w", err)
	}
	splitsPath := filepath.Join(corpusDir, corpus.SplitsFile)
	if err := os.WriteFile(splitsPath, data, 0o644); err != nil {
		return fmt.Errorf("writing split file: %w", err)
	}

	// Record splits in the corpus database when one exists.
	if _, err := os.Stat(corpus.DBPath(corpusDir)); err == nil {
		store, err := corpus.NewStore(types.CorpusConfig{CorpusDir: corpusDir}, datasheetsDir)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.ApplySplits(context.Background(), splits); err != nil {
			return err
		}
	}

	counts := splits.Counts()
	fmt.Fprintf(os.Stdout, "Partitioned %d document(s): %d train, %d dev, %d test\n",
		len(docs), counts[types.SplitTrain], counts[types.SplitDev], counts[types.SplitTest])
	fmt.Fprintf(os.Stdout, "Wrote %s\n", splitsPath)
	return nil
}
