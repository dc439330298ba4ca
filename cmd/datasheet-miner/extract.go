package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/datasheet-miner/internal/extract"
	"github.com/pdiddy/datasheet-miner/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract mentions and candidate pairs from parsed inventories",
	Long: `Extract reads the figure and part inventories under corpus/parsed/,
turns them into mention records with stable IDs, and pairs nearby part
and figure mentions into candidates. Figures can be filtered by caption
keywords. Unchanged inventories are skipped.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("corpus-dir", "corpus", "base directory for corpus data (contains parsed/, extracted/)")
	extractCmd.Flags().String("caption-keywords", "", "comma-separated keywords a figure caption must contain")
	extractCmd.Flags().Int("max-pair-distance", extract.DefaultMaxPairDistance, "maximum block distance for part/figure candidate pairing")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	keywords, _ := cmd.Flags().GetString("caption-keywords")
	maxDistance, _ := cmd.Flags().GetInt("max-pair-distance")

	cfg := types.ExtractConfig{
		CorpusDir:       corpusDir,
		MaxPairDistance: maxDistance,
	}

	var matcher extract.Matcher = extract.MatchAll{}
	if keywords != "" {
		var kws []string
		for _, kw := range strings.Split(keywords, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				kws = append(kws, kw)
			}
		}
		matcher = extract.CaptionKeyword{Keywords: kws}
	}

	summary, err := extract.ExtractAll(cmd.Context(), matcher, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed extraction", summary.Failed)
	}
	return nil
}
