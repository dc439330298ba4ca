// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/datasheet-miner/internal/corpus"
	"github.com/pdiddy/datasheet-miner/pkg/types"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the corpus index (store, retrieve, export)",
	Long: `Corpus manages a local SQLite index built from extracted mentions and
candidates. Use subcommands to index documents, query them, or export.`,
}

// --- store subcommand ---

var corpusStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest extracted mentions into the corpus index",
	Long: `Store reads extraction YAML files from corpus/extracted/, ingests them
into a SQLite database with FTS5 indexing, and writes an export file.
Unchanged documents are skipped on subsequent runs.`,
	RunE: runCorpusStore,
}

func runCorpusStore(cmd *cobra.Command, args []string) error {
	cfg, datasheetsDir := corpusConfig(cmd)

	store, err := corpus.NewStore(cfg, datasheetsDir)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var corpusRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the corpus with full-text search and filters",
	Long: `Retrieve searches the corpus using FTS5 full-text search, structured
filters (type, doc, split), or a combination of both. Results include
provenance links to the source document and section.

Use --trace with a mention ID to view the surrounding source context.`,
	RunE: runCorpusRetrieve,
}

func runCorpusRetrieve(cmd *cobra.Command, args []string) error {
	traceID, _ := cmd.Flags().GetString("trace")

	cfg, datasheetsDir := corpusConfig(cmd)
	store, err := corpus.NewStore(cfg, datasheetsDir)
	if err != nil {
		return err
	}
	defer store.Close()

	// Trace mode: show source context for a specific mention.
	if traceID != "" {
		text, err := store.Trace(context.Background(), traceID)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	}

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --type, --doc, or --split")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []corpus.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-8s  %-50s  %-20s  %-10s  %-6s  %s\n",
		"Rank", "Type", "Text", "Document", "Section", "Split", "Page")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 116))

	for i, r := range results {
		text := r.Text
		if len(text) > 50 {
			text = text[:47] + "..."
		}
		doc := r.DocID
		if len(doc) > 20 {
			doc = doc[:17] + "..."
		}
		section := r.Section
		if len(section) > 10 {
			section = section[:7] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-8s  %-50s  %-20s  %-10s  %-6s  %d\n",
			i+1, r.Type, text, doc, section, r.Split, r.Page)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var corpusExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the corpus index to YAML or JSON",
	Long: `Export writes the full corpus index (or a filtered subset) to
corpus/index/export.yaml or export.json. Supports the same filter
flags as retrieve for partial exports.`,
	RunE: runCorpusExport,
}

func runCorpusExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg, datasheetsDir := corpusConfig(cmd)
	store, err := corpus.NewStore(cfg, datasheetsDir)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to corpus/index/export.yaml")
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to corpus/index/export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func corpusConfig(cmd *cobra.Command) (types.CorpusConfig, string) {
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	if corpusDir == "" {
		corpusDir = "corpus"
	}
	datasheetsDir, _ := cmd.Flags().GetString("datasheets-dir")
	if datasheetsDir == "" {
		datasheetsDir = "datasheets"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	cfg := types.CorpusConfig{
		CorpusDir:  corpusDir,
		MaxResults: maxResults,
	}
	return cfg, datasheetsDir
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) corpus.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	mentionType, _ := cmd.Flags().GetString("type")
	docID, _ := cmd.Flags().GetString("doc")
	split, _ := cmd.Flags().GetString("split")
	limit, _ := cmd.Flags().GetInt("limit")

	return corpus.QueryOptions{
		Query:      queryText,
		Type:       types.MentionType(mentionType),
		DocID:      docID,
		Split:      types.SplitLabel(split),
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	corpusCmd.PersistentFlags().String("corpus-dir", "corpus", "base directory for corpus data (contains extracted/, index/)")
	corpusCmd.PersistentFlags().String("datasheets-dir", "datasheets", "base directory for datasheets (contains metadata/, html/)")
	corpusCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Retrieve flags.
	corpusRetrieveCmd.Flags().String("query", "", "full-text search query")
	corpusRetrieveCmd.Flags().String("type", "", "filter by mention type: figure or part")
	corpusRetrieveCmd.Flags().String("doc", "", "filter by document ID")
	corpusRetrieveCmd.Flags().String("split", "", "filter by split: train, dev, or test")
	corpusRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	corpusRetrieveCmd.Flags().String("trace", "", "show source context for a mention ID")
	corpusRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	corpusExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	corpusExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	corpusExportCmd.Flags().String("type", "", "filter by mention type for partial export")
	corpusExportCmd.Flags().String("doc", "", "filter by document ID for partial export")
	corpusExportCmd.Flags().String("split", "", "filter by split for partial export")
	corpusExportCmd.Flags().Int("limit", 0, "maximum mentions to export (0 = all)")

	// Wire subcommands.
	corpusCmd.AddCommand(corpusStoreCmd)
	corpusCmd.AddCommand(corpusRetrieveCmd)
	corpusCmd.AddCommand(corpusExportCmd)

	rootCmd.AddCommand(corpusCmd)
}
