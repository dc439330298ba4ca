package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/datasheet-miner/internal/acquire"
	"github.com/pdiddy/datasheet-miner/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "datasheet-miner/0.1"
)

var acquireCmd = &cobra.Command{
	Use:   "acquire [identifiers...]",
	Short: "Download datasheets from vendor sites, URLs, or local files",
	Long: `Acquire resolves datasheet identifiers (vendor parts like "ti:LM317",
direct URLs, local PDF or HTML files), fetches the raw files, and creates
metadata records. Existing datasheets are skipped.`,
	RunE: runAcquire,
}

func init() {
	acquireCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	acquireCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	acquireCmd.Flags().String("datasheets-dir", "datasheets", "base directory for datasheets")

	rootCmd.AddCommand(acquireCmd)
}

// vendorTokens maps vendor keys to portal tokens from .secrets/.
func vendorTokens() map[string]string {
	tokens := make(map[string]string)
	if v := secretValue("ti-portal-token"); v != "" {
		tokens["ti"] = v
	}
	return tokens
}

func runAcquire(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more datasheet identifiers (vendor parts, URLs, or file paths)")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	datasheetsDir, _ := cmd.Flags().GetString("datasheets-dir")

	cfg := types.AcquisitionConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		DownloadDelay: delay,
		DatasheetsDir: datasheetsDir,
		VendorTokens:  vendorTokens(),
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	result := acquire.AcquireBatch(cmd.Context(), client, args, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d datasheet(s) failed acquisition", result.Failed)
	}
	return nil
}
