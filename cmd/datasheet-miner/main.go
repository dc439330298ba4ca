// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the datasheet-miner CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/datasheet-miner/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds vendor portal keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretValue returns the secret loaded for key, or "" if absent.
func secretValue(key string) string {
	return loadedSecrets[key]
}

// rootCmd is the base command for the datasheet-miner CLI.
var rootCmd = &cobra.Command{
	Use:   "datasheet-miner",
	Short: "Build an image corpus from transistor datasheets",
	Long: `datasheet-miner builds a searchable corpus of figures and part-number
mentions from transistor datasheets. Vendor PDFs and HTML pages go through
a staged pipeline: acquire, convert, parse, split, extract, and corpus
operations (store, retrieve, export). Each stage is a subcommand and each
stage's output feeds the next.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./datasheet-miner.yaml or ~/.config/datasheet-miner/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("datasheet-miner")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "datasheet-miner"))
		}
	}

	viper.SetEnvPrefix("DATASHEET_MINER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
