// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the oafind CLI. oafind reads a
// spreadsheet of bibliographic records, keeps the rows without an
// open-access identifier, and prints a full-text URL for each of them.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/oafind/internal/logging"
	"github.com/pdiddy/oafind/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the oafind CLI.
var rootCmd = &cobra.Command{
	Use:   "oafind",
	Short: "Find full-text URLs for records that lack an open-access identifier",
	Long: `oafind reads a spreadsheet of bibliographic records (xlsx, csv, or tsv),
selects the rows whose open-access identifier column (PMCID by default) is
empty, and resolves each row's primary identifier (PMID or DOI) to a
full-text URL through OpenAlex, the NCBI PMC ID converter, or Unpaywall.

Resolved URLs are printed to stdout, one per line, in spreadsheet order.
Diagnostics go to stderr.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(cmd.ErrOrStderr(), viper.GetString("log.level"))
		if err != nil {
			return err
		}
		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logger.Debug("loaded secrets", "keys", s.Keys())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults(viper.GetViper())

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./oafind.yaml or ~/.config/oafind/oafind.yaml)")
	pf.String("sheet", "", "worksheet to read from xlsx workbooks (default: first sheet)")
	pf.String("primary-column", "", "column holding the primary identifier (default PMID)")
	pf.String("oa-column", "", "column holding the open-access identifier (default PMCID)")
	pf.Bool("empty-as-absent", false, "treat blank open-access identifiers as absent, not just null cells")
	pf.String("log-level", "", "log level: debug, info, warn, error (default info)")

	bindFlags(pf, map[string]string{
		"dataset.sheet":             "sheet",
		"dataset.primary_id_column": "primary-column",
		"dataset.oa_id_column":      "oa-column",
		"dataset.empty_as_absent":   "empty-as-absent",
		"log.level":                 "log-level",
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("oafind")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "oafind"))
		}
	}

	viper.SetEnvPrefix("OAFIND")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
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
