// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/oafind/internal/dataset"
	"github.com/pdiddy/oafind/pkg/types"
)

const (
	defaultInput     = "jpai_rand1000.xlsx"
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "oafind/0.1"
)

// setDefaults registers every configuration key so that environment
// variables and config files can override any of them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset.path", defaultInput)
	v.SetDefault("dataset.sheet", "")
	v.SetDefault("dataset.primary_id_column", "PMID")
	v.SetDefault("dataset.oa_id_column", "PMCID")
	v.SetDefault("dataset.null_values", dataset.DefaultNullValues)
	v.SetDefault("dataset.empty_as_absent", false)

	v.SetDefault("resolver.backends", []string{"openalex", "ncbi"})
	v.SetDefault("resolver.email", "")
	v.SetDefault("resolver.prefer_pdf", false)
	v.SetDefault("resolver.http.timeout", defaultTimeout)
	v.SetDefault("resolver.http.user_agent", defaultUserAgent)
	v.SetDefault("resolver.http.max_retries", 3)

	v.SetDefault("driver.on_error", string(types.PolicySkip))
	v.SetDefault("driver.workers", 1)
	v.SetDefault("driver.delay", time.Duration(0))

	v.SetDefault("log.level", "info")
}

// bindFlags binds configuration keys to flags by name.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

// loadConfig decodes the effective configuration. A positional argument
// overrides dataset.path.
func loadConfig(v *viper.Viper, args []string) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}

	if len(args) > 0 {
		cfg.Dataset.Path = args[0]
	}
	cfg.Resolver.Email = secretDefault("contact-email", cfg.Resolver.Email)

	if cfg.Dataset.Path == "" {
		return cfg, fmt.Errorf("no input file: pass a path or set dataset.path")
	}
	if !cfg.Driver.OnError.Valid() {
		return cfg, fmt.Errorf("driver.on_error must be %q or %q, got %q",
			types.PolicySkip, types.PolicyFailFast, cfg.Driver.OnError)
	}
	if cfg.Driver.Workers < 1 {
		return cfg, fmt.Errorf("driver.workers must be at least 1, got %d", cfg.Driver.Workers)
	}
	return cfg, nil
}

var configCmd = &cobra.Command{
	Use:   "config [file]",
	Short: "Print the effective configuration as YAML",
	Long: `Config merges defaults, the config file, OAFIND_* environment variables,
and flags, and prints the result. Use it to check which columns and
backends a run will use.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper(), args)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(&cfg)
		if err != nil {
			return fmt.Errorf("marshaling configuration: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
