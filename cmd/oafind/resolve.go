// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/oafind/internal/dataset"
	"github.com/pdiddy/oafind/internal/driver"
	"github.com/pdiddy/oafind/internal/logging"
	"github.com/pdiddy/oafind/internal/resolver"
	"github.com/pdiddy/oafind/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [file]",
	Short: "Print full-text URLs for records without an open-access identifier",
	Long: `Resolve loads the spreadsheet, selects the records whose open-access
identifier is absent, and looks up each record's primary identifier with
the configured backends, trying them in order. Every URL found is printed
on its own line in spreadsheet order.

Records with no URL are logged and skipped unless --on-error=fail-fast.
Failed lookups are not retried; only rate-limited (HTTP 429) requests
are re-sent after a wait.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	f := resolveCmd.Flags()
	f.StringSlice("backends", nil, "resolver backends in lookup order: openalex, ncbi, unpaywall (default openalex,ncbi)")
	f.String("email", "", "contact email sent to the lookup services")
	f.Bool("prefer-pdf", false, "return PMC PDF links instead of article pages")
	f.Duration("timeout", 0, "HTTP request timeout (default 30s)")
	f.Int("workers", 0, "lookups in flight at once (default 1)")
	f.Duration("delay", 0, "delay between consecutive lookups")
	f.String("on-error", "", "unresolved record policy: skip or fail-fast (default skip)")
	f.Bool("strict", false, "exit non-zero when any selected record is left unresolved")

	bindFlags(f, map[string]string{
		"resolver.backends":     "backends",
		"resolver.email":        "email",
		"resolver.prefer_pdf":   "prefer-pdf",
		"resolver.http.timeout": "timeout",
		"driver.workers":        "workers",
		"driver.delay":          "delay",
		"driver.on_error":       "on-error",
	})

	rootCmd.AddCommand(resolveCmd)
}

// newResolver builds the backend chain for a run.
var newResolver = func(cfg types.ResolverConfig, client *http.Client, logger *slog.Logger) (resolver.Resolver, error) {
	return resolver.New(cfg, client, logger)
}

func runResolve(cmd *cobra.Command, args []string) error {
	strict, _ := cmd.Flags().GetBool("strict")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return resolveDataset(ctx, viper.GetViper(), args, strict, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// resolveDataset loads the configured dataset, resolves the selected records,
// and writes their locations to out. With strict set, any selected record
// left without a location is an error.
func resolveDataset(ctx context.Context, v *viper.Viper, args []string, strict bool, out, errOut io.Writer) error {
	cfg, err := loadConfig(v, args)
	if err != nil {
		return err
	}
	logger, err := logging.New(errOut, cfg.Log.Level)
	if err != nil {
		return err
	}

	ds, err := dataset.Load(cfg.Dataset.Path, cfg.Dataset)
	if err != nil {
		return err
	}
	logger.Debug("loaded dataset", "path", ds.Path, "records", ds.Len(), "columns", ds.Columns)

	client := &http.Client{
		Timeout: cfg.Resolver.HTTP.Timeout,
	}
	r, err := newResolver(cfg.Resolver, client, logger)
	if err != nil {
		return err
	}

	d := driver.New(r, driver.SemanticsFor(cfg.Dataset), cfg.Driver, out, logger)
	sum, err := d.Run(ctx, ds)
	if err != nil {
		return err
	}

	if unresolved := sum.Missed + sum.Failed; strict && unresolved > 0 {
		return fmt.Errorf("%d of %d selected record(s) unresolved", unresolved, sum.Selected)
	}
	return nil
}
