// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/oafind/internal/dataset"
	"github.com/pdiddy/oafind/internal/driver"
	"github.com/pdiddy/oafind/pkg/types"
)

var selectCmd = &cobra.Command{
	Use:   "select [file]",
	Short: "List the records that resolve would look up, without network calls",
	Long: `Select loads the spreadsheet and prints the records whose open-access
identifier is absent as a table. Use it to check column mapping and null
handling before running resolve.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper(), args)
	if err != nil {
		return err
	}

	ds, err := dataset.Load(cfg.Dataset.Path, cfg.Dataset)
	if err != nil {
		return err
	}

	sem := driver.SemanticsFor(cfg.Dataset)
	renderSelection(cmd.OutOrStdout(), cfg.Dataset, driver.Select(ds, sem), ds.Len(), sem)
	return nil
}

// renderSelection writes the selected records as a table followed by a
// one-line count.
func renderSelection(w io.Writer, cfg types.DatasetConfig, selected []types.Record, total int, sem driver.NullSemantics) {
	if len(selected) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Row", cfg.PrimaryIDColumn, cfg.OAIDColumn})
		for _, rec := range selected {
			oa := "(null)"
			if rec.OAID != nil {
				oa = strconv.Quote(*rec.OAID)
			}
			t.AppendRow(table.Row{rec.Row, rec.PrimaryID, oa})
		}
		t.Render()
	}
	fmt.Fprintf(w, "Selected %d of %d record(s) (%s)\n", len(selected), total, sem)
}
