// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/oafind/pkg/types"
)

func testConfig() types.DatasetConfig {
	return types.DatasetConfig{
		PrimaryIDColumn: "PMID",
		OAIDColumn:      "PMCID",
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeWorkbook writes an xlsx file. Empty strings leave the cell unset.
func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}
	for r, row := range rows {
		for c, v := range row {
			if s, ok := v.(string); ok && s == "" {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, ref, v))
		}
	}

	path := filepath.Join(t.TempDir(), "records.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func oaIDs(ds *Dataset) []any {
	var out []any
	for _, r := range ds.Records {
		if r.OAID == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, *r.OAID)
	}
	return out
}

func TestFromRows(t *testing.T) {
	rows := [][]string{
		{"Title", "PMID", "PMCID"},
		{"first", "18381613", "PMC2267766"},
		{"second", "19304878", ""},
		{"", "", ""},
		{"third", " 20876432.0 ", "NA"},
		{"fourth", "21029470"},
		{"fifth", "22014355", "  "},
	}

	ds, err := fromRows(rows, testConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"Title", "PMID", "PMCID"}, ds.Columns)
	require.Equal(t, 5, ds.Len())

	var ids []string
	var rowNums []int
	for _, r := range ds.Records {
		ids = append(ids, r.PrimaryID)
		rowNums = append(rowNums, r.Row)
	}
	assert.Equal(t, []string{"18381613", "19304878", "20876432", "21029470", "22014355"}, ids)
	assert.Equal(t, []int{2, 3, 5, 6, 7}, rowNums)
	assert.Equal(t, []any{"PMC2267766", nil, nil, nil, "  "}, oaIDs(ds))
}

func TestFromRowsCustomNullValues(t *testing.T) {
	rows := [][]string{
		{"id", "oa"},
		{"A1", "NA"},
		{"A2", "-"},
	}
	cfg := types.DatasetConfig{
		PrimaryIDColumn: "id",
		OAIDColumn:      "oa",
		NullValues:      []string{"-"},
	}

	ds, err := fromRows(rows, cfg)
	require.NoError(t, err)
	assert.Equal(t, []any{"NA", nil}, oaIDs(ds))
}

func TestFromRowsHeaderTrimmed(t *testing.T) {
	rows := [][]string{
		{"\ufeffPMID ", " PMCID"},
		{"1", ""},
	}
	ds, err := fromRows(rows, testConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"PMID", "PMCID"}, ds.Columns)
}

func TestFromRowsErrors(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]string
		cfg     types.DatasetConfig
		wantErr error
	}{
		{"no rows", nil, testConfig(), ErrEmptySheet},
		{"blank header", [][]string{{"", ""}}, testConfig(), ErrEmptySheet},
		{"missing primary column", [][]string{{"DOI", "PMCID"}}, testConfig(), ErrMissingColumn},
		{"missing oa column", [][]string{{"PMID", "PMC"}}, testConfig(), ErrMissingColumn},
		{"unconfigured column", [][]string{{"PMID", "PMCID"}}, types.DatasetConfig{OAIDColumn: "PMCID"}, ErrMissingColumn},
		{"null primary id", [][]string{{"PMID", "PMCID"}, {"", "PMC1"}}, testConfig(), ErrMissingPrimaryID},
		{"null marker primary id", [][]string{{"PMID", "PMCID"}, {"NaN", ""}}, testConfig(), ErrMissingPrimaryID},
		{"whitespace primary id", [][]string{{"PMID", "PMCID"}, {"   ", "PMC5"}}, testConfig(), ErrMissingPrimaryID},
		{"whitespace primary id after valid row", [][]string{{"PMID", "PMCID"}, {"1", ""}, {" \t", "x"}}, testConfig(), ErrMissingPrimaryID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromRows(tt.rows, tt.cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"18381613", "18381613"},
		{"18381613.0", "18381613"},
		{"  18381613  ", "18381613"},
		{"10.1145/1234.0", "10.1145/1234.0"},
		{".0", ".0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeID(tt.in), "normalizeID(%q)", tt.in)
	}
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "records.csv", "PMID,PMCID,Title\n18381613,PMC2267766,\"A, quoted title\"\n19304878,,Other\n")

	ds, err := Load(path, testConfig())
	require.NoError(t, err)

	assert.Equal(t, path, ds.Path)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "19304878", ds.Records[1].PrimaryID)
	assert.False(t, ds.Records[1].HasOAID())
}

func TestLoadTSV(t *testing.T) {
	path := writeFile(t, "records.tsv", "PMID\tPMCID\n1\tPMC1\n2\t\n")

	ds, err := Load(path, testConfig())
	require.NoError(t, err)
	assert.Equal(t, []any{"PMC1", nil}, oaIDs(ds))
}

func TestLoadXLSX(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"PMID", "PMCID", "Journal"},
		{18381613, "PMC2267766", "J Pain"},
		{19304878, "", "Pain"},
		{20876432, "#N/A", "Spine"},
	})

	ds, err := Load(path, testConfig())
	require.NoError(t, err)

	require.Equal(t, 3, ds.Len())
	assert.Equal(t, "18381613", ds.Records[0].PrimaryID)
	assert.Equal(t, []any{"PMC2267766", nil, nil}, oaIDs(ds))
}

func TestLoadXLSXNamedSheet(t *testing.T) {
	path := writeWorkbook(t, "records", [][]any{
		{"PMID", "PMCID"},
		{"1", ""},
	})

	cfg := testConfig()
	cfg.Sheet = "records"
	ds, err := Load(path, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())

	cfg.Sheet = "missing"
	_, err = Load(path, cfg)
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"missing csv", filepath.Join(dir, "nope.csv"), os.ErrNotExist},
		{"missing xlsx", filepath.Join(dir, "nope.xlsx"), os.ErrNotExist},
		{"unsupported", writeFile(t, "records.json", "[]"), ErrUnsupportedFormat},
		{"empty csv", writeFile(t, "empty.csv", ""), ErrEmptySheet},
		{"bad columns", writeFile(t, "cols.csv", "DOI,PMCID\n10.1/x,\n"), ErrMissingColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path, testConfig())
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr), "want *LoadError, got %T", err)
			assert.Equal(t, tt.path, loadErr.Path)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
