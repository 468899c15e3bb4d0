// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset loads spreadsheets of bibliographic records into memory.
// A Dataset is built once per run and is read-only afterwards.
package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/oafind/pkg/types"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrEmptySheet        = errors.New("no header row")
	ErrMissingColumn     = errors.New("missing column")
	ErrMissingPrimaryID  = errors.New("missing primary identifier")
)

// DefaultNullValues are the cell texts read as null when the configuration
// does not list its own.
var DefaultNullValues = []string{"NA", "N/A", "NaN", "nan", "NULL", "null", "#N/A", "None"}

// LoadError reports an input file that is missing, unreadable, or malformed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Dataset is the in-memory table of records for one run. Columns and
// Records keep the order of the source file.
type Dataset struct {
	Path    string
	Columns []string
	Records []types.Record
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Load reads the spreadsheet at path and maps the configured identifier
// columns onto Records. The file format is chosen by extension. Every
// failure is returned as a *LoadError.
func Load(path string, cfg types.DatasetConfig) (*Dataset, error) {
	rows, err := readRows(path, cfg.Sheet)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	ds, err := fromRows(rows, cfg)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	ds.Path = path
	return ds, nil
}

func readRows(path, sheet string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx", ".xlsm":
		return readXLSX(path, sheet)
	case ".csv":
		return readDelimited(path, ',')
	case ".tsv":
		return readDelimited(path, '\t')
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// fromRows builds a Dataset from raw rows whose first row is the header.
func fromRows(rows [][]string, cfg types.DatasetConfig) (*Dataset, error) {
	if len(rows) == 0 || isBlank(rows[0]) {
		return nil, ErrEmptySheet
	}

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}

	pidCol, err := columnIndex(header, cfg.PrimaryIDColumn)
	if err != nil {
		return nil, err
	}
	oaCol, err := columnIndex(header, cfg.OAIDColumn)
	if err != nil {
		return nil, err
	}

	nulls := nullSet(cfg.NullValues)
	ds := &Dataset{Columns: header}

	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rowNum := i + 2

		pid := cell(row, pidCol)
		id := normalizeID(pid)
		if nulls.is(pid) || id == "" {
			return nil, fmt.Errorf("row %d: %w in column %q", rowNum, ErrMissingPrimaryID, cfg.PrimaryIDColumn)
		}

		rec := types.Record{
			Row:       rowNum,
			PrimaryID: id,
		}
		if oa := cell(row, oaCol); !nulls.is(oa) {
			rec.OAID = &oa
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func columnIndex(header []string, name string) (int, error) {
	want := strings.TrimSpace(name)
	if want == "" {
		return 0, fmt.Errorf("%w: no column name configured", ErrMissingColumn)
	}
	for i, h := range header {
		if h == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w %q (have %s)", ErrMissingColumn, want, strings.Join(header, ", "))
}

// cell returns row[i], or "" for cells past the end of a short row.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

type nullValues map[string]struct{}

func nullSet(values []string) nullValues {
	if values == nil {
		values = DefaultNullValues
	}
	set := make(nullValues, len(values))
	for _, v := range values {
		set[strings.TrimSpace(v)] = struct{}{}
	}
	return set
}

// is reports whether a cell is null: an empty cell, or a configured null
// marker. Whitespace-only text is a value, not a null.
func (n nullValues) is(c string) bool {
	if c == "" {
		return true
	}
	t := strings.TrimSpace(c)
	if t == "" {
		return false
	}
	_, ok := n[t]
	return ok
}

// normalizeID trims whitespace and strips the ".0" suffix that numeric
// identifiers pick up when a column was stored as floats.
func normalizeID(id string) string {
	id = strings.TrimSpace(id)
	if head, ok := strings.CutSuffix(id, ".0"); ok && head != "" && isDigits(head) {
		return head
	}
	return id
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
