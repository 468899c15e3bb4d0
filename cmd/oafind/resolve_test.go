// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/oafind/internal/dataset"
	"github.com/pdiddy/oafind/internal/driver"
	"github.com/pdiddy/oafind/internal/resolver"
	"github.com/pdiddy/oafind/pkg/types"
)

// Rows cover a present PMCID, a blank cell, an NA marker, a whitespace-only
// cell, and a record no backend can resolve.
const recordsCSV = "PMID,PMCID\n" +
	"111,PMC111\n" +
	"222,\n" +
	"333,NA\n" +
	"444,   \n" +
	"\n" +
	"555,\n"

// mapResolver resolves identifiers from a fixed table.
type mapResolver struct {
	mu        sync.Mutex
	locations map[string]string
	calls     []string
}

func (m *mapResolver) Name() string { return "map" }

func (m *mapResolver) Resolve(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, id)
	return m.locations[id], nil
}

// stubResolvers points newResolver at r for the duration of the test.
func stubResolvers(t *testing.T, r resolver.Resolver) {
	t.Helper()
	orig := newResolver
	newResolver = func(types.ResolverConfig, *http.Client, *slog.Logger) (resolver.Resolver, error) {
		return r, nil
	}
	t.Cleanup(func() { newResolver = orig })
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newMapResolver() *mapResolver {
	return &mapResolver{locations: map[string]string{
		"222": "https://example.org/pmc/222",
		"333": "https://example.org/pmc/333",
		"444": "https://example.org/pmc/444",
	}}
}

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestResolveDatasetNullOnly(t *testing.T) {
	r := newMapResolver()
	stubResolvers(t, r)
	path := writeCSV(t, recordsCSV)

	var out, errOut bytes.Buffer
	err := resolveDataset(context.Background(), testViper(t), []string{path}, false, &out, &errOut)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://example.org/pmc/222",
		"https://example.org/pmc/333",
	}, lines(out.String()))
	assert.Equal(t, []string{"222", "333", "555"}, r.calls)
	assert.Contains(t, errOut.String(), "skipping record")
}

func TestResolveDatasetEmptyAsAbsent(t *testing.T) {
	r := newMapResolver()
	stubResolvers(t, r)
	path := writeCSV(t, recordsCSV)

	v := testViper(t)
	v.Set("dataset.empty_as_absent", true)

	var out bytes.Buffer
	err := resolveDataset(context.Background(), v, []string{path}, false, &out, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://example.org/pmc/222",
		"https://example.org/pmc/333",
		"https://example.org/pmc/444",
	}, lines(out.String()))
}

func TestResolveDatasetStrict(t *testing.T) {
	stubResolvers(t, newMapResolver())
	path := writeCSV(t, recordsCSV)

	var out bytes.Buffer
	err := resolveDataset(context.Background(), testViper(t), []string{path}, true, &out, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 selected record(s) unresolved")
	assert.Len(t, lines(out.String()), 2)
}

func TestResolveDatasetFailFast(t *testing.T) {
	r := newMapResolver()
	delete(r.locations, "333")
	stubResolvers(t, r)
	path := writeCSV(t, recordsCSV)

	v := testViper(t)
	v.Set("driver.on_error", "fail-fast")

	var out bytes.Buffer
	err := resolveDataset(context.Background(), v, []string{path}, false, &out, &bytes.Buffer{})

	var resErr *driver.ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "333", resErr.Record.PrimaryID)
	assert.Equal(t, 4, resErr.Record.Row)
	assert.ErrorIs(t, err, driver.ErrNoLocation)
	assert.Equal(t, "https://example.org/pmc/222\n", out.String())
	assert.Equal(t, []string{"222", "333"}, r.calls)
}

func TestResolveDatasetMissingColumn(t *testing.T) {
	r := newMapResolver()
	stubResolvers(t, r)
	path := writeCSV(t, "DOI,PMCID\n10.1234/x,\n")

	var out bytes.Buffer
	err := resolveDataset(context.Background(), testViper(t), []string{path}, false, &out, &bytes.Buffer{})

	var loadErr *dataset.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, path, loadErr.Path)
	assert.ErrorIs(t, err, dataset.ErrMissingColumn)
	assert.Empty(t, out.String())
	assert.Empty(t, r.calls)
}

func TestResolveDatasetNothingSelected(t *testing.T) {
	r := newMapResolver()
	stubResolvers(t, r)
	path := writeCSV(t, "PMID,PMCID\n111,PMC111\n")

	var out bytes.Buffer
	err := resolveDataset(context.Background(), testViper(t), []string{path}, true, &out, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Empty(t, out.String())
	assert.Empty(t, r.calls)
}
