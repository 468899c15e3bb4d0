// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolver turns bibliographic identifiers into full-text URLs.
// Each backend (OpenAlex, NCBI PMC, Unpaywall) implements Resolver; Chain
// tries them in order.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pdiddy/oafind/internal/httputil"
	"github.com/pdiddy/oafind/pkg/types"
)

// ErrUnsupportedIdentifier is returned when a backend cannot look up an
// identifier of the given type.
var ErrUnsupportedIdentifier = errors.New("unsupported identifier")

// Resolver looks up the full-text location for one identifier. An empty
// location with a nil error means the identifier has no known location.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, identifier string) (string, error)
}

// Chain tries each resolver in order and returns the first location found.
type Chain []Resolver

// Name returns the member names joined with "+".
func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, r := range c {
		names[i] = r.Name()
	}
	return strings.Join(names, "+")
}

// Resolve returns the first non-empty location. When no member finds one,
// it returns the members' errors joined, or ("", nil) if none failed.
func (c Chain) Resolve(ctx context.Context, identifier string) (string, error) {
	var errs []error
	for _, r := range c {
		loc, err := r.Resolve(ctx, identifier)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
			continue
		}
		if loc != "" {
			return loc, nil
		}
	}
	return "", errors.Join(errs...)
}

// New builds a Chain from the configured backend names.
func New(cfg types.ResolverConfig, client *http.Client, logger *slog.Logger) (Chain, error) {
	if len(cfg.Backends) == 0 {
		return nil, fmt.Errorf("no resolver backends configured")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	base := httpBackend{client: client, cfg: cfg.HTTP, logger: logger}
	var chain Chain
	for _, name := range cfg.Backends {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "openalex":
			chain = append(chain, &OpenAlex{httpBackend: base, Email: cfg.Email})
		case "ncbi", "pmc":
			chain = append(chain, &NCBI{httpBackend: base, Email: cfg.Email, PreferPDF: cfg.PreferPDF})
		case "unpaywall":
			if cfg.Email == "" {
				return nil, fmt.Errorf("unpaywall backend requires resolver.email")
			}
			chain = append(chain, &Unpaywall{httpBackend: base, Email: cfg.Email})
		default:
			return nil, fmt.Errorf("unknown resolver backend %q", name)
		}
	}
	return chain, nil
}

// httpBackend carries what every HTTP resolver needs.
type httpBackend struct {
	client *http.Client
	cfg    types.HTTPConfig
	logger *slog.Logger
}

// getJSON fetches reqURL and decodes the body into v. A 404 reports
// found == false with no error.
func (b httpBackend) getJSON(ctx context.Context, service, reqURL string, v any) (found bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating %s request: %w", service, err)
	}
	if b.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", b.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, b.client, req, b.cfg.MaxRetries, b.logger)
	if err != nil {
		return false, fmt.Errorf("%s API request: %w", service, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("%s API returned HTTP %d", service, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("parsing %s response: %w", service, err)
	}
	return true, nil
}
