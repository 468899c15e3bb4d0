// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package driver selects records without an open-access identifier and
// resolves each one to a full-text location, writing one location per line
// in dataset order.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/oafind/internal/dataset"
	"github.com/pdiddy/oafind/internal/resolver"
	"github.com/pdiddy/oafind/pkg/types"
)

// ErrNoLocation marks a lookup that succeeded but found no location.
var ErrNoLocation = errors.New("no full-text location found")

// ResolutionError reports a selected record that could not be resolved.
type ResolutionError struct {
	Record types.Record
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %s (row %d): %v", e.Record.PrimaryID, e.Record.Row, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Summary holds the outcome of a run.
type Summary struct {
	Selected int
	Resolved int
	Missed   int
	Failed   int
}

// Total returns the number of selected records that were processed.
func (s Summary) Total() int {
	return s.Resolved + s.Missed + s.Failed
}

// HasFailures reports whether any lookup returned an error.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Driver runs the selection and resolution pass over a Dataset.
type Driver struct {
	resolver resolver.Resolver
	sem      NullSemantics
	cfg      types.DriverConfig
	out      io.Writer
	logger   *slog.Logger
}

// New returns a Driver that resolves through r and writes locations to out.
func New(r resolver.Resolver, sem NullSemantics, cfg types.DriverConfig, out io.Writer, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Driver{
		resolver: r,
		sem:      sem,
		cfg:      cfg,
		out:      out,
		logger:   logger,
	}
}

type lookup struct {
	location string
	err      error
}

// Run resolves every selected record by its own primary identifier. At most
// cfg.Workers lookups are in flight; locations are written in selection
// order regardless. Under the skip policy a failed or empty lookup is
// logged and the run continues; under fail-fast Run stops and returns the
// *ResolutionError.
func (d *Driver) Run(ctx context.Context, ds *dataset.Dataset) (Summary, error) {
	selected := Select(ds, d.sem)
	sum := Summary{Selected: len(selected)}
	d.logger.Info("selected records",
		"records", ds.Len(),
		"selected", len(selected),
		"semantics", d.sem.String())
	if len(selected) == 0 {
		return sum, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lookups := make([]lookup, len(selected))
	ready := make([]chan struct{}, len(selected))
	for i := range ready {
		ready[i] = make(chan struct{})
	}

	// A slot is taken when a lookup starts and released once its record has
	// been emitted, so lookups never run more than Workers records ahead of
	// the output.
	slots := make(chan struct{}, d.workers())
	var g errgroup.Group

	launched := make(chan struct{})
	go func() {
		defer close(launched)
		for i, rec := range selected {
			select {
			case <-ctx.Done():
				return
			case slots <- struct{}{}:
			}
			// The pause is counted from the moment a worker is free.
			if i > 0 && d.cfg.Delay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(d.cfg.Delay):
				}
			}
			if ctx.Err() != nil {
				return
			}
			i, rec := i, rec
			g.Go(func() error {
				defer close(ready[i])
				loc, err := d.resolver.Resolve(ctx, rec.PrimaryID)
				lookups[i] = lookup{location: loc, err: err}
				return nil
			})
		}
	}()

	var runErr error
emit:
	for i, rec := range selected {
		select {
		case <-ready[i]:
		case <-ctx.Done():
			runErr = ctx.Err()
			break emit
		}
		if lookups[i].err != nil && ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}
		if runErr = d.emit(&sum, rec, lookups[i]); runErr != nil {
			break
		}
		<-slots
	}

	cancel()
	<-launched
	g.Wait()

	d.logger.Info("resolution summary",
		"resolved", sum.Resolved,
		"missed", sum.Missed,
		"failed", sum.Failed,
		"total", sum.Total())
	return sum, runErr
}

func (d *Driver) emit(sum *Summary, rec types.Record, l lookup) error {
	switch {
	case l.err != nil:
		sum.Failed++
		return d.unresolved(&ResolutionError{Record: rec, Err: l.err})
	case l.location == "":
		sum.Missed++
		return d.unresolved(&ResolutionError{Record: rec, Err: ErrNoLocation})
	}

	if _, err := fmt.Fprintln(d.out, l.location); err != nil {
		return fmt.Errorf("writing location for %s: %w", rec.PrimaryID, err)
	}
	sum.Resolved++
	d.logger.Debug("resolved", "id", rec.PrimaryID, "row", rec.Row, "location", l.location)
	return nil
}

func (d *Driver) unresolved(err *ResolutionError) error {
	if d.cfg.OnError == types.PolicyFailFast {
		return err
	}
	d.logger.Warn("skipping record",
		"id", err.Record.PrimaryID,
		"row", err.Record.Row,
		"err", err.Err)
	return nil
}

func (d *Driver) workers() int {
	if d.cfg.Workers < 1 {
		return 1
	}
	return d.cfg.Workers
}
