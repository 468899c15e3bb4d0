// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package driver

import (
	"strings"

	"github.com/pdiddy/oafind/internal/dataset"
	"github.com/pdiddy/oafind/pkg/types"
)

// NullSemantics decides which open-access identifiers count as absent.
type NullSemantics int

const (
	// NullOnly treats only null cells as absent. An empty or
	// whitespace-only value is present.
	NullOnly NullSemantics = iota

	// NullOrEmpty also treats values that are empty after trimming as absent.
	NullOrEmpty
)

func (s NullSemantics) String() string {
	if s == NullOrEmpty {
		return "null-or-empty"
	}
	return "null-only"
}

// SemanticsFor maps the dataset configuration onto NullSemantics.
func SemanticsFor(cfg types.DatasetConfig) NullSemantics {
	if cfg.EmptyAsAbsent {
		return NullOrEmpty
	}
	return NullOnly
}

// Absent reports whether rec's open-access identifier is absent under s.
func (s NullSemantics) Absent(rec types.Record) bool {
	if !rec.HasOAID() {
		return true
	}
	return s == NullOrEmpty && strings.TrimSpace(*rec.OAID) == ""
}

// Select returns the records whose open-access identifier is absent, in
// dataset order. It does not modify ds.
func Select(ds *dataset.Dataset, sem NullSemantics) []types.Record {
	if ds == nil {
		return nil
	}
	var selected []types.Record
	for _, rec := range ds.Records {
		if sem.Absent(rec) {
			selected = append(selected, rec)
		}
	}
	return selected
}
