// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Record is one row of the source spreadsheet.
type Record struct {
	// Row is the 1-based row number in the source sheet, header included.
	Row int `json:"row" yaml:"row"`

	// PrimaryID is the bibliographic identifier (PMID or DOI). Always set.
	PrimaryID string `json:"primary_id" yaml:"primary_id"`

	// OAID is the open-access identifier (e.g. a PMCID). Nil when the cell is null.
	OAID *string `json:"oa_id,omitempty" yaml:"oa_id,omitempty"`
}

// HasOAID reports whether the open-access identifier cell was non-null.
func (r Record) HasOAID() bool {
	return r.OAID != nil
}
