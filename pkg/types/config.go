// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by resolvers that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "oafind/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries caps how many times a rate-limited (HTTP 429) request is
	// re-sent; 0 disables re-sending. Other failures are never re-sent.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// DatasetConfig describes where the records live and which columns carry
// the identifiers.
type DatasetConfig struct {
	// Path is the spreadsheet to read (.xlsx, .xlsm, .csv, .tsv).
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// Sheet selects a worksheet in xlsx workbooks. Empty means the first sheet.
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty" mapstructure:"sheet"`

	// PrimaryIDColumn names the column holding the bibliographic identifier (e.g. "PMID").
	PrimaryIDColumn string `json:"primary_id_column" yaml:"primary_id_column" mapstructure:"primary_id_column"`

	// OAIDColumn names the column holding the open-access identifier (e.g. "PMCID").
	OAIDColumn string `json:"oa_id_column" yaml:"oa_id_column" mapstructure:"oa_id_column"`

	// NullValues lists cell texts read as null in addition to blank cells.
	NullValues []string `json:"null_values" yaml:"null_values" mapstructure:"null_values"`

	// EmptyAsAbsent makes whitespace-only open-access identifiers count as
	// absent during selection.
	EmptyAsAbsent bool `json:"empty_as_absent" yaml:"empty_as_absent" mapstructure:"empty_as_absent"`
}

// ResolverConfig holds settings for the identifier resolution backends.
type ResolverConfig struct {
	// Backends lists resolver names in the order they are tried
	// (openalex, ncbi, unpaywall).
	Backends []string `json:"backends" yaml:"backends" mapstructure:"backends"`

	// Email is sent to OpenAlex (mailto), NCBI (email) and Unpaywall (email).
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// PreferPDF makes the NCBI resolver return the PMC PDF link instead of the article page.
	PreferPDF bool `json:"prefer_pdf" yaml:"prefer_pdf" mapstructure:"prefer_pdf"`

	HTTP HTTPConfig `json:"http" yaml:"http" mapstructure:"http"`
}

// ErrorPolicy decides what the driver does when a record cannot be resolved.
type ErrorPolicy string

const (
	PolicySkip     ErrorPolicy = "skip"
	PolicyFailFast ErrorPolicy = "fail-fast"
)

// DriverConfig holds settings for the resolution driver.
type DriverConfig struct {
	// OnError is skip (log and continue) or fail-fast (abort the run).
	OnError ErrorPolicy `json:"on_error" yaml:"on_error" mapstructure:"on_error"`

	// Workers bounds how many lookups run at once (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// Delay is the pause before each lookup after the first. It is counted
	// from the moment a worker is free, so with one worker it is the gap
	// between the end of one lookup and the start of the next.
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config groups all settings for one run.
type Config struct {
	Dataset  DatasetConfig  `json:"dataset" yaml:"dataset" mapstructure:"dataset"`
	Resolver ResolverConfig `json:"resolver" yaml:"resolver" mapstructure:"resolver"`
	Driver   DriverConfig   `json:"driver" yaml:"driver" mapstructure:"driver"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}

// Valid reports whether p is a known policy.
func (p ErrorPolicy) Valid() bool {
	return p == PolicySkip || p == PolicyFailFast
}
