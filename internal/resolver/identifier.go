// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolver

import (
	"net/url"
	"regexp"
	"strings"
)

// IdentifierType classifies a primary identifier.
type IdentifierType int

const (
	TypeUnknown IdentifierType = iota
	TypePMID
	TypePMCID
	TypeDOI
)

func (t IdentifierType) String() string {
	switch t {
	case TypePMID:
		return "pmid"
	case TypePMCID:
		return "pmcid"
	case TypeDOI:
		return "doi"
	default:
		return "unknown"
	}
}

// pmidPattern matches PubMed IDs: "18381613".
var pmidPattern = regexp.MustCompile(`^\d{1,9}$`)

// pmcidPattern matches PubMed Central IDs: "PMC2267766", "pmc2267766".
var pmcidPattern = regexp.MustCompile(`(?i)^pmc(\d+)$`)

// doiPattern matches DOIs: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// doiPrefixes are stripped, case-insensitively, before matching a DOI.
var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

// Classify determines the identifier type and returns the normalized form.
// PMCIDs are upper-cased; DOIs lose any resolver URL or "doi:" prefix.
func Classify(identifier string) (IdentifierType, string) {
	identifier = strings.TrimSpace(identifier)

	if pmidPattern.MatchString(identifier) {
		return TypePMID, identifier
	}

	if m := pmcidPattern.FindStringSubmatch(identifier); m != nil {
		return TypePMCID, "PMC" + m[1]
	}

	doi := identifier
	for _, p := range doiPrefixes {
		if len(doi) >= len(p) && strings.EqualFold(doi[:len(p)], p) {
			doi = strings.TrimSpace(doi[len(p):])
			break
		}
	}
	if doiPattern.MatchString(doi) {
		return TypeDOI, doi
	}

	return TypeUnknown, identifier
}

// escapeDOI escapes each segment of a DOI for use in a URL path. DOIs may
// carry '#', '?', ';' and angle brackets, which would otherwise truncate the
// path or leak into the query string.
func escapeDOI(doi string) string {
	segs := strings.Split(doi, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}
