// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolver

import (
	"context"
	"fmt"
	"net/url"
)

// openAlexAPIBase is the OpenAlex works endpoint. Declared as a var so tests
// can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works/"

// openAlexResponse captures the fields we need from an OpenAlex work record.
type openAlexResponse struct {
	BestOALocation *openAlexLocation `json:"best_oa_location"`
}

// openAlexLocation represents an open-access location in the OpenAlex response.
type openAlexLocation struct {
	PDFURL     string `json:"pdf_url"`
	LandingURL string `json:"landing_page_url"`
}

// OpenAlex resolves PMIDs, PMCIDs, and DOIs to the open-access URL
// OpenAlex records as the work's best location.
type OpenAlex struct {
	httpBackend

	// Email is sent as mailto parameter for polite pool access.
	Email string
}

// Name returns the backend identifier.
func (o *OpenAlex) Name() string { return "openalex" }

// Resolve returns the best open-access PDF URL, falling back to the
// location's landing page. It returns "" when OpenAlex does not know the
// work or records no open-access location for it.
func (o *OpenAlex) Resolve(ctx context.Context, identifier string) (string, error) {
	idType, norm := Classify(identifier)

	var key string
	switch idType {
	case TypePMID:
		key = "pmid:" + norm
	case TypePMCID:
		key = "pmcid:" + norm
	case TypeDOI:
		key = "https://doi.org/" + escapeDOI(norm)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedIdentifier, identifier)
	}

	apiURL := openAlexAPIBase + key
	if o.Email != "" {
		apiURL += "?" + url.Values{"mailto": {o.Email}}.Encode()
	}

	var oa openAlexResponse
	found, err := o.getJSON(ctx, "OpenAlex", apiURL, &oa)
	if err != nil || !found {
		return "", err
	}

	loc := oa.BestOALocation
	if loc == nil {
		return "", nil
	}
	if loc.PDFURL != "" {
		return loc.PDFURL, nil
	}
	return loc.LandingURL, nil
}
