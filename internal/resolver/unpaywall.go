// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolver

import (
	"context"
	"net/url"
)

// unpaywallAPIBase is the Unpaywall v2 endpoint. Declared as a var so tests
// can substitute an httptest server.
var unpaywallAPIBase = "https://api.unpaywall.org/v2/"

type unpaywallResponse struct {
	BestOALocation *unpaywallLocation `json:"best_oa_location"`
}

type unpaywallLocation struct {
	URLForPDF string `json:"url_for_pdf"`
	URL       string `json:"url"`
}

// Unpaywall resolves DOIs. Other identifier types are reported as absent so
// the backend can sit in a chain keyed by PMIDs.
type Unpaywall struct {
	httpBackend

	// Email is required by the Unpaywall API.
	Email string
}

// Name returns the backend identifier.
func (u *Unpaywall) Name() string { return "unpaywall" }

// Resolve returns the best location's PDF URL, falling back to its page URL.
func (u *Unpaywall) Resolve(ctx context.Context, identifier string) (string, error) {
	idType, doi := Classify(identifier)
	if idType != TypeDOI {
		return "", nil
	}

	apiURL := unpaywallAPIBase + escapeDOI(doi) + "?" + url.Values{"email": {u.Email}}.Encode()

	var resp unpaywallResponse
	found, err := u.getJSON(ctx, "Unpaywall", apiURL, &resp)
	if err != nil || !found || resp.BestOALocation == nil {
		return "", err
	}
	if resp.BestOALocation.URLForPDF != "" {
		return resp.BestOALocation.URLForPDF, nil
	}
	return resp.BestOALocation.URL, nil
}
