// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolver

import (
	"context"
	"fmt"
	"net/url"
)

// Base URLs for the PMC ID converter and article pages. Declared as vars so
// tests can substitute an httptest server.
var (
	idConvAPIBase  = "https://www.ncbi.nlm.nih.gov/pmc/utils/idconv/v1.0/"
	pmcArticleBase = "https://www.ncbi.nlm.nih.gov/pmc/articles/"
)

const idConvTool = "oafind"

type idConvResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Records []idConvRecord `json:"records"`
}

type idConvRecord struct {
	PMCID  string `json:"pmcid"`
	PMID   string `json:"pmid"`
	DOI    string `json:"doi"`
	Status string `json:"status"`
	ErrMsg string `json:"errmsg"`
}

// NCBI maps PMIDs and DOIs to a PubMed Central article through the PMC ID
// converter and returns the article's URL.
type NCBI struct {
	httpBackend

	// Email identifies the caller to NCBI, as their usage policy asks.
	Email string

	// PreferPDF returns the article's PDF link instead of its landing page.
	PreferPDF bool
}

// Name returns the backend identifier.
func (n *NCBI) Name() string { return "ncbi" }

// Resolve returns the PMC article URL, or "" when the article is not in PMC.
// A PMCID is turned into a URL without a network call.
func (n *NCBI) Resolve(ctx context.Context, identifier string) (string, error) {
	idType, norm := Classify(identifier)
	switch idType {
	case TypePMCID:
		return n.articleURL(norm), nil
	case TypePMID, TypeDOI:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedIdentifier, identifier)
	}

	params := url.Values{
		"ids":    {norm},
		"format": {"json"},
		"tool":   {idConvTool},
	}
	if n.Email != "" {
		params.Set("email", n.Email)
	}

	var resp idConvResponse
	found, err := n.getJSON(ctx, "NCBI", idConvAPIBase+"?"+params.Encode(), &resp)
	if err != nil || !found {
		return "", err
	}
	if resp.Status != "" && resp.Status != "ok" {
		return "", fmt.Errorf("NCBI ID converter: %s", resp.Message)
	}

	for _, rec := range resp.Records {
		if rec.PMCID != "" {
			return n.articleURL(rec.PMCID), nil
		}
		if rec.Status == "error" {
			n.logger.Debug("ncbi record error", "id", norm, "errmsg", rec.ErrMsg)
		}
	}
	return "", nil
}

func (n *NCBI) articleURL(pmcid string) string {
	u := pmcArticleBase + pmcid + "/"
	if n.PreferPDF {
		u += "pdf/"
	}
	return u
}
