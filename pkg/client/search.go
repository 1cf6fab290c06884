package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Patent is a corpus patent. Claims are passed through as the server returns
// them.
type Patent struct {
	ID                string          `json:"id,omitempty"`
	PublicationNumber string          `json:"publication_number"`
	Title             string          `json:"title"`
	Abstract          string          `json:"abstract"`
	Description       string          `json:"description,omitempty"`
	Claims            json.RawMessage `json:"claims,omitempty"`
	Assignee          string          `json:"assignee,omitempty"`
	PriorityDate      string          `json:"priority_date,omitempty"`
	GrantDate         string          `json:"grant_date,omitempty"`
}

// Product is one product line of a company.
type Product struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Company is a corpus company.
type Company struct {
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

// SearchMatch is one ranked result. Data holds a Patent or a Company
// depending on the endpoint.
type SearchMatch struct {
	Confidence int             `json:"confidence"`
	IsExact    bool            `json:"is_exact"`
	Data       json.RawMessage `json:"data"`
}

// Patent decodes Data as a patent.
func (m SearchMatch) Patent() (Patent, error) {
	var p Patent
	err := json.Unmarshal(m.Data, &p)
	return p, err
}

// Company decodes Data as a company.
func (m SearchMatch) Company() (Company, error) {
	var c Company
	err := json.Unmarshal(m.Data, &c)
	return c, err
}

// SearchResponse is the result of an ID or name search. Suggestion is the
// best candidate, nil when nothing matched.
type SearchResponse struct {
	Query      string        `json:"query"`
	Matches    []SearchMatch `json:"matches"`
	Suggestion *string       `json:"suggestion"`
}

// PatentSuggestion is a title-search hit. Abstract is only set by
// PatentsByTitle.
type PatentSuggestion struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Confidence int     `json:"confidence"`
	Abstract   *string `json:"abstract,omitempty"`
}

// CompanySuggestion is a company-name hit.
type CompanySuggestion struct {
	Name       string `json:"name"`
	Confidence int    `json:"confidence"`
}

// QueryOption sets an optional search parameter. Unset parameters use the
// server defaults.
type QueryOption func(url.Values)

// WithThreshold sets the minimum confidence (0-100).
func WithThreshold(n int) QueryOption {
	return func(v url.Values) { v.Set("threshold", strconv.Itoa(n)) }
}

// WithLimit caps the number of suggestions (1-20).
func WithLimit(n int) QueryOption {
	return func(v url.Values) { v.Set("limit", strconv.Itoa(n)) }
}

// ---------------------------------------------------------------------------
// SearchClient
// ---------------------------------------------------------------------------

// SearchClient calls /api/search.
type SearchClient struct {
	client *Client
}

// PatentByID calls GET /api/search/patent/{query}.
func (s *SearchClient) PatentByID(ctx context.Context, query string, opts ...QueryOption) (*SearchResponse, error) {
	var out SearchResponse
	if err := s.client.get(ctx, searchPath("/api/search/patent/", query, opts), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Company calls GET /api/search/company/{query}.
func (s *SearchClient) Company(ctx context.Context, query string, opts ...QueryOption) (*SearchResponse, error) {
	var out SearchResponse
	if err := s.client.get(ctx, searchPath("/api/search/company/", query, opts), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SuggestPatents calls GET /api/search/patent/suggest/{query}.
func (s *SearchClient) SuggestPatents(ctx context.Context, query string, opts ...QueryOption) ([]PatentSuggestion, error) {
	var out []PatentSuggestion
	if err := s.client.get(ctx, searchPath("/api/search/patent/suggest/", query, opts), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PatentsByTitle calls GET /api/search/patent/title/{query}.
func (s *SearchClient) PatentsByTitle(ctx context.Context, query string, opts ...QueryOption) ([]PatentSuggestion, error) {
	var out []PatentSuggestion
	if err := s.client.get(ctx, searchPath("/api/search/patent/title/", query, opts), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SuggestCompanies calls GET /api/search/company/suggest/{query}.
func (s *SearchClient) SuggestCompanies(ctx context.Context, query string, opts ...QueryOption) ([]CompanySuggestion, error) {
	var out []CompanySuggestion
	if err := s.client.get(ctx, searchPath("/api/search/company/suggest/", query, opts), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func searchPath(prefix, query string, opts []QueryOption) string {
	path := prefix + url.PathEscape(query)
	if len(opts) == 0 {
		return path
	}
	v := url.Values{}
	for _, o := range opts {
		o(v)
	}
	return path + "?" + v.Encode()
}

//Personal.AI order the ending
