// Package company defines the Company record and its products as held by the
// corpus.
package company

import (
	"encoding/json"
	"strings"

	"github.com/turtacn/InfringeScope/pkg/errors"
)

// Product is one product line of a company.
type Product struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Company is a corpus entry keyed by Name. Name matching is case-insensitive.
type Company struct {
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

// Key returns the case-folded lookup key for the company.
func (c *Company) Key() string {
	return NormalizeName(c.Name)
}

// Validate checks that the company can be indexed.
func (c *Company) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New(errors.CodeCorpusEntryMalformed, "company is missing name")
	}
	return nil
}

// NormalizeName folds a company name for case-insensitive comparison.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}

// Decode parses a single company JSON object and validates it.
func Decode(raw json.RawMessage) (Company, error) {
	var c Company
	if err := json.Unmarshal(raw, &c); err != nil {
		return Company{}, errors.Wrap(err, errors.CodeCorpusEntryMalformed, "company entry is not a valid object")
	}
	if err := c.Validate(); err != nil {
		return Company{}, err
	}
	if c.Products == nil {
		c.Products = []Product{}
	}
	return c, nil
}

// DecodeList parses a companies document. Both {"companies": [...]} and a bare
// array are accepted. The returned raw entries are decoded individually by the
// caller so that one bad entry does not discard the rest.
func DecodeList(data []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var entries []json.RawMessage
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, errors.Wrap(err, errors.CodeCorpusUnavailable, "companies document is not a JSON array")
		}
		return entries, nil
	}
	var doc struct {
		Companies []json.RawMessage `json:"companies"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeCorpusUnavailable, "companies document is not valid JSON")
	}
	return doc.Companies, nil
}

//Personal.AI order the ending
