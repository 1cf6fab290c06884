// Package patent defines the Patent record held by the corpus and the claim
// handling needed before claims are embedded into analysis prompts.
package patent

import (
	"encoding/json"
	"strings"

	"github.com/turtacn/InfringeScope/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Inventor value object
// ─────────────────────────────────────────────────────────────────────────────

// Inventor is a named inventor of a patent.
type Inventor struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName joins first and last name.
func (i Inventor) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// ─────────────────────────────────────────────────────────────────────────────
// Patent
// ─────────────────────────────────────────────────────────────────────────────

// Patent is a single corpus entry. Records are immutable once loaded; the
// corpus store hands out copies.
//
// PublicationNumber is the unique key (for example "US-RE49889-E1"). Dates are
// kept as the source strings so that records round-trip unchanged through the
// search API.
type Patent struct {
	ID                string     `json:"id,omitempty"`
	PublicationNumber string     `json:"publication_number"`
	Title             string     `json:"title"`
	Abstract          string     `json:"abstract"`
	Description       string     `json:"description,omitempty"`
	Claims            ClaimSet   `json:"claims"`
	Assignee          string     `json:"assignee,omitempty"`
	Inventors         []Inventor `json:"inventors,omitempty"`
	PriorityDate      string     `json:"priority_date,omitempty"`
	GrantDate         string     `json:"grant_date,omitempty"`
}

// Validate checks the fields the matcher and analyzer depend on.
func (p *Patent) Validate() error {
	if strings.TrimSpace(p.PublicationNumber) == "" {
		return errors.New(errors.CodeCorpusEntryMalformed, "patent is missing publication_number")
	}
	return nil
}

// Decode parses a single patent JSON object and validates it.
func Decode(raw json.RawMessage) (Patent, error) {
	var p Patent
	if err := json.Unmarshal(raw, &p); err != nil {
		return Patent{}, errors.Wrap(err, errors.CodeCorpusEntryMalformed, "patent entry is not a valid object")
	}
	if err := p.Validate(); err != nil {
		return Patent{}, err
	}
	return p, nil
}

// DecodeList splits a patents document into raw entries. The document is a
// JSON array; an object of the form {"patents": [...]} is also accepted.
func DecodeList(data []byte) ([]json.RawMessage, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries, nil
	}
	var doc struct {
		Patents []json.RawMessage `json:"patents"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeCorpusUnavailable, "patents document is not valid JSON")
	}
	return doc.Patents, nil
}

//Personal.AI order the ending
