// Package report defines the persisted form of an infringement analysis and
// the repository contract every report backend implements.
package report

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/InfringeScope/internal/domain/analysis"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

// SavedReport is an analysis persisted for later retrieval. Reports are
// append-only: they are never updated or deleted.
type SavedReport struct {
	ID                    string             `json:"id"`
	CreatedAt             time.Time          `json:"created_at"`
	PatentID              string             `json:"patent_id"`
	PatentTitle           string             `json:"patent_title"`
	PatentAbstract        string             `json:"patent_abstract"`
	CompanyName           string             `json:"company_name"`
	TopInfringingProducts []analysis.Finding `json:"top_infringing_products"`
	OverallRiskAssessment string             `json:"overall_risk_assessment"`
}

// Prepare fills the identity fields of a report about to be stored. A
// supplied ID must be a UUID; it is canonicalised to lower case. A zero
// CreatedAt is set to now. Timestamps are kept at microsecond precision so
// every backend returns the value it was given.
func (r *SavedReport) Prepare(now time.Time) error {
	if strings.TrimSpace(r.ID) == "" {
		r.ID = uuid.NewString()
	} else {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return errors.Wrapf(err, errors.CodeValidation, "report id %q is not a UUID", r.ID)
		}
		r.ID = id.String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.CreatedAt = r.CreatedAt.UTC().Truncate(time.Microsecond)
	if r.TopInfringingProducts == nil {
		r.TopInfringingProducts = []analysis.Finding{}
	}
	for i := range r.TopInfringingProducts {
		r.TopInfringingProducts[i].Normalize()
	}
	return nil
}

// Pagination limits for List.
const (
	DefaultListLimit = 10
	MaxListLimit     = 50
)

// Page is a window over the insertion-ordered report list.
type Page struct {
	Skip  int
	Limit int
}

// Validate checks skip >= 0 and 0 <= limit <= MaxListLimit.
func (p Page) Validate() error {
	if p.Skip < 0 {
		return errors.New(errors.CodeValidation, "skip must be greater than or equal to 0")
	}
	if p.Limit < 0 {
		return errors.New(errors.CodeValidation, "limit must be greater than or equal to 0")
	}
	if p.Limit > MaxListLimit {
		return errors.Newf(errors.CodeValidation, "limit must be less than or equal to %d", MaxListLimit)
	}
	return nil
}

// Window applies the page to a slice length and returns the [start, end)
// bounds, clamped to n.
func (p Page) Window(n int) (int, int) {
	start := min(max(p.Skip, 0), n)
	end := min(start+max(p.Limit, 0), n)
	return start, end
}

// Repository is the report persistence contract.
type Repository interface {
	// Save appends the report and returns the stored form.
	Save(ctx context.Context, r *SavedReport) (*SavedReport, error)
	// Get returns the report with the given id or a CodeReportNotFound error.
	Get(ctx context.Context, id string) (*SavedReport, error)
	// List returns reports in insertion order.
	List(ctx context.Context, page Page) ([]*SavedReport, error)
}

// ErrNotFound builds the error returned by Get for an unknown id.
func ErrNotFound(id string) error {
	return errors.New(errors.CodeReportNotFound, "Report not found").WithDetail(id)
}

//Personal.AI order the ending
