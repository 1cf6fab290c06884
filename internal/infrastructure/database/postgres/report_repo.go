package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/turtacn/InfringeScope/internal/domain/analysis"
	"github.com/turtacn/InfringeScope/internal/domain/report"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

const uniqueViolation = "23505"

const reportColumns = `id, created_at, patent_id, patent_title, patent_abstract,
	company_name, top_infringing_products, overall_risk_assessment`

// ReportRepository implements report.Repository over the reports table.
// Listing follows insertion order through the seq column.
type ReportRepository struct {
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time
}

var _ report.Repository = (*ReportRepository)(nil)

// NewReportRepository creates a repository on the connection's pool.
func NewReportRepository(conn *Connection, log logging.Logger) *ReportRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ReportRepository{db: conn.DB(), logger: log, now: time.Now}
}

// Save inserts r and returns the stored copy.
func (r *ReportRepository) Save(ctx context.Context, in *report.SavedReport) (*report.SavedReport, error) {
	stored := *in
	if err := stored.Prepare(r.now()); err != nil {
		return nil, err
	}
	products, err := json.Marshal(stored.TopInfringingProducts)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "failed to encode findings")
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO reports (`+reportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		stored.ID, stored.CreatedAt, stored.PatentID, stored.PatentTitle, stored.PatentAbstract,
		stored.CompanyName, products, stored.OverallRiskAssessment,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, errors.Newf(errors.CodeConflict, "report %s already exists", stored.ID)
		}
		return nil, errors.Wrap(err, errors.CodeReportStoreFailed, "failed to insert report")
	}
	r.logger.Info("report saved", logging.String("report_id", stored.ID))
	return &stored, nil
}

// Get returns a report by id. Ids that are not UUIDs cannot exist.
func (r *ReportRepository) Get(ctx context.Context, id string) (*report.SavedReport, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, report.ErrNotFound(id)
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, parsed.String())
	out, err := scanReport(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, report.ErrNotFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeReportStoreFailed, "failed to load report")
	}
	return out, nil
}

// List returns a page of reports in insertion order.
func (r *ReportRepository) List(ctx context.Context, page report.Page) ([]*report.SavedReport, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	out := []*report.SavedReport{}
	if page.Limit == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports ORDER BY seq LIMIT $1 OFFSET $2`,
		page.Limit, page.Skip)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeReportStoreFailed, "failed to list reports")
	}
	defer rows.Close()

	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeReportStoreFailed, "failed to scan report")
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeReportStoreFailed, "failed to list reports")
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (*report.SavedReport, error) {
	var (
		out      report.SavedReport
		products []byte
	)
	if err := s.Scan(&out.ID, &out.CreatedAt, &out.PatentID, &out.PatentTitle, &out.PatentAbstract,
		&out.CompanyName, &products, &out.OverallRiskAssessment); err != nil {
		return nil, err
	}
	out.CreatedAt = out.CreatedAt.UTC()
	out.TopInfringingProducts = []analysis.Finding{}
	if len(products) > 0 {
		if err := json.Unmarshal(products, &out.TopInfringingProducts); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

//Personal.AI order the ending
