// Package jsonfile keeps saved reports in a single JSON array file.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/InfringeScope/internal/domain/report"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

// Locker serializes writers across processes sharing the file.
type Locker interface {
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
}

// Option configures a Store.
type Option func(*Store)

// WithLocker adds a cross-process lock around writes.
func WithLocker(l Locker) Option {
	return func(s *Store) { s.locker = l }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides time.Now for created_at defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store implements report.Repository over a JSON file. The whole array is
// rewritten on every save and swapped in with a rename, so readers always
// see a complete file.
type Store struct {
	path   string
	mu     sync.Mutex
	locker Locker
	logger logging.Logger
	now    func() time.Time
}

var _ report.Repository = (*Store)(nil)

// New creates a store backed by path. The file is created on first save.
func New(path string, opts ...Option) *Store {
	s := &Store{path: path, logger: logging.NewNopLogger(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Save appends r to the file.
func (s *Store) Save(ctx context.Context, r *report.SavedReport) (*report.SavedReport, error) {
	stored := *r
	if err := stored.Prepare(s.now()); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locker != nil {
		if err := s.locker.Lock(ctx); err != nil {
			return nil, errors.Wrap(err, errors.CodeReportStoreFailed, "failed to acquire report lock")
		}
		defer func() {
			if err := s.locker.Unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release report lock", logging.Err(err))
			}
		}()
	}

	reports, err := s.read()
	if err != nil {
		s.quarantine(err)
		reports = nil
	}
	for _, existing := range reports {
		if existing.ID == stored.ID {
			return nil, errors.Newf(errors.CodeConflict, "report %s already exists", stored.ID)
		}
	}

	reports = append(reports, &stored)
	if err := s.write(reports); err != nil {
		return nil, err
	}
	s.logger.Info("report saved", logging.String("report_id", stored.ID), logging.Int("total", len(reports)))
	return &stored, nil
}

// Get returns the report with the given id in any UUID spelling. Ids that
// are not UUIDs cannot exist.
func (s *Store) Get(_ context.Context, id string) (*report.SavedReport, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, report.ErrNotFound(id)
	}
	key := parsed.String()
	for _, r := range s.readOrEmpty() {
		if strings.EqualFold(r.ID, key) {
			return r, nil
		}
	}
	return nil, report.ErrNotFound(id)
}

// List returns a page of reports in insertion order.
func (s *Store) List(_ context.Context, page report.Page) ([]*report.SavedReport, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	reports := s.readOrEmpty()
	start, end := page.Window(len(reports))
	return reports[start:end], nil
}

// HealthCheck verifies the directory holding the file exists.
func (s *Store) HealthCheck(_ context.Context) error {
	dir := filepath.Dir(s.path)
	info, err := os.Stat(dir)
	if err != nil {
		return errors.Wrap(err, errors.CodeReportStoreFailed, "report directory unavailable")
	}
	if !info.IsDir() {
		return errors.Newf(errors.CodeReportStoreFailed, "%s is not a directory", dir)
	}
	return nil
}

// readOrEmpty treats an unreadable file as an empty report list.
func (s *Store) readOrEmpty() []*report.SavedReport {
	reports, err := s.read()
	if err != nil {
		s.logger.Warn("failed to read reports, treating as empty",
			logging.String("path", s.path), logging.Err(err))
		return []*report.SavedReport{}
	}
	return reports
}

// read returns the stored reports. A missing file is an empty list.
func (s *Store) read() ([]*report.SavedReport, error) {
	data, err := os.ReadFile(s.path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return []*report.SavedReport{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*report.SavedReport{}, nil
	}
	var reports []*report.SavedReport
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	if reports == nil {
		reports = []*report.SavedReport{}
	}
	return reports, nil
}

// quarantine moves an unreadable file aside so the next write does not
// silently destroy it.
func (s *Store) quarantine(cause error) {
	aside := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().UnixNano())
	if err := os.Rename(s.path, aside); err != nil {
		s.logger.Warn("failed to read reports, starting a new file",
			logging.String("path", s.path), logging.Err(cause))
		return
	}
	s.logger.Warn("failed to read reports, moved unreadable file aside",
		logging.String("path", s.path), logging.String("moved_to", aside), logging.Err(cause))
}

func (s *Store) write(reports []*report.SavedReport) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to encode reports")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.CodeReportStoreFailed, "failed to create report directory")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, errors.CodeReportStoreFailed, "failed to create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.CodeReportStoreFailed, "failed to write reports")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.CodeReportStoreFailed, "failed to sync reports")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.CodeReportStoreFailed, "failed to close temp file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrap(err, errors.CodeReportStoreFailed, "failed to replace report file")
	}
	return nil
}

//Personal.AI order the ending
