package corpus

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/turtacn/InfringeScope/internal/domain/company"
	"github.com/turtacn/InfringeScope/internal/domain/patent"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Snapshot
// ─────────────────────────────────────────────────────────────────────────────

// Snapshot is one complete, immutable load of both corpora. Slices returned
// from a Snapshot are shared and must not be modified.
type Snapshot struct {
	patents   []patent.Patent
	companies []company.Company

	// lookup indexes into the slices above
	byPublication map[string]int
	byName        map[string]int

	// lowercased match keys, parallel to the slices above
	titleKeys []string
	nameKeys  []string

	loadedAt time.Time
	skipped  int
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		byPublication: map[string]int{},
		byName:        map[string]int{},
	}
}

// Patents returns the patents in corpus order.
func (s *Snapshot) Patents() []patent.Patent { return s.patents }

// Companies returns the companies in corpus order.
func (s *Snapshot) Companies() []company.Company { return s.companies }

// TitleKeys returns the lowercased patent titles, parallel to Patents.
func (s *Snapshot) TitleKeys() []string { return s.titleKeys }

// NameKeys returns the lowercased company names, parallel to Companies.
func (s *Snapshot) NameKeys() []string { return s.nameKeys }

// LoadedAt is the time the snapshot was built. Zero for the initial empty one.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Skipped counts entries dropped as malformed or duplicate.
func (s *Snapshot) Skipped() int { return s.skipped }

// PatentByExactID looks up a patent by its exact publication number.
func (s *Snapshot) PatentByExactID(id string) (patent.Patent, bool) {
	i, ok := s.byPublication[id]
	if !ok {
		return patent.Patent{}, false
	}
	return s.patents[i], true
}

// CompanyByExactName looks up a company by name, ignoring case.
func (s *Snapshot) CompanyByExactName(name string) (company.Company, bool) {
	i, ok := s.byName[company.NormalizeName(name)]
	if !ok {
		return company.Company{}, false
	}
	return s.companies[i], true
}

// ─────────────────────────────────────────────────────────────────────────────
// Store
// ─────────────────────────────────────────────────────────────────────────────

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithReloadHook registers a function called after every successful swap.
func WithReloadHook(fn func(*Snapshot)) Option {
	return func(s *Store) { s.onReload = fn }
}

// Store holds the current snapshot. Readers never block and always observe a
// complete snapshot; Load swaps in a new one atomically.
type Store struct {
	src      Source
	logger   logging.Logger
	onReload func(*Snapshot)
	snap     atomic.Pointer[Snapshot]
	loaded   atomic.Bool
}

// NewStore creates a store with an empty snapshot. Call Load to populate it.
func NewStore(src Source, opts ...Option) *Store {
	s := &Store{src: src, logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(s)
	}
	s.snap.Store(emptySnapshot())
	return s
}

// NewStaticStore builds a loaded store from in-memory records. Records are
// validated and deduplicated the same way as loaded ones.
func NewStaticStore(patents []patent.Patent, companies []company.Company) *Store {
	s := &Store{logger: logging.NewNopLogger()}
	snap := emptySnapshot()
	for _, p := range patents {
		snap.addPatent(p, s.logger)
	}
	for _, c := range companies {
		snap.addCompany(c, s.logger)
	}
	snap.loadedAt = time.Now()
	s.snap.Store(snap)
	s.loaded.Store(true)
	return s
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// AllPatents returns the current patents. The slice must not be modified.
func (s *Store) AllPatents() []patent.Patent { return s.Snapshot().Patents() }

// AllCompanies returns the current companies. The slice must not be modified.
func (s *Store) AllCompanies() []company.Company { return s.Snapshot().Companies() }

// PatentByExactID looks up a patent by exact publication number.
func (s *Store) PatentByExactID(id string) (patent.Patent, bool) {
	return s.Snapshot().PatentByExactID(id)
}

// CompanyByExactName looks up a company by case-insensitive name.
func (s *Store) CompanyByExactName(name string) (company.Company, bool) {
	return s.Snapshot().CompanyByExactName(name)
}

// Load reads both documents from the source and swaps in the new snapshot.
// A document that cannot be read or parsed yields an empty corpus for that
// side and a warning; Load never fails because of source problems.
func (s *Store) Load(ctx context.Context) *Snapshot {
	snap := emptySnapshot()

	if data, err := s.src.ReadPatents(ctx); err != nil {
		s.logger.Warn("patent corpus unavailable, continuing with empty corpus",
			logging.String("source", s.src.String()), logging.Err(err))
	} else if entries, err := patent.DecodeList(data); err != nil {
		s.logger.Warn("patent corpus is not valid JSON, continuing with empty corpus",
			logging.String("source", s.src.String()), logging.Err(err))
	} else {
		for i, raw := range entries {
			p, err := patent.Decode(raw)
			if err != nil {
				snap.skipped++
				s.logger.Warn("skipping malformed patent entry", logging.Int("index", i), logging.Err(err))
				continue
			}
			snap.addPatent(p, s.logger)
		}
	}

	if data, err := s.src.ReadCompanies(ctx); err != nil {
		s.logger.Warn("company corpus unavailable, continuing with empty corpus",
			logging.String("source", s.src.String()), logging.Err(err))
	} else if entries, err := company.DecodeList(data); err != nil {
		s.logger.Warn("company corpus is not valid JSON, continuing with empty corpus",
			logging.String("source", s.src.String()), logging.Err(err))
	} else {
		for i, raw := range entries {
			c, err := company.Decode(raw)
			if err != nil {
				snap.skipped++
				s.logger.Warn("skipping malformed company entry", logging.Int("index", i), logging.Err(err))
				continue
			}
			snap.addCompany(c, s.logger)
		}
	}

	snap.loadedAt = time.Now()
	s.snap.Store(snap)
	s.loaded.Store(true)

	s.logger.Info("corpus loaded",
		logging.String("source", s.src.String()),
		logging.Int("patents", len(snap.patents)),
		logging.Int("companies", len(snap.companies)),
		logging.Int("skipped", snap.skipped))
	if s.onReload != nil {
		s.onReload(snap)
	}
	return snap
}

// HealthCheck reports whether a load has completed.
func (s *Store) HealthCheck(_ context.Context) error {
	if !s.loaded.Load() {
		return errors.New(errors.CodeCorpusUnavailable, "corpus not loaded")
	}
	return nil
}

func (snap *Snapshot) addPatent(p patent.Patent, log logging.Logger) {
	if err := p.Validate(); err != nil {
		snap.skipped++
		log.Warn("skipping malformed patent entry", logging.Err(err))
		return
	}
	if _, dup := snap.byPublication[p.PublicationNumber]; dup {
		snap.skipped++
		log.Warn("skipping duplicate patent", logging.String("publication_number", p.PublicationNumber))
		return
	}
	snap.byPublication[p.PublicationNumber] = len(snap.patents)
	snap.patents = append(snap.patents, p)
	snap.titleKeys = append(snap.titleKeys, strings.ToLower(p.Title))
}

func (snap *Snapshot) addCompany(c company.Company, log logging.Logger) {
	if err := c.Validate(); err != nil {
		snap.skipped++
		log.Warn("skipping malformed company entry", logging.Err(err))
		return
	}
	key := c.Key()
	if _, dup := snap.byName[key]; dup {
		snap.skipped++
		log.Warn("skipping duplicate company", logging.String("name", c.Name))
		return
	}
	snap.byName[key] = len(snap.companies)
	snap.companies = append(snap.companies, c)
	snap.nameKeys = append(snap.nameKeys, key)
}

//Personal.AI order the ending
