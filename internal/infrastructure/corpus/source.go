// Package corpus loads the patent and company corpora and serves immutable,
// indexed snapshots of them to the search and analysis layers.
package corpus

import (
	"context"
	"fmt"
	"os"

	"github.com/turtacn/InfringeScope/pkg/errors"
)

// Source supplies the raw corpus documents.
type Source interface {
	// ReadPatents returns the patents document (a JSON array).
	ReadPatents(ctx context.Context) ([]byte, error)
	// ReadCompanies returns the companies document ({"companies": [...]}).
	ReadCompanies(ctx context.Context) ([]byte, error)
	// String describes the source for logs.
	String() string
}

// ─────────────────────────────────────────────────────────────────────────────
// Local files
// ─────────────────────────────────────────────────────────────────────────────

// FileSource reads both documents from the local filesystem.
type FileSource struct {
	PatentsPath   string
	CompaniesPath string
}

// NewFileSource returns a source backed by two JSON files.
func NewFileSource(patentsPath, companiesPath string) *FileSource {
	return &FileSource{PatentsPath: patentsPath, CompaniesPath: companiesPath}
}

func (s *FileSource) ReadPatents(_ context.Context) ([]byte, error) {
	return readFile(s.PatentsPath)
}

func (s *FileSource) ReadCompanies(_ context.Context) ([]byte, error) {
	return readFile(s.CompaniesPath)
}

// Paths lists the files a watcher should observe.
func (s *FileSource) Paths() []string {
	return []string{s.PatentsPath, s.CompaniesPath}
}

func (s *FileSource) String() string {
	return fmt.Sprintf("file(%s, %s)", s.PatentsPath, s.CompaniesPath)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeCorpusUnavailable, "failed to read %s", path)
	}
	return data, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Object storage
// ─────────────────────────────────────────────────────────────────────────────

// ObjectReader is the subset of the object-storage client the corpus needs.
type ObjectReader interface {
	ReadObject(ctx context.Context, key string) ([]byte, error)
	Bucket() string
}

// ObjectSource reads both documents from an object-storage bucket.
type ObjectSource struct {
	reader       ObjectReader
	patentsKey   string
	companiesKey string
}

// NewObjectSource returns a source backed by two objects in one bucket.
func NewObjectSource(reader ObjectReader, patentsKey, companiesKey string) *ObjectSource {
	return &ObjectSource{reader: reader, patentsKey: patentsKey, companiesKey: companiesKey}
}

func (s *ObjectSource) ReadPatents(ctx context.Context) ([]byte, error) {
	return s.read(ctx, s.patentsKey)
}

func (s *ObjectSource) ReadCompanies(ctx context.Context) ([]byte, error) {
	return s.read(ctx, s.companiesKey)
}

func (s *ObjectSource) read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.reader.ReadObject(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeCorpusUnavailable, "failed to read s3://%s/%s", s.reader.Bucket(), key)
	}
	return data, nil
}

func (s *ObjectSource) String() string {
	return fmt.Sprintf("s3://%s/{%s,%s}", s.reader.Bucket(), s.patentsKey, s.companiesKey)
}

//Personal.AI order the ending
