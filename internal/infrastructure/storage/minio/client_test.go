package minio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

const noSuchKeyXML = `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`

// fakeS3 serves a single bucket with path-style addressing.
func fakeS3(t *testing.T, bucket string, objects map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		b, key, _ := strings.Cut(path, "/")
		if b != bucket {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if key == "" {
			w.WriteHeader(http.StatusOK)
			return
		}
		body, ok := objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			if r.Method != http.MethodHead {
				_, _ = w.Write([]byte(noSuchKeyXML))
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = w.Write([]byte(body))
		}
	}))
}

func newTestClient(t *testing.T, srv *httptest.Server, bucket string) (*Client, error) {
	t.Helper()
	return NewClient(context.Background(), Config{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    bucket,
	}, logging.NewNopLogger())
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	applyDefaults(&cfg)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, int64(512<<20), cfg.MaxObjectSize)
}

func TestClient_ReadObject(t *testing.T) {
	srv := fakeS3(t, "corpus", map[string]string{"patents.json": `[{"publication_number":"US-1"}]`})
	defer srv.Close()

	c, err := newTestClient(t, srv, "corpus")
	require.NoError(t, err)
	assert.Equal(t, "corpus", c.Bucket())

	data, err := c.ReadObject(context.Background(), "patents.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"publication_number":"US-1"}]`, string(data))
}

func TestClient_ReadObject_Missing(t *testing.T) {
	srv := fakeS3(t, "corpus", map[string]string{})
	defer srv.Close()

	c, err := newTestClient(t, srv, "corpus")
	require.NoError(t, err)

	_, err = c.ReadObject(context.Background(), "nope.json")
	assert.Error(t, err)
}

func TestClient_ReadObject_TooLarge(t *testing.T) {
	srv := fakeS3(t, "corpus", map[string]string{"big.json": strings.Repeat("x", 64)})
	defer srv.Close()

	c, err := newTestClient(t, srv, "corpus")
	require.NoError(t, err)
	c.cfg.MaxObjectSize = 16

	_, err = c.ReadObject(context.Background(), "big.json")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeStorageError))
}

func TestNewClient_UnreachableEndpoint(t *testing.T) {
	srv := fakeS3(t, "corpus", nil)
	srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewClient(ctx, Config{
		Endpoint: strings.TrimPrefix(srv.URL, "http://"),
		Bucket:   "corpus",
	}, logging.NewNopLogger())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeStorageError))
}

//Personal.AI order the ending
