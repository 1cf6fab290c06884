// Package minio wraps the MinIO / S3 client used to fetch corpus documents
// from object storage.
package minio

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

// Config holds the connection parameters.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	// MaxObjectSize bounds how much of an object ReadObject will buffer.
	MaxObjectSize int64
}

func applyDefaults(cfg *Config) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.MaxObjectSize == 0 {
		cfg.MaxObjectSize = 512 << 20
	}
}

// Client reads and writes objects in a single bucket.
type Client struct {
	api    *minio.Client
	cfg    Config
	logger logging.Logger
}

// NewClient builds a client and verifies that the configured bucket exists.
func NewClient(ctx context.Context, cfg Config, log logging.Logger) (*Client, error) {
	applyDefaults(&cfg)

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to create minio client")
	}

	c := &Client{api: api, cfg: cfg, logger: log}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.HealthCheck(ctx); err != nil {
		return nil, err
	}

	log.Info("MinIO client connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

// Bucket returns the bucket the client operates on.
func (c *Client) Bucket() string {
	return c.cfg.Bucket
}

// ReadObject downloads key in full. Objects larger than MaxObjectSize are
// rejected.
func (c *Client) ReadObject(ctx context.Context, key string) ([]byte, error) {
	obj, err := c.api.GetObject(ctx, c.cfg.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeStorageError, "failed to open object %s", key)
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, c.cfg.MaxObjectSize+1))
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, errors.Wrapf(err, errors.CodeNotFound, "object %s not found", key)
		}
		return nil, errors.Wrapf(err, errors.CodeStorageError, "failed to read object %s", key)
	}
	if int64(len(data)) > c.cfg.MaxObjectSize {
		return nil, errors.Newf(errors.CodeStorageError, "object %s exceeds %d bytes", key, c.cfg.MaxObjectSize)
	}
	return data, nil
}

// HealthCheck confirms the bucket is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.cfg.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "failed to connect to minio")
	}
	if !exists {
		return errors.Newf(errors.CodeStorageError, "bucket %s does not exist", c.cfg.Bucket)
	}
	return nil
}

//Personal.AI order the ending
