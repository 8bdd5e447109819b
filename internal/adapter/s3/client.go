// Package s3 provides S3-compatible object storage access via MinIO.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds S3 client settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Client wraps a MinIO client scoped to one bucket.
// It implements pipeline.Storage.
type Client struct {
	client *minio.Client
	bucket string
}

// NewClient creates an S3 client for the configured bucket.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &Client{client: client, bucket: cfg.Bucket}, nil
}

// List returns the keys of all objects under prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects with prefix %q: %w", prefix, obj.Err)
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

// Upload writes data to the named object, overwriting any existing one.
func (c *Client) Upload(ctx context.Context, name string, data []byte) error {
	_, err := c.client.PutObject(ctx, c.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "image/tiff"})
	if err != nil {
		return fmt.Errorf("upload object %s: %w", name, err)
	}
	return nil
}
