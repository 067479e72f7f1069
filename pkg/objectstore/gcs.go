package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const gcsHost = "storage.googleapis.com"

// GCSBackend stores objects in Google Cloud Storage.
type GCSBackend struct {
	client *storage.Client
}

// NewGCSBackend creates a client using application default credentials unless credentialsFile is set.
func NewGCSBackend(ctx context.Context, credentialsFile string) (*GCSBackend, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSBackend{client: client}, nil
}

func (b *GCSBackend) Stat(ctx context.Context, bucket, key string) (*ObjectInfo, error) {
	attrs, err := b.client.Bucket(bucket).Object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, ErrObjectNotExist
		}
		return nil, fmt.Errorf("gcs attrs %s/%s: %w", bucket, key, err)
	}
	return &ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		ContentType: attrs.ContentType,
		Size:        attrs.Size,
		Metadata:    attrs.Metadata,
	}, nil
}

func (b *GCSBackend) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	reader, err := b.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrObjectNotExist
		}
		return nil, fmt.Errorf("gcs read %s/%s: %w", bucket, key, err)
	}
	return reader, nil
}

func (b *GCSBackend) SetMetadata(ctx context.Context, bucket, key string, metadata map[string]string) error {
	_, err := b.client.Bucket(bucket).Object(key).Update(ctx, storage.ObjectAttrsToUpdate{Metadata: metadata})
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return ErrObjectNotExist
		}
		return fmt.Errorf("gcs update metadata %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (b *GCSBackend) SignURL(_ context.Context, bucket, key, method string, ttl time.Duration) (string, error) {
	if err := CheckMethod(method); err != nil {
		return "", err
	}
	signed, err := b.client.Bucket(bucket).SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  method,
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("gcs sign %s %s/%s: %w", method, bucket, key, err)
	}
	return signed, nil
}

func (b *GCSBackend) ObjectPath(u *url.URL) (string, bool) {
	if u == nil || !strings.EqualFold(u.Host, gcsHost) {
		return "", false
	}
	return u.Path, true
}

// Close releases the underlying client.
func (b *GCSBackend) Close() error {
	return b.client.Close()
}
