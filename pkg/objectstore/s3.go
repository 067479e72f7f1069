package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds configuration for S3Backend.
type S3Config struct {
	Region   string
	Endpoint string // Optional custom endpoint (MinIO, LocalStack, R2)
}

// S3Backend stores objects in S3 or an S3-compatible service.
type S3Backend struct {
	client   *s3.Client
	presign  *s3.PresignClient
	endpoint *url.URL
}

// NewS3Backend loads the default AWS credential chain.
func NewS3Backend(ctx context.Context, cfg S3Config) (*S3Backend, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var endpoint *url.URL
	if cfg.Endpoint != "" {
		endpoint, err = url.Parse(cfg.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse s3 endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Backend{client: client, presign: s3.NewPresignClient(client), endpoint: endpoint}, nil
}

func (b *S3Backend) Stat(ctx context.Context, bucket, key string) (*ObjectInfo, error) {
	out, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, ErrObjectNotExist
		}
		return nil, fmt.Errorf("s3 head %s/%s: %w", bucket, key, err)
	}
	return &ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
		Metadata:    out.Metadata,
	}, nil
}

func (b *S3Backend) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, ErrObjectNotExist
		}
		return nil, fmt.Errorf("s3 get %s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

// SetMetadata rewrites the object onto itself; S3 metadata is immutable otherwise.
func (b *S3Backend) SetMetadata(ctx context.Context, bucket, key string, metadata map[string]string) error {
	current, err := b.Stat(ctx, bucket, key)
	if err != nil {
		return err
	}
	merged := make(map[string]string, len(current.Metadata)+len(metadata))
	for k, v := range current.Metadata {
		merged[k] = v
	}
	for k, v := range metadata {
		merged[k] = v
	}

	input := &s3.CopyObjectInput{
		Bucket:            aws.String(bucket),
		Key:               aws.String(key),
		CopySource:        aws.String(url.PathEscape(bucket + "/" + key)),
		Metadata:          merged,
		MetadataDirective: types.MetadataDirectiveReplace,
	}
	if current.ContentType != "" {
		input.ContentType = aws.String(current.ContentType)
	}
	if _, err := b.client.CopyObject(ctx, input); err != nil {
		if isS3NotFound(err) {
			return ErrObjectNotExist
		}
		return fmt.Errorf("s3 update metadata %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (b *S3Backend) SignURL(ctx context.Context, bucket, key, method string, ttl time.Duration) (string, error) {
	if err := CheckMethod(method); err != nil {
		return "", err
	}
	expires := s3.WithPresignExpires(ttl)

	var (
		req *v4.PresignedHTTPRequest
		err error
	)
	switch method {
	case http.MethodGet:
		req, err = b.presign.PresignGetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}, expires)
	case http.MethodHead:
		req, err = b.presign.PresignHeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}, expires)
	case http.MethodPut:
		req, err = b.presign.PresignPutObject(ctx, &s3.PutObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}, expires)
	case http.MethodDelete:
		req, err = b.presign.PresignDeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}, expires)
	}
	if err != nil {
		return "", fmt.Errorf("s3 presign %s %s/%s: %w", method, bucket, key, err)
	}
	return req.URL, nil
}

// ObjectPath understands path-style URLs on the configured endpoint and
// virtual-hosted AWS URLs ("<bucket>.s3[.<region>].amazonaws.com").
func (b *S3Backend) ObjectPath(u *url.URL) (string, bool) {
	if u == nil {
		return "", false
	}
	if b.endpoint != nil && strings.EqualFold(u.Host, b.endpoint.Host) {
		return u.Path, true
	}
	host := strings.ToLower(u.Hostname())
	if !strings.HasSuffix(host, ".amazonaws.com") {
		return "", false
	}
	if idx := strings.Index(host, ".s3"); idx > 0 {
		return "/" + host[:idx] + u.Path, true
	}
	if strings.HasPrefix(host, "s3.") || strings.HasPrefix(host, "s3-") {
		return u.Path, true
	}
	return "", false
}

func isS3NotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket)
}
