// Package objectstore adapts bucket storage providers to the narrow surface the catalog needs:
// stat, stream, replace metadata and sign single-verb URLs.
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
)

// ErrObjectNotExist is returned by a Backend when the addressed object is absent.
var ErrObjectNotExist = errors.New("object does not exist")

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Bucket      string
	Key         string
	ContentType string
	Size        int64
	Metadata    map[string]string
}

// Backend is implemented per provider. Implementations must be safe for concurrent use.
type Backend interface {
	Stat(ctx context.Context, bucket, key string) (*ObjectInfo, error)
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	// SetMetadata merges the given entries into the object's custom metadata.
	SetMetadata(ctx context.Context, bucket, key string, metadata map[string]string) error
	SignURL(ctx context.Context, bucket, key, method string, ttl time.Duration) (string, error)
	// ObjectPath maps a provider URL to "/<bucket>/<key>". ok is false for foreign URLs.
	ObjectPath(u *url.URL) (path string, ok bool)
}

// ParsePath splits "/<bucket>/<key...>" into its bucket and key.
func ParsePath(path string) (bucket, key string, err error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	parts := strings.Split(path, "/")
	if len(parts) < 3 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid object path %q: must contain at least a bucket name", path)
	}
	return parts[1], strings.Join(parts[2:], "/"), nil
}

// CheckMethod rejects verbs that cannot be signed.
func CheckMethod(method string) error {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return nil
	default:
		return fmt.Errorf("unsupported method for signed URL: %s", method)
	}
}
