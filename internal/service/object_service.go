package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bondst/guitarvault/internal/acl"
	"github.com/bondst/guitarvault/pkg/config"
	appErrors "github.com/bondst/guitarvault/pkg/errors"
	"github.com/bondst/guitarvault/pkg/objectstore"
)

const logicalObjectPrefix = "/objects/"

var errObjectNotFound = appErrors.Clone(appErrors.ErrNotFound, "object not found")

var _ ImageTagger = (*ObjectService)(nil)

// ObjectService maps the client-facing "/objects/{id}" path space onto bucket objects,
// issues signed upload URLs and gates downloads through object ACL policies.
type ObjectService struct {
	backend     objectstore.Backend
	evaluator   *acl.Evaluator
	publicPaths []string
	privateDir  string
	uploadTTL   time.Duration
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewObjectService builds the facade. cfg must already be validated.
func NewObjectService(backend objectstore.Backend, evaluator *acl.Evaluator, cfg config.ObjectStorageConfig, metrics *MetricsService, logger *zap.Logger) *ObjectService {
	if evaluator == nil {
		evaluator = acl.NewEvaluator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.UploadURLTTL
	if ttl <= 0 {
		ttl = 900 * time.Second
	}
	return &ObjectService{
		backend:     backend,
		evaluator:   evaluator,
		publicPaths: cfg.PublicSearchPaths,
		privateDir:  strings.TrimRight(cfg.PrivateObjectDir, "/"),
		uploadTTL:   ttl,
		metrics:     metrics,
		logger:      logger,
	}
}

// IssueUploadURL allocates a fresh object under the private root and signs a PUT for it.
func (s *ObjectService) IssueUploadURL(ctx context.Context) (string, error) {
	if s.privateDir == "" {
		return "", appErrors.Clone(appErrors.ErrConfiguration, "private object directory is not configured")
	}
	bucket, key, err := objectstore.ParsePath(s.privateDir + "/uploads/" + uuid.NewString())
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, "private object directory is invalid")
	}
	signed, err := s.backend.SignURL(ctx, bucket, key, http.MethodPut, s.uploadTTL)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	return signed, nil
}

// Resolve maps a logical "/objects/{id}" path to the stored object.
func (s *ObjectService) Resolve(ctx context.Context, logicalPath string) (*objectstore.ObjectInfo, error) {
	if !strings.HasPrefix(logicalPath, logicalObjectPrefix) {
		return nil, errObjectNotFound
	}
	entityID := strings.TrimPrefix(logicalPath, logicalObjectPrefix)
	if strings.Trim(entityID, "/") == "" {
		return nil, errObjectNotFound
	}
	bucket, key, err := objectstore.ParsePath(s.privateDir + "/" + entityID)
	if err != nil {
		return nil, errObjectNotFound
	}
	return s.stat(ctx, bucket, key)
}

// SearchPublic returns the first object named filePath under the public roots, in order.
func (s *ObjectService) SearchPublic(ctx context.Context, filePath string) (*objectstore.ObjectInfo, error) {
	filePath = strings.TrimLeft(filePath, "/")
	if filePath == "" {
		return nil, errObjectNotFound
	}
	for _, root := range s.publicPaths {
		bucket, key, err := objectstore.ParsePath(strings.TrimRight(root, "/") + "/" + filePath)
		if err != nil {
			continue
		}
		info, err := s.stat(ctx, bucket, key)
		if err == nil {
			return info, nil
		}
		if !errors.Is(err, appErrors.ErrNotFound) {
			return nil, err
		}
	}
	return nil, errObjectNotFound
}

// Normalize rewrites provider URLs under the private root to "/objects/{id}". Other provider
// URLs become their "/bucket/key" path and anything else is returned unchanged.
func (s *ObjectService) Normalize(raw string) string {
	if !strings.HasPrefix(raw, "https://") && !strings.HasPrefix(raw, "http://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	objectPath, ok := s.backend.ObjectPath(u)
	if !ok {
		return raw
	}
	entityDir := s.privateDir + "/"
	if !strings.HasPrefix(objectPath, entityDir) {
		return objectPath
	}
	return logicalObjectPrefix + strings.TrimPrefix(objectPath, entityDir)
}

// GetPolicy reads the ACL policy attached to info. A missing policy is nil, not an error.
func (s *ObjectService) GetPolicy(info *objectstore.ObjectInfo) (*acl.Policy, error) {
	return acl.FromMetadata(info.Metadata)
}

// SetPolicy attaches policy to an existing object.
func (s *ObjectService) SetPolicy(ctx context.Context, info *objectstore.ObjectInfo, policy acl.Policy) error {
	encoded, err := policy.Encode()
	if err != nil {
		return err
	}
	if err := s.backend.SetMetadata(ctx, info.Bucket, info.Key, map[string]string{acl.MetadataKey: encoded}); err != nil {
		if errors.Is(err, objectstore.ErrObjectNotExist) {
			return errObjectNotFound
		}
		return fmt.Errorf("set acl policy on %s/%s: %w", info.Bucket, info.Key, err)
	}
	if info.Metadata == nil {
		info.Metadata = map[string]string{}
	}
	info.Metadata[acl.MetadataKey] = encoded
	return nil
}

// TrySetPolicy normalizes raw and, when it names a stored object path, attaches policy.
// It returns the normalized path. Non-path references are returned untouched.
func (s *ObjectService) TrySetPolicy(ctx context.Context, raw string, policy acl.Policy) (string, error) {
	normalized := s.Normalize(raw)
	if !strings.HasPrefix(normalized, "/") {
		return normalized, nil
	}
	info, err := s.Resolve(ctx, normalized)
	if err != nil {
		return "", err
	}
	if err := s.SetPolicy(ctx, info, policy); err != nil {
		return "", err
	}
	return normalized, nil
}

// TagImage normalizes an image reference and marks uploaded objects publicly readable with owner.
// References outside the logical object space are only normalized.
func (s *ObjectService) TagImage(ctx context.Context, raw, owner string) (string, error) {
	normalized := s.Normalize(raw)
	if !strings.HasPrefix(normalized, logicalObjectPrefix) {
		return normalized, nil
	}
	return s.TrySetPolicy(ctx, normalized, acl.Policy{Owner: owner, Visibility: acl.VisibilityPublic})
}

// CanAccess evaluates the object's policy for userID. Unreadable policies deny.
func (s *ObjectService) CanAccess(ctx context.Context, info *objectstore.ObjectInfo, userID string, permission acl.Permission) (bool, error) {
	policy, err := s.GetPolicy(info)
	if err != nil {
		s.logger.Warn("unreadable acl policy", zap.String("bucket", info.Bucket), zap.String("key", info.Key), zap.Error(err))
		s.metrics.RecordACLDecision(string(permission), false)
		return false, nil
	}
	allowed, err := s.evaluator.Evaluate(ctx, policy, userID, permission)
	if err != nil {
		return false, err
	}
	s.metrics.RecordACLDecision(string(permission), allowed)
	return allowed, nil
}

// Download streams info to w with content headers and a Cache-Control directive whose
// visibility follows the object's policy. Errors returned after bytes reach w must not be
// answered with a new status.
func (s *ObjectService) Download(ctx context.Context, w http.ResponseWriter, info *objectstore.ObjectInfo, cacheTTL time.Duration) error {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	visibility := acl.VisibilityPrivate
	if policy, err := s.GetPolicy(info); err == nil && policy != nil && policy.Visibility == acl.VisibilityPublic {
		visibility = acl.VisibilityPublic
	}

	reader, err := s.backend.Open(ctx, info.Bucket, info.Key)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotExist) {
			return errObjectNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "error downloading file")
	}
	defer reader.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := w.Header()
	header.Set("Content-Type", contentType)
	if info.Size >= 0 {
		header.Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	header.Set("Cache-Control", fmt.Sprintf("%s, max-age=%d", visibility, int(cacheTTL.Seconds())))
	w.WriteHeader(http.StatusOK)

	written, err := io.Copy(w, reader)
	s.metrics.AddDownloadedBytes(written)
	if err != nil {
		if written == 0 {
			header.Del("Content-Length")
			header.Del("Cache-Control")
			header.Del("Content-Type")
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "error downloading file")
		}
		return fmt.Errorf("stream %s/%s: %w", info.Bucket, info.Key, err)
	}
	return nil
}

func (s *ObjectService) stat(ctx context.Context, bucket, key string) (*objectstore.ObjectInfo, error) {
	info, err := s.backend.Stat(ctx, bucket, key)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotExist) {
			return nil, errObjectNotFound
		}
		return nil, fmt.Errorf("stat %s/%s: %w", bucket, key, err)
	}
	return info, nil
}
