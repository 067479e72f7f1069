package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bondst/guitarvault/internal/models"
	appErrors "github.com/bondst/guitarvault/pkg/errors"
)

const guitarListPattern = "guitars:list:*"

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CatalogCache caches guitar list results. Cache failures never fail a request.
type CatalogCache struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCatalogCache constructs a list cache.
func NewCatalogCache(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CatalogCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogCache{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CatalogCache) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

type listKeyCriteria struct {
	Search   string  `json:"q,omitempty"`
	Type     *string `json:"type,omitempty"`
	Brand    *string `json:"brand,omitempty"`
	Status   *string `json:"status,omitempty"`
	MinPrice *string `json:"min,omitempty"`
	MaxPrice *string `json:"max,omitempty"`
}

// ListKey derives a stable key from the filter criteria. A search ignores the
// structured criteria, so they are left out of its key.
func ListKey(filter models.GuitarFilter) string {
	criteria := listKeyCriteria{Search: filter.Search}
	if filter.Search == "" {
		criteria.Type = filter.Type
		criteria.Brand = filter.Brand
		criteria.Status = filter.Status
		if filter.MinPrice != nil {
			minPrice := filter.MinPrice.String()
			criteria.MinPrice = &minPrice
		}
		if filter.MaxPrice != nil {
			maxPrice := filter.MaxPrice.String()
			criteria.MaxPrice = &maxPrice
		}
	}
	payload, _ := json.Marshal(criteria)
	sum := sha1.Sum(payload)
	return "guitars:list:" + hex.EncodeToString(sum[:])
}

// GetList returns a cached listing when present.
func (s *CatalogCache) GetList(ctx context.Context, filter models.GuitarFilter) ([]models.Guitar, bool) {
	if !s.Enabled() {
		return nil, false
	}
	start := time.Now()
	var guitars []models.Guitar
	err := s.repo.Get(ctx, ListKey(filter), &guitars)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("catalog cache get failed", zap.Error(err))
		}
		return nil, false
	}
	return guitars, true
}

// SetList stores a listing.
func (s *CatalogCache) SetList(ctx context.Context, filter models.GuitarFilter, guitars []models.Guitar) {
	if !s.Enabled() {
		return
	}
	start := time.Now()
	err := s.repo.Set(ctx, ListKey(filter), guitars, s.ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("catalog cache set failed", zap.Error(err))
	}
}

// Invalidate drops every cached listing.
func (s *CatalogCache) Invalidate(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	if err := s.repo.DeleteByPattern(ctx, guitarListPattern); err != nil {
		s.logger.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}
