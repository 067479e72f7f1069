package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bondst/guitarvault/internal/dto"
	"github.com/bondst/guitarvault/internal/models"
	appErrors "github.com/bondst/guitarvault/pkg/errors"
)

// CatalogOwner owns images tagged on behalf of anonymous callers.
const CatalogOwner = "catalog"

var errGuitarNotFound = appErrors.Clone(appErrors.ErrNotFound, "guitar not found")

// GuitarRepository is the persistence surface the catalog needs.
type GuitarRepository interface {
	List(ctx context.Context, filter models.GuitarFilter) ([]models.Guitar, error)
	FindByID(ctx context.Context, id string) (*models.Guitar, error)
	Create(ctx context.Context, guitar *models.Guitar) error
	Update(ctx context.Context, id string, patch models.GuitarPatch) (*models.Guitar, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ImageTagger normalizes image references and marks uploaded objects viewable.
type ImageTagger interface {
	TagImage(ctx context.Context, raw, owner string) (string, error)
}

// GuitarService implements catalog listing and CRUD.
type GuitarService struct {
	repo      GuitarRepository
	validator *GuitarValidator
	images    ImageTagger
	cache     *CatalogCache
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewGuitarService constructs the catalog service. images and cache may be nil.
func NewGuitarService(repo GuitarRepository, validator *GuitarValidator, images ImageTagger, cache *CatalogCache, metrics *MetricsService, logger *zap.Logger) *GuitarService {
	if validator == nil {
		validator = NewGuitarValidator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuitarService{repo: repo, validator: validator, images: images, cache: cache, metrics: metrics, logger: logger}
}

// List runs a search when filter.Search is set and a structured filter otherwise.
func (s *GuitarService) List(ctx context.Context, filter models.GuitarFilter) ([]models.Guitar, error) {
	if cached, ok := s.cache.GetList(ctx, filter); ok {
		return cached, nil
	}
	guitars, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list guitars failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch guitars")
	}
	s.cache.SetList(ctx, filter, guitars)
	return guitars, nil
}

// Search returns guitars whose brand, model, color or description contains text.
func (s *GuitarService) Search(ctx context.Context, text string) ([]models.Guitar, error) {
	return s.List(ctx, models.GuitarFilter{Search: text})
}

// Filter returns guitars matching every supplied criterion.
func (s *GuitarService) Filter(ctx context.Context, criteria models.GuitarFilter) ([]models.Guitar, error) {
	criteria.Search = ""
	return s.List(ctx, criteria)
}

// Get returns a guitar by id.
func (s *GuitarService) Get(ctx context.Context, id string) (*models.Guitar, error) {
	guitar, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, "fetch guitar")
	}
	return guitar, nil
}

// Create validates req, tags its images and inserts the record.
func (s *GuitarService) Create(ctx context.Context, req dto.CreateGuitarRequest, callerID string) (*models.Guitar, error) {
	guitar, err := s.validator.ValidateCreate(req)
	if err != nil {
		return nil, err
	}

	owner := imageOwner(callerID)
	if guitar.ImageURL, err = s.tagOptional(ctx, guitar.ImageURL, owner, "imageUrl"); err != nil {
		return nil, err
	}
	if err := s.tagAll(ctx, guitar.ImageURLs, owner); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, guitar); err != nil {
		s.logger.Error("create guitar failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create guitar")
	}
	s.cache.Invalidate(ctx)
	s.metrics.RecordCatalogWrite("create")
	return guitar, nil
}

// Update applies the supplied subset of fields to an existing guitar.
func (s *GuitarService) Update(ctx context.Context, id string, req dto.UpdateGuitarRequest, callerID string) (*models.Guitar, error) {
	patch, err := s.validator.ValidateUpdate(req)
	if err != nil {
		return nil, err
	}

	if patch.ImageURL != nil || patch.ImageURLs != nil {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		owner := imageOwner(callerID)
		if patch.ImageURL != nil && *patch.ImageURL != "" {
			if patch.ImageURL, err = s.tagOptional(ctx, patch.ImageURL, owner, "imageUrl"); err != nil {
				return nil, err
			}
		}
		if err := s.tagAll(ctx, patch.ImageURLs, owner); err != nil {
			return nil, err
		}
	}

	guitar, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.mapLookupError(err, "update guitar")
	}
	if !patch.Empty() {
		s.cache.Invalidate(ctx)
		s.metrics.RecordCatalogWrite("update")
	}
	return guitar, nil
}

// Delete permanently removes a guitar.
func (s *GuitarService) Delete(ctx context.Context, id string) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete guitar failed", zap.String("id", id), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete guitar")
	}
	if !removed {
		return errGuitarNotFound
	}
	s.cache.Invalidate(ctx)
	s.metrics.RecordCatalogWrite("delete")
	return nil
}

func (s *GuitarService) tagOptional(ctx context.Context, ref *string, owner, field string) (*string, error) {
	if ref == nil || s.images == nil {
		return ref, nil
	}
	normalized, err := s.tagImage(ctx, *ref, owner, field)
	if err != nil {
		return nil, err
	}
	return &normalized, nil
}

func (s *GuitarService) tagAll(ctx context.Context, refs []string, owner string) error {
	if s.images == nil {
		return nil
	}
	for i, ref := range refs {
		normalized, err := s.tagImage(ctx, ref, owner, fmt.Sprintf("imageUrls[%d]", i))
		if err != nil {
			return err
		}
		refs[i] = normalized
	}
	return nil
}

func (s *GuitarService) tagImage(ctx context.Context, ref, owner, field string) (string, error) {
	normalized, err := s.images.TagImage(ctx, ref, owner)
	if err == nil {
		return normalized, nil
	}
	if errors.Is(err, appErrors.ErrNotFound) {
		return "", appErrors.Validation("invalid guitar payload", []appErrors.FieldError{{Field: field, Message: "references an unknown object"}})
	}
	s.logger.Error("tag guitar image failed", zap.String("field", field), zap.Error(err))
	return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store image reference")
}

func (s *GuitarService) mapLookupError(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errGuitarNotFound
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	s.logger.Error(op+" failed", zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to "+op)
}

func imageOwner(callerID string) string {
	if callerID == "" {
		return CatalogOwner
	}
	return callerID
}
