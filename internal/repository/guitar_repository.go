package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/bondst/guitarvault/internal/models"
)

// GuitarRepository handles persistence for catalog listings.
type GuitarRepository struct {
	db *sqlx.DB
}

// NewGuitarRepository creates a new repository instance.
func NewGuitarRepository(db *sqlx.DB) *GuitarRepository {
	return &GuitarRepository{db: db}
}

// List returns guitars matching filter in insertion order.
func (r *GuitarRepository) List(ctx context.Context, filter models.GuitarFilter) ([]models.Guitar, error) {
	query, args := buildGuitarQuery(filter)
	guitars := make([]models.Guitar, 0)
	if err := r.db.SelectContext(ctx, &guitars, query, args...); err != nil {
		return nil, fmt.Errorf("list guitars: %w", err)
	}
	return guitars, nil
}

// FindByID returns a guitar by id or sql.ErrNoRows.
func (r *GuitarRepository) FindByID(ctx context.Context, id string) (*models.Guitar, error) {
	query := "SELECT " + guitarColumns + " FROM guitars WHERE id = $1"
	var guitar models.Guitar
	if err := r.db.GetContext(ctx, &guitar, query, id); err != nil {
		return nil, err
	}
	return &guitar, nil
}

// Create persists a new guitar, assigning its id.
func (r *GuitarRepository) Create(ctx context.Context, guitar *models.Guitar) error {
	guitar.ID = uuid.NewString()
	now := time.Now().UTC()
	guitar.CreatedAt = now
	guitar.UpdatedAt = now
	if guitar.Status == "" {
		guitar.Status = models.StatusAvailable
	}
	guitar.ImageURLs = stringArray(guitar.ImageURLs)

	const query = `INSERT INTO guitars (id, brand, model, type, year, condition, color, price, pickup_location, description, status, image_url, image_urls, created_at, updated_at) VALUES (:id, :brand, :model, :type, :year, :condition, :color, :price, :pickup_location, :description, :status, :image_url, :image_urls, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, guitar); err != nil {
		return fmt.Errorf("create guitar: %w", err)
	}
	return nil
}

// Update applies patch and returns the stored record, or sql.ErrNoRows when id is unknown.
func (r *GuitarRepository) Update(ctx context.Context, id string, patch models.GuitarPatch) (*models.Guitar, error) {
	query, args, ok := buildGuitarUpdate(id, patch, time.Now().UTC())
	if !ok {
		return r.FindByID(ctx, id)
	}
	var guitar models.Guitar
	if err := r.db.GetContext(ctx, &guitar, query, args...); err != nil {
		return nil, err
	}
	return &guitar, nil
}

// Delete removes a guitar permanently. It reports whether a row was removed.
func (r *GuitarRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM guitars WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete guitar: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete guitar rows affected: %w", err)
	}
	return affected > 0, nil
}

// Ping checks database connectivity for readiness probes.
func (r *GuitarRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func stringArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}
