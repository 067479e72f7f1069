package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// GuitarType enumerates instrument families.
type GuitarType string

const (
	GuitarTypeElectric  GuitarType = "electric"
	GuitarTypeAcoustic  GuitarType = "acoustic"
	GuitarTypeClassical GuitarType = "classical"
	GuitarTypeBass      GuitarType = "bass"
)

// GuitarCondition enumerates listing conditions.
type GuitarCondition string

const (
	ConditionNew       GuitarCondition = "new"
	ConditionExcellent GuitarCondition = "excellent"
	ConditionGood      GuitarCondition = "good"
	ConditionFair      GuitarCondition = "fair"
)

// GuitarStatus enumerates sale states.
type GuitarStatus string

const (
	StatusAvailable GuitarStatus = "available"
	StatusReserved  GuitarStatus = "reserved"
	StatusSold      GuitarStatus = "sold"
)

// MinGuitarYear is the oldest accepted model year.
const MinGuitarYear = 1900

// Guitar is a catalog listing.
type Guitar struct {
	ID             string          `db:"id" json:"id"`
	Brand          string          `db:"brand" json:"brand"`
	Model          string          `db:"model" json:"model"`
	Type           GuitarType      `db:"type" json:"type"`
	Year           int             `db:"year" json:"year"`
	Condition      GuitarCondition `db:"condition" json:"condition"`
	Color          string          `db:"color" json:"color"`
	Price          decimal.Decimal `db:"price" json:"price"`
	PickupLocation string          `db:"pickup_location" json:"pickupLocation"`
	Description    *string         `db:"description" json:"description"`
	Status         GuitarStatus    `db:"status" json:"status"`
	ImageURL       *string         `db:"image_url" json:"imageUrl"`
	ImageURLs      pq.StringArray  `db:"image_urls" json:"imageUrls"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`
}

// GuitarPatch holds the validated subset of fields changed by a partial update.
// Nil fields are left untouched.
type GuitarPatch struct {
	Brand          *string
	Model          *string
	Type           *GuitarType
	Year           *int
	Condition      *GuitarCondition
	Color          *string
	Price          *decimal.Decimal
	PickupLocation *string
	Description    *string
	Status         *GuitarStatus
	ImageURL       *string
	ImageURLs      []string
}

// Empty reports whether the patch changes nothing.
func (p GuitarPatch) Empty() bool {
	return p.Brand == nil && p.Model == nil && p.Type == nil && p.Year == nil &&
		p.Condition == nil && p.Color == nil && p.Price == nil && p.PickupLocation == nil &&
		p.Description == nil && p.Status == nil && p.ImageURL == nil && p.ImageURLs == nil
}

// GuitarFilter captures listing criteria. A non-empty Search takes precedence over
// every structured field. Nil means "no constraint".
type GuitarFilter struct {
	Search   string
	Type     *string
	Brand    *string
	Status   *string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Structured reports whether any structured criterion is set.
func (f GuitarFilter) Structured() bool {
	return f.Type != nil || f.Brand != nil || f.Status != nil || f.MinPrice != nil || f.MaxPrice != nil
}
