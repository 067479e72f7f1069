package dto

import "github.com/shopspring/decimal"

// CreateGuitarRequest captures fields for listing a new guitar.
// Price accepts a JSON number or a numeric string.
type CreateGuitarRequest struct {
	Brand          string           `json:"brand" validate:"required"`
	Model          string           `json:"model" validate:"required"`
	Type           string           `json:"type" validate:"required,oneof=electric acoustic classical bass"`
	Year           *int             `json:"year" validate:"required,gte=1900,max_model_year"`
	Condition      string           `json:"condition" validate:"required,oneof=new excellent good fair"`
	Color          string           `json:"color" validate:"required"`
	Price          *decimal.Decimal `json:"price" validate:"required,gte=0,lt=100000000"`
	PickupLocation string           `json:"pickupLocation" validate:"required"`
	Description    *string          `json:"description"`
	Status         *string          `json:"status" validate:"omitempty,oneof=available reserved sold"`
	ImageURL       *string          `json:"imageUrl"`
	ImageURLs      []string         `json:"imageUrls" validate:"omitempty,dive,required"`
}

// UpdateGuitarRequest modifies any subset of guitar fields. Absent fields are untouched;
// an empty description or imageUrl clears the stored value.
type UpdateGuitarRequest struct {
	Brand          *string          `json:"brand" validate:"omitempty,min=1"`
	Model          *string          `json:"model" validate:"omitempty,min=1"`
	Type           *string          `json:"type" validate:"omitempty,oneof=electric acoustic classical bass"`
	Year           *int             `json:"year" validate:"omitempty,gte=1900,max_model_year"`
	Condition      *string          `json:"condition" validate:"omitempty,oneof=new excellent good fair"`
	Color          *string          `json:"color" validate:"omitempty,min=1"`
	Price          *decimal.Decimal `json:"price" validate:"omitempty,gte=0,lt=100000000"`
	PickupLocation *string          `json:"pickupLocation" validate:"omitempty,min=1"`
	Description    *string          `json:"description"`
	Status         *string          `json:"status" validate:"omitempty,oneof=available reserved sold"`
	ImageURL       *string          `json:"imageUrl"`
	ImageURLs      []string         `json:"imageUrls" validate:"omitempty,dive,required"`
}
