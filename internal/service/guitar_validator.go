package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/bondst/guitarvault/internal/dto"
	"github.com/bondst/guitarvault/internal/models"
	appErrors "github.com/bondst/guitarvault/pkg/errors"
)

// GuitarValidator turns raw payloads into validated records. It never touches storage.
type GuitarValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewGuitarValidator registers the guitar rules on validate (a fresh validator when nil).
func NewGuitarValidator(validate *validator.Validate) *GuitarValidator {
	if validate == nil {
		validate = validator.New()
	}
	v := &GuitarValidator{validate: validate, now: time.Now}

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Round(2).Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	_ = validate.RegisterValidation("max_model_year", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(v.maxYear())
	})

	return v
}

func (v *GuitarValidator) maxYear() int {
	return v.now().Year() + 1
}

// ValidateCreate returns the record to insert, with status defaulted and image
// references left as supplied.
func (v *GuitarValidator) ValidateCreate(req dto.CreateGuitarRequest) (*models.Guitar, error) {
	req.Brand = strings.TrimSpace(req.Brand)
	req.Model = strings.TrimSpace(req.Model)
	req.Color = strings.TrimSpace(req.Color)
	req.PickupLocation = strings.TrimSpace(req.PickupLocation)
	if err := v.validate.Struct(req); err != nil {
		return nil, v.translate(err)
	}

	guitar := &models.Guitar{
		Brand:          req.Brand,
		Model:          req.Model,
		Type:           models.GuitarType(req.Type),
		Year:           *req.Year,
		Condition:      models.GuitarCondition(req.Condition),
		Color:          req.Color,
		Price:          req.Price.Round(2),
		PickupLocation: req.PickupLocation,
		Description:    emptyToNil(req.Description),
		Status:         models.StatusAvailable,
		ImageURL:       emptyToNil(req.ImageURL),
		ImageURLs:      append([]string{}, req.ImageURLs...),
	}
	if req.Status != nil {
		guitar.Status = models.GuitarStatus(*req.Status)
	}
	return guitar, nil
}

// ValidateUpdate returns the patch to apply.
func (v *GuitarValidator) ValidateUpdate(req dto.UpdateGuitarRequest) (models.GuitarPatch, error) {
	req.Brand = trimmed(req.Brand)
	req.Model = trimmed(req.Model)
	req.Color = trimmed(req.Color)
	req.PickupLocation = trimmed(req.PickupLocation)
	if err := v.validate.Struct(req); err != nil {
		return models.GuitarPatch{}, v.translate(err)
	}

	patch := models.GuitarPatch{
		Brand:          req.Brand,
		Model:          req.Model,
		Year:           req.Year,
		Color:          req.Color,
		PickupLocation: req.PickupLocation,
		Description:    req.Description,
		ImageURL:       req.ImageURL,
	}
	if req.Type != nil {
		t := models.GuitarType(*req.Type)
		patch.Type = &t
	}
	if req.Condition != nil {
		c := models.GuitarCondition(*req.Condition)
		patch.Condition = &c
	}
	if req.Status != nil {
		s := models.GuitarStatus(*req.Status)
		patch.Status = &s
	}
	if req.Price != nil {
		p := req.Price.Round(2)
		patch.Price = &p
	}
	if req.ImageURLs != nil {
		patch.ImageURLs = append([]string{}, req.ImageURLs...)
	}
	return patch, nil
}

func (v *GuitarValidator) translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid guitar payload")
	}
	details := make([]appErrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, appErrors.FieldError{Field: fieldPath(fe), Message: v.message(fe)})
	}
	return appErrors.Validation("invalid guitar payload", details)
}

// fieldPath drops the struct name prefix from the namespace ("CreateGuitarRequest.imageUrls[0]").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func (v *GuitarValidator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must not be empty"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	case "max_model_year":
		return fmt.Sprintf("must not be later than %d", v.maxYear())
	default:
		return "is invalid"
	}
}

func emptyToNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmedValue := strings.TrimSpace(*value)
	if trimmedValue == "" {
		return nil
	}
	return &trimmedValue
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	out := strings.TrimSpace(*value)
	return &out
}
