package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"

	appErrors "github.com/bondst/guitarvault/pkg/errors"
)

// bindGuitarPayload decodes the JSON body into dest. Values of the wrong type are reported
// as field errors; anything else that cannot be decoded is a plain invalid payload.
func bindGuitarPayload(c *gin.Context, dest interface{}) error {
	err := c.ShouldBindBodyWith(dest, binding.JSON)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fieldPayloadError(typeErr.Field, "must be "+describeType(typeErr.Type))
	}
	if body, ok := c.Get(gin.BodyBytesKey); ok {
		if raw, ok := body.([]byte); ok && !validPrice(raw) {
			return fieldPayloadError("price", "must be a number")
		}
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}

// validPrice reports false only when the body is well formed but its price is not a decimal.
func validPrice(body []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return true
	}
	raw, ok := fields["price"]
	if !ok {
		return true
	}
	var price decimal.Decimal
	return json.Unmarshal(raw, &price) == nil
}

func fieldPayloadError(field, message string) error {
	return appErrors.Validation("invalid guitar payload", []appErrors.FieldError{{Field: field, Message: message}})
}

func describeType(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Bool:
		return "a boolean"
	default:
		return "a valid value"
	}
}
