package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bondst/guitarvault/internal/dto"
	"github.com/bondst/guitarvault/internal/middleware"
	"github.com/bondst/guitarvault/internal/models"
	"github.com/bondst/guitarvault/internal/service"
	appErrors "github.com/bondst/guitarvault/pkg/errors"
	"github.com/bondst/guitarvault/pkg/response"
)

type guitarServiceMock struct {
	listResp   []models.Guitar
	listErr    error
	getResp    *models.Guitar
	getErr     error
	createResp *models.Guitar
	createErr  error
	updateErr  error
	deleteErr  error
	lastFilter models.GuitarFilter
	lastCaller string
	lastCreate dto.CreateGuitarRequest
	listCalled bool
}

func (m *guitarServiceMock) List(ctx context.Context, filter models.GuitarFilter) ([]models.Guitar, error) {
	m.listCalled = true
	m.lastFilter = filter
	return m.listResp, m.listErr
}

func (m *guitarServiceMock) Get(ctx context.Context, id string) (*models.Guitar, error) {
	return m.getResp, m.getErr
}

func (m *guitarServiceMock) Create(ctx context.Context, req dto.CreateGuitarRequest, callerID string) (*models.Guitar, error) {
	m.lastCreate = req
	m.lastCaller = callerID
	return m.createResp, m.createErr
}

func (m *guitarServiceMock) Update(ctx context.Context, id string, req dto.UpdateGuitarRequest, callerID string) (*models.Guitar, error) {
	m.lastCaller = callerID
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &models.Guitar{ID: id}, nil
}

func (m *guitarServiceMock) Delete(ctx context.Context, id string) error {
	return m.deleteErr
}

type exporterMock struct {
	result *service.ExportResult
	err    error
	format string
}

func (m *exporterMock) Export(ctx context.Context, filter models.GuitarFilter, format string) (*service.ExportResult, error) {
	m.format = format
	return m.result, m.err
}

func newGuitarContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *appErrors.Error {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error
}

func TestGuitarHandlerListFilters(t *testing.T) {
	mockSvc := &guitarServiceMock{listResp: []models.Guitar{{ID: "b1", Price: decimal.NewFromInt(450)}}}
	handler := NewGuitarHandler(mockSvc, nil)

	c, w := newGuitarContext(http.MethodGet, "/api/guitars?type=bass&maxPrice=500&brand=&status=", "")
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastFilter.Type)
	assert.Equal(t, "bass", *mockSvc.lastFilter.Type)
	require.NotNil(t, mockSvc.lastFilter.MaxPrice)
	assert.Equal(t, "500", mockSvc.lastFilter.MaxPrice.String())
	assert.Nil(t, mockSvc.lastFilter.Brand)
	assert.Nil(t, mockSvc.lastFilter.Status)

	var guitars []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &guitars))
	require.Len(t, guitars, 1)
	assert.Equal(t, "450", guitars[0]["price"])
}

func TestGuitarHandlerListRejectsNonNumericBounds(t *testing.T) {
	mockSvc := &guitarServiceMock{}
	handler := NewGuitarHandler(mockSvc, nil)

	c, w := newGuitarContext(http.MethodGet, "/api/guitars?minPrice=cheap", "")
	handler.List(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.listCalled)
	appErr := decodeError(t, w)
	require.Len(t, appErr.Details, 1)
	assert.Equal(t, "minPrice", appErr.Details[0].Field)
}

func TestGuitarHandlerListHidesStoreErrors(t *testing.T) {
	mockSvc := &guitarServiceMock{listErr: appErrors.Wrap(assert.AnError, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch guitars")}
	handler := NewGuitarHandler(mockSvc, nil)

	c, w := newGuitarContext(http.MethodGet, "/api/guitars", "")
	handler.List(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestGuitarHandlerGetNotFound(t *testing.T) {
	handler := NewGuitarHandler(&guitarServiceMock{getErr: appErrors.ErrNotFound}, nil)

	c, w := newGuitarContext(http.MethodGet, "/api/guitars/nope", "")
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	handler.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, appErrors.ErrNotFound.Code, decodeError(t, w).Code)
}

func TestGuitarHandlerCreate(t *testing.T) {
	mockSvc := &guitarServiceMock{createResp: &models.Guitar{ID: "g1", Status: models.StatusAvailable}}
	handler := NewGuitarHandler(mockSvc, nil)

	c, w := newGuitarContext(http.MethodPost, "/api/guitars", `{"brand":"Fender","model":"Stratocaster","type":"electric","year":2020,"condition":"excellent","color":"Sunburst","price":1200,"pickupLocation":"Pick up"}`)
	c.Set(middleware.ContextUserKey, "user-1")
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", mockSvc.lastCaller)
	assert.Equal(t, "Fender", mockSvc.lastCreate.Brand)
	require.NotNil(t, mockSvc.lastCreate.Price)
	assert.Equal(t, "1200", mockSvc.lastCreate.Price.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "g1", body["id"])
	assert.Equal(t, "available", body["status"])
}

func TestGuitarHandlerCreateMalformedBody(t *testing.T) {
	handler := NewGuitarHandler(&guitarServiceMock{}, nil)

	c, w := newGuitarContext(http.MethodPost, "/api/guitars", `{"brand":`)
	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGuitarHandlerCreateNamesMistypedFields(t *testing.T) {
	cases := map[string]struct {
		body  string
		field string
	}{
		"price text":  {`{"brand":"Fender","price":"cheap"}`, "price"},
		"price bool":  {`{"brand":"Fender","price":true}`, "price"},
		"year string": {`{"brand":"Fender","year":"2018"}`, "year"},
		"brand array": {`{"brand":["Fender"]}`, "brand"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			mockSvc := &guitarServiceMock{}
			handler := NewGuitarHandler(mockSvc, nil)

			c, w := newGuitarContext(http.MethodPost, "/api/guitars", tc.body)
			handler.Create(c)

			require.Equal(t, http.StatusBadRequest, w.Code)
			appErr := decodeError(t, w)
			require.Len(t, appErr.Details, 1)
			assert.Equal(t, tc.field, appErr.Details[0].Field)
			assert.NotEmpty(t, appErr.Details[0].Message)
			assert.Empty(t, mockSvc.lastCreate.Brand)
		})
	}
}

func TestGuitarHandlerUpdateNamesMistypedPrice(t *testing.T) {
	handler := NewGuitarHandler(&guitarServiceMock{}, nil)

	c, w := newGuitarContext(http.MethodPut, "/api/guitars/g1", `{"price":"abc"}`)
	c.Params = gin.Params{{Key: "id", Value: "g1"}}
	handler.Update(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	appErr := decodeError(t, w)
	require.Len(t, appErr.Details, 1)
	assert.Equal(t, "price", appErr.Details[0].Field)
	assert.Equal(t, "must be a number", appErr.Details[0].Message)
}

func TestGuitarHandlerUpdateValidationError(t *testing.T) {
	mockSvc := &guitarServiceMock{updateErr: appErrors.Validation("invalid guitar payload", []appErrors.FieldError{{Field: "price", Message: "must be greater than or equal to 0"}})}
	handler := NewGuitarHandler(mockSvc, nil)

	c, w := newGuitarContext(http.MethodPut, "/api/guitars/g1", `{"price":-5}`)
	c.Params = gin.Params{{Key: "id", Value: "g1"}}
	handler.Update(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	appErr := decodeError(t, w)
	assert.Equal(t, "invalid guitar payload", appErr.Message)
	assert.Equal(t, "price", appErr.Details[0].Field)
}

func TestGuitarHandlerDelete(t *testing.T) {
	handler := NewGuitarHandler(&guitarServiceMock{}, nil)
	c, w := newGuitarContext(http.MethodDelete, "/api/guitars/g1", "")
	c.Params = gin.Params{{Key: "id", Value: "g1"}}
	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)

	handler = NewGuitarHandler(&guitarServiceMock{deleteErr: appErrors.ErrNotFound}, nil)
	c, w = newGuitarContext(http.MethodDelete, "/api/guitars/g1", "")
	handler.Delete(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGuitarHandlerExport(t *testing.T) {
	exporter := &exporterMock{result: &service.ExportResult{Filename: "guitars.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("Brand\n")}}
	handler := NewGuitarHandler(&guitarServiceMock{}, exporter)

	c, w := newGuitarContext(http.MethodGet, "/api/guitars/export?format=csv", "")
	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", exporter.format)
	assert.Equal(t, `attachment; filename="guitars.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Brand\n", w.Body.String())
}
