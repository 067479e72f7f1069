package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/bondst/guitarvault/internal/dto"
	"github.com/bondst/guitarvault/internal/models"
	"github.com/bondst/guitarvault/internal/service"
	appErrors "github.com/bondst/guitarvault/pkg/errors"
	"github.com/bondst/guitarvault/pkg/response"
)

type guitarService interface {
	List(ctx context.Context, filter models.GuitarFilter) ([]models.Guitar, error)
	Get(ctx context.Context, id string) (*models.Guitar, error)
	Create(ctx context.Context, req dto.CreateGuitarRequest, callerID string) (*models.Guitar, error)
	Update(ctx context.Context, id string, req dto.UpdateGuitarRequest, callerID string) (*models.Guitar, error)
	Delete(ctx context.Context, id string) error
}

type inventoryExporter interface {
	Export(ctx context.Context, filter models.GuitarFilter, format string) (*service.ExportResult, error)
}

// GuitarHandler exposes the catalog endpoints.
type GuitarHandler struct {
	service  guitarService
	exporter inventoryExporter
}

// NewGuitarHandler builds a new handler.
func NewGuitarHandler(service guitarService, exporter inventoryExporter) *GuitarHandler {
	return &GuitarHandler{service: service, exporter: exporter}
}

// List godoc
// @Summary List, search or filter guitars
// @Tags Guitars
// @Produce json
// @Param search query string false "Case-insensitive text over brand, model, color and description; overrides the other filters"
// @Param type query string false "electric, acoustic, classical or bass"
// @Param brand query string false "Exact brand"
// @Param status query string false "available, reserved or sold"
// @Param minPrice query number false "Lowest price"
// @Param maxPrice query number false "Highest price"
// @Success 200 {array} models.Guitar
// @Failure 400 {object} response.ErrorBody
// @Router /api/guitars [get]
func (h *GuitarHandler) List(c *gin.Context) {
	filter, err := parseGuitarFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	guitars, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, guitars)
}

// Get godoc
// @Summary Get guitar by id
// @Tags Guitars
// @Produce json
// @Param id path string true "Guitar ID"
// @Success 200 {object} models.Guitar
// @Failure 404 {object} response.ErrorBody
// @Router /api/guitars/{id} [get]
func (h *GuitarHandler) Get(c *gin.Context) {
	guitar, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, guitar)
}

// Create godoc
// @Summary Create guitar
// @Tags Guitars
// @Accept json
// @Produce json
// @Param payload body dto.CreateGuitarRequest true "Guitar payload"
// @Success 201 {object} models.Guitar
// @Failure 400 {object} response.ErrorBody
// @Router /api/guitars [post]
func (h *GuitarHandler) Create(c *gin.Context) {
	var req dto.CreateGuitarRequest
	if err := bindGuitarPayload(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	guitar, err := h.service.Create(c.Request.Context(), req, callerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, guitar)
}

// Update godoc
// @Summary Partially update guitar
// @Tags Guitars
// @Accept json
// @Produce json
// @Param id path string true "Guitar ID"
// @Param payload body dto.UpdateGuitarRequest true "Fields to change"
// @Success 200 {object} models.Guitar
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /api/guitars/{id} [put]
func (h *GuitarHandler) Update(c *gin.Context) {
	var req dto.UpdateGuitarRequest
	if err := bindGuitarPayload(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	guitar, err := h.service.Update(c.Request.Context(), c.Param("id"), req, callerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, guitar)
}

// Delete godoc
// @Summary Delete guitar
// @Tags Guitars
// @Param id path string true "Guitar ID"
// @Success 204
// @Failure 404 {object} response.ErrorBody
// @Router /api/guitars/{id} [delete]
func (h *GuitarHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Download the filtered inventory
// @Tags Guitars
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Router /api/guitars/export [get]
func (h *GuitarHandler) Export(c *gin.Context) {
	filter, err := parseGuitarFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exporter.Export(c.Request.Context(), filter, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func parseGuitarFilter(c *gin.Context) (models.GuitarFilter, error) {
	filter := models.GuitarFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Type:   optionalQuery(c, "type"),
		Brand:  optionalQuery(c, "brand"),
		Status: optionalQuery(c, "status"),
	}
	var details []appErrors.FieldError
	for _, bound := range []struct {
		name string
		dest **decimal.Decimal
	}{{"minPrice", &filter.MinPrice}, {"maxPrice", &filter.MaxPrice}} {
		raw := optionalQuery(c, bound.name)
		if raw == nil {
			continue
		}
		value, err := decimal.NewFromString(*raw)
		if err != nil {
			details = append(details, appErrors.FieldError{Field: bound.name, Message: "must be a number"})
			continue
		}
		*bound.dest = &value
	}
	if len(details) > 0 {
		return models.GuitarFilter{}, appErrors.Validation("invalid filter", details)
	}
	return filter, nil
}

func optionalQuery(c *gin.Context, key string) *string {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}
	return &value
}
