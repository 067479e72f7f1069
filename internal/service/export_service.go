package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bondst/guitarvault/internal/models"
	appErrors "github.com/bondst/guitarvault/pkg/errors"
	"github.com/bondst/guitarvault/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type guitarLister interface {
	List(ctx context.Context, filter models.GuitarFilter) ([]models.Guitar, error)
}

type renderer interface {
	ContentType() string
	Extension() string
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered inventory sheet.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the filtered catalog as a downloadable sheet.
type ExportService struct {
	guitars   guitarLister
	renderers map[string]renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with the CSV and PDF renderers.
func NewExportService(guitars guitarLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		guitars: guitars,
		renderers: map[string]renderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

var inventoryColumns = []export.Column{
	{Key: "brand", Title: "Brand", Width: 1.2},
	{Key: "model", Title: "Model", Width: 1.6},
	{Key: "type", Title: "Type", Width: 0.9},
	{Key: "year", Title: "Year", Width: 0.6},
	{Key: "condition", Title: "Condition", Width: 0.9},
	{Key: "color", Title: "Color", Width: 1},
	{Key: "price", Title: "Price", Width: 0.8},
	{Key: "status", Title: "Status", Width: 0.8},
	{Key: "pickupLocation", Title: "Pickup Location", Width: 1.4},
}

// Export lists guitars matching filter and renders them in format.
func (s *ExportService) Export(ctx context.Context, filter models.GuitarFilter, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Validation("invalid export request", []appErrors.FieldError{{Field: "format", Message: "must be one of: csv, pdf"}})
	}

	guitars, err := s.guitars.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Columns: inventoryColumns, Rows: make([]map[string]string, 0, len(guitars))}
	for _, g := range guitars {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"brand":          g.Brand,
			"model":          g.Model,
			"type":           string(g.Type),
			"year":           strconv.Itoa(g.Year),
			"condition":      string(g.Condition),
			"color":          g.Color,
			"price":          g.Price.StringFixed(2),
			"status":         string(g.Status),
			"pickupLocation": g.PickupLocation,
		})
	}

	payload, err := r.Render(dataset, "Guitar Inventory")
	if err != nil {
		s.logger.Error("render inventory export failed", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("guitars_%s.%s", s.now().UTC().Format("20060102_150405"), r.Extension()),
		ContentType: r.ContentType(),
		Data:        payload,
	}, nil
}
