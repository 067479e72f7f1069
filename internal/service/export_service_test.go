package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bondst/guitarvault/internal/models"
	appErrors "github.com/bondst/guitarvault/pkg/errors"
)

type listerStub struct {
	guitars []models.Guitar
	err     error
	filter  models.GuitarFilter
}

func (l *listerStub) List(ctx context.Context, filter models.GuitarFilter) ([]models.Guitar, error) {
	l.filter = filter
	return l.guitars, l.err
}

func newExportServiceForTest(lister guitarLister) *ExportService {
	svc := NewExportService(lister, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestExportServiceCSV(t *testing.T) {
	lister := &listerStub{guitars: []models.Guitar{
		{Brand: "Fender", Model: "Precision", Type: models.GuitarTypeBass, Year: 2019, Condition: models.ConditionGood, Color: "Sunburst", Price: decimal.NewFromInt(450), Status: models.StatusAvailable, PickupLocation: "Austin"},
	}}
	svc := newExportServiceForTest(lister)
	bass := "bass"

	result, err := svc.Export(context.Background(), models.GuitarFilter{Type: &bass}, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "guitars_20240301_120000.csv", result.Filename)
	assert.Contains(t, result.ContentType, "text/csv")
	assert.Equal(t, &bass, lister.filter.Type)

	records, err := csv.NewReader(bytes.NewReader(result.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Brand", records[0][0])
	assert.Equal(t, []string{"Fender", "Precision", "bass", "2019", "good", "Sunburst", "450.00", "available", "Austin"}, records[1])
}

func TestExportServicePDF(t *testing.T) {
	svc := newExportServiceForTest(&listerStub{})
	result, err := svc.Export(context.Background(), models.GuitarFilter{}, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Data, []byte("%PDF")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := newExportServiceForTest(&listerStub{})
	_, err := svc.Export(context.Background(), models.GuitarFilter{}, "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportServicePropagatesListError(t *testing.T) {
	boom := appErrors.Wrap(errors.New("db down"), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch guitars")
	svc := newExportServiceForTest(&listerStub{err: boom})
	_, err := svc.Export(context.Background(), models.GuitarFilter{}, "csv")
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
