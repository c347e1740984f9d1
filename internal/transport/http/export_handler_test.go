package http

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "chartlens/internal/errors"
	"chartlens/internal/exporter"
	"chartlens/internal/services"
	"chartlens/internal/shared/testutil"
	"chartlens/pkg/contracts/domain"
)

func fixtureRouter(t *testing.T) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return newTestRouter(t, services.NewDashboardService(testutil.ChartDataset(), logger))
}

func csvRecords(t *testing.T, body []byte) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}), "csv export starts with a BOM")
	records, err := csv.NewReader(bytes.NewReader(body[3:])).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportHandler_SummaryCSV(t *testing.T) {
	rec := doGet(t, fixtureRouter(t), "/api/export/concentration.csv?explicit=clean")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="chartlens-concentration.csv"`, rec.Header().Get("Content-Disposition"))

	records := csvRecords(t, rec.Body.Bytes())
	require.Len(t, records, 2)
	assert.Equal(t, []string{"rank", "artist", "slots", "credit", "share"}, records[0])
	assert.Equal(t, "Dua Lipa", records[1][1])
	assert.Equal(t, "2", records[1][2])
}

func TestExportHandler_TracksCSVStreamsEveryRow(t *testing.T) {
	rec := doGet(t, fixtureRouter(t), "/api/export/tracks.csv")

	require.Equal(t, http.StatusOK, rec.Code)
	records := csvRecords(t, rec.Body.Bytes())
	require.Len(t, records, 7)
	assert.Equal(t, exporter.TrackHeaders, records[0])
	assert.Equal(t, "Houdini", records[1][2])
}

func TestExportHandler_TracksCSVPagesThroughService(t *testing.T) {
	tracks := testutil.ChartDataset().Tracks
	svc := new(MockDashboardService)
	svc.On("Tracks", mock.Anything, 0, services.MaxPageSize).
		Return(domain.TrackPage{Total: 5, Tracks: tracks[:3]}, nil)
	svc.On("Tracks", mock.Anything, 3, services.MaxPageSize).
		Return(domain.TrackPage{Total: 5, Offset: 3, Tracks: tracks[3:5]}, nil)

	rec := doGet(t, newTestRouter(t, svc), "/api/export/tracks.csv")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, csvRecords(t, rec.Body.Bytes()), 6)
	svc.AssertExpectations(t)
}

func TestExportHandler_DashboardXLSX(t *testing.T) {
	rec := doGet(t, fixtureRouter(t), "/api/export/dashboard.xlsx")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, exporter.ContentType(exporter.FormatXLSX), rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"kpis", "concentration", "collaborations", "explicit", "release", "durations", "ranks"}, f.GetSheetList())
}

func TestExportHandler_Rejections(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		expectedStatus int
	}{
		{"dashboard as csv", "/api/export/dashboard.csv", http.StatusBadRequest},
		{"unknown format", "/api/export/kpis.pdf", http.StatusBadRequest},
		{"missing extension", "/api/export/kpis", http.StatusBadRequest},
		{"unknown view", "/api/export/weather.csv", http.StatusNotFound},
		{"invalid filter", "/api/export/kpis.csv?window=year", http.StatusBadRequest},
	}

	router := fixtureRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(t, router, tt.target)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Empty(t, rec.Header().Get("Content-Disposition"))
		})
	}
}

func TestExportHandler_DatasetUnavailable(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	router := newTestRouter(t, services.NewDashboardService(nil, logger))

	rec := doGet(t, router, "/api/export/kpis.csv")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doGet(t, router, "/api/export/tracks.csv")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestExportHandler_UnexportableView(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("View", "kpis", mock.Anything).Return("not a view", nil)

	rec := doGet(t, newTestRouter(t, svc), "/api/export/kpis.csv")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	body := decodeBody(t, rec)
	assert.Equal(t, apperrors.TypeExport, body["type"])
	assert.Equal(t, string(apperrors.ErrTypeExport), body["error_type"])
	assert.Equal(t, "kpis", body["view"])
	svc.AssertExpectations(t)
}
