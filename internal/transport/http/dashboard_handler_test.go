package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "emiscli/internal/errors"
	"emiscli/internal/services"
)

// stubDashboardService records the last request and returns canned data.
type stubDashboardService struct {
	meta       services.Meta
	series     []services.SeriesPoint
	seriesErr  error
	comp       []services.CompositionSlice
	compErr    error
	lastSeries services.SeriesRequest
	lastComp   services.CompositionRequest
}

func (s *stubDashboardService) Meta(ctx context.Context) services.Meta {
	return s.meta
}

func (s *stubDashboardService) Series(ctx context.Context, req services.SeriesRequest) ([]services.SeriesPoint, error) {
	s.lastSeries = req
	return s.series, s.seriesErr
}

func (s *stubDashboardService) Composition(ctx context.Context, req services.CompositionRequest) ([]services.CompositionSlice, error) {
	s.lastComp = req
	return s.comp, s.compErr
}

func (s *stubDashboardService) ExportSeriesCSV(points []services.SeriesPoint) []byte {
	return []byte("Area,Year,Value\n")
}

func newTestServer(stub *stubDashboardService) *httptest.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewDashboardHandler(stub, logger, apierrors.NewErrorHandler(logger))

	r := chi.NewRouter()
	r.Mount("/api/dashboard", handler.Routes())
	return httptest.NewServer(r)
}

func getJSON(t *testing.T, url string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestDashboardHandler_GetMeta(t *testing.T) {
	stub := &stubDashboardService{meta: services.Meta{MinYear: 1990, MaxYear: 2022}}
	srv := newTestServer(stub)
	defer srv.Close()

	status, body := getJSON(t, srv.URL+"/api/dashboard/meta")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1990), data["min_year"])
	assert.Equal(t, float64(2022), data["max_year"])
}

func TestDashboardHandler_GetSeries(t *testing.T) {
	stub := &stubDashboardService{
		series: []services.SeriesPoint{
			{Area: "EU", Year: 2020, Value: 440},
		},
	}
	srv := newTestServer(stub)
	defer srv.Close()

	status, body := getJSON(t, srv.URL+
		"/api/dashboard/series?metric=Stocks&kind=aggregated&region=EU&from=2019&to=2020&items=Cattle,Swine&top_n=5")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	assert.Equal(t, "Stocks", stub.lastSeries.Metric)
	assert.Equal(t, "EU", stub.lastSeries.Region)
	assert.Equal(t, 2019, stub.lastSeries.YearFrom)
	assert.Equal(t, 2020, stub.lastSeries.YearTo)
	assert.Equal(t, []string{"Cattle", "Swine"}, stub.lastSeries.Items)
	assert.Equal(t, 5, stub.lastSeries.TopN)
}

func TestDashboardHandler_GetSeriesDefaults(t *testing.T) {
	stub := &stubDashboardService{series: []services.SeriesPoint{{Area: "EU", Year: 2020, Value: 1}}}
	srv := newTestServer(stub)
	defer srv.Close()

	status, _ := getJSON(t, srv.URL+"/api/dashboard/series")
	assert.Equal(t, http.StatusOK, status)

	assert.Equal(t, "Total_CO2e", stub.lastSeries.Metric)
	assert.Equal(t, 0, stub.lastSeries.YearFrom)
	assert.Equal(t, 9999, stub.lastSeries.YearTo)
	assert.Empty(t, stub.lastSeries.Region)
}

func TestDashboardHandler_GetSeriesErrors(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		serviceErr error
		wantStatus int
		wantType   string
	}{
		{
			name:       "bad from parameter",
			url:        "/api/dashboard/series?from=abc",
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "bad top_n parameter",
			url:        "/api/dashboard/series?top_n=-1",
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "unknown metric from service",
			url:        "/api/dashboard/series?metric=LSU",
			serviceErr: services.ErrUnknownMetric,
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "no data from service",
			url:        "/api/dashboard/series",
			serviceErr: services.ErrNoSeriesData,
			wantStatus: http.StatusNotFound,
			wantType:   apierrors.TypeDataMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubDashboardService{seriesErr: tt.serviceErr}
			srv := newTestServer(stub)
			defer srv.Close()

			status, body := getJSON(t, srv.URL+tt.url)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantType, body["type"])
		})
	}
}

func TestDashboardHandler_GetComposition(t *testing.T) {
	stub := &stubDashboardService{
		comp: []services.CompositionSlice{
			{Item: "Cattle", Value: 60, Share: 0.6},
			{Item: "Swine", Value: 40, Share: 0.4},
		},
	}
	srv := newTestServer(stub)
	defer srv.Close()

	status, body := getJSON(t, srv.URL+"/api/dashboard/composition?area=Austria&year=2020")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, "Austria", stub.lastComp.Area)
	assert.Equal(t, 2020, stub.lastComp.Year)
}

func TestDashboardHandler_GetCompositionValidation(t *testing.T) {
	srv := newTestServer(&stubDashboardService{})
	defer srv.Close()

	status, _ := getJSON(t, srv.URL+"/api/dashboard/composition?year=2020")
	assert.Equal(t, http.StatusBadRequest, status, "area is required")

	status, _ = getJSON(t, srv.URL+"/api/dashboard/composition?area=Austria&year=twenty")
	assert.Equal(t, http.StatusBadRequest, status, "year must be an integer")
}

func TestDashboardHandler_ExportSeries(t *testing.T) {
	stub := &stubDashboardService{series: []services.SeriesPoint{{Area: "EU", Year: 2020, Value: 1}}}
	srv := newTestServer(stub)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/dashboard/export/series.csv?metric=Stocks&region=EU")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "series.csv")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Area,Year,Value\n", string(raw))
}
