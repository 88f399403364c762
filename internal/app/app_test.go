package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emiscli/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dataset := filepath.Join(t.TempDir(), "prepared.csv")
	content := "Area,Item,Year,Metric,Value,item_kind,is_all,is_aggregated,is_atomic,region_EU,region_EUEEAUK,region_europe\n" +
		"Austria,Cattle,2020,Total_CO2e,100,aggregated,false,true,false,true,true,true\n" +
		"Austria,Cattle,2020,Stocks,1000,aggregated,false,true,false,true,true,true\n"
	require.NoError(t, os.WriteFile(dataset, []byte(content), 0644))

	return &config.Config{
		Pipeline: config.PipelineConfig{
			OutputPath:    dataset,
			GWP:           "AR6_NOCCF",
			DairySharePct: 35,
		},
		Server: config.ServerConfig{
			Port:        0,
			ReadTimeout: 5 * time.Second,
			RateLimit:   config.RateLimitConfig{Enabled: false},
		},
		Logging: config.LoggingConfig{Level: "error", Format: "json", Output: "console"},
	}
}

func TestNewApplication_LoadsDataset(t *testing.T) {
	application, err := NewApplication(testConfig(t))
	require.NoError(t, err)

	assert.Equal(t, 2, application.Service.RowCount())
	assert.NotNil(t, application.Router)
	assert.NotNil(t, application.Server)
}

func TestNewApplication_BadDatasetFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pipeline.OutputPath = filepath.Join(t.TempDir(), "absent.csv")

	_, err := NewApplication(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load prepared dataset")
}

func TestApplication_Routes(t *testing.T) {
	application, err := NewApplication(testConfig(t))
	require.NoError(t, err)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/api/health", http.StatusOK},
		{"/api/health/live", http.StatusOK},
		{"/api/health/ready", http.StatusOK},
		{"/api/dashboard/meta", http.StatusOK},
		{"/api/dashboard/series?metric=Stocks", http.StatusOK},
		{"/api/dashboard/composition?area=Austria&year=2020", http.StatusOK},
		{"/api/dashboard/series?metric=LSU", http.StatusBadRequest},
		{"/api/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			application.Router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code, "path %s", tt.path)
		})
	}
}
