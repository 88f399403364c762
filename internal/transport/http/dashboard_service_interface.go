package http

import (
	"context"

	"emiscli/internal/services"
)

// DashboardServiceInterface is what the dashboard handler needs from the
// data layer. Defined on the consumer side so tests can swap in a stub.
type DashboardServiceInterface interface {
	Meta(ctx context.Context) services.Meta
	Series(ctx context.Context, req services.SeriesRequest) ([]services.SeriesPoint, error)
	Composition(ctx context.Context, req services.CompositionRequest) ([]services.CompositionSlice, error)
	ExportSeriesCSV(points []services.SeriesPoint) []byte
}
