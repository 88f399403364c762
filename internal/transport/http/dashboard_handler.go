package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "emiscli/internal/errors"
	"emiscli/internal/middleware"
	"emiscli/internal/services"
)

// DashboardHandler serves the dashboard API with RFC 7807 compliance
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler with RFC 7807 error handling
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes with proper Chi patterns
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/meta", h.GetMeta)
	r.Get("/series", h.GetSeries)
	r.Get("/composition", h.GetComposition)
	r.Get("/export/series.csv", h.ExportSeries)

	return r
}

// GetMeta handles GET /api/dashboard/meta
func (h *DashboardHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "fetching dataset metadata",
		slog.String("request_id", reqID),
	)

	meta := h.service.Meta(r.Context())

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   meta,
	})
}

// GetSeries handles GET /api/dashboard/series
func (h *DashboardHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	req, err := parseSeriesRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "computing series",
		slog.String("request_id", reqID),
		slog.String("metric", req.Metric),
		slog.String("kind", string(req.Kind)),
		slog.String("region", req.Region),
		slog.Int("year_from", req.YearFrom),
		slog.Int("year_to", req.YearTo),
	)

	points, err := h.service.Series(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err, reqID)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   points,
		"count":  len(points),
	})
}

// GetComposition handles GET /api/dashboard/composition
func (h *DashboardHandler) GetComposition(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	area := r.URL.Query().Get("area")
	if area == "" {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("area parameter is required"))
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("year must be an integer"))
		return
	}

	h.logger.InfoContext(r.Context(), "computing composition",
		slog.String("request_id", reqID),
		slog.String("area", area),
		slog.Int("year", year),
	)

	slices, err := h.service.Composition(r.Context(), services.CompositionRequest{Area: area, Year: year})
	if err != nil {
		h.handleServiceError(w, r, err, reqID)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   slices,
		"count":  len(slices),
		"params": map[string]interface{}{
			"area": area,
			"year": year,
		},
	})
}

// ExportSeries handles GET /api/dashboard/export/series.csv. It serves the
// same aggregate as GetSeries, rendered as a CSV attachment.
func (h *DashboardHandler) ExportSeries(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	req, err := parseSeriesRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "exporting series csv",
		slog.String("request_id", reqID),
		slog.String("metric", req.Metric),
		slog.String("region", req.Region),
	)

	points, err := h.service.Series(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err, reqID)
		return
	}

	body := h.service.ExportSeriesCSV(points)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="series.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// handleServiceError maps dashboard service sentinels to API errors.
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, reqID string) {
	h.logger.ErrorContext(r.Context(), "dashboard request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
	)

	switch {
	case errors.Is(err, services.ErrNoSeriesData),
		errors.Is(err, services.ErrNoCompositionData):
		h.errorHandler.HandleError(w, r, apierrors.NewEmptyResultError())
	case errors.Is(err, services.ErrUnknownMetric),
		errors.Is(err, services.ErrUnknownRegion),
		errors.Is(err, services.ErrInvalidYearRange),
		errors.Is(err, services.ErrInvalidInput):
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError(err.Error()))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// parseSeriesRequest builds a SeriesRequest from query parameters. Defaults
// mirror the dashboard's initial view: Total_CO2e over all years, aggregated
// groups, Europe-wide total.
func parseSeriesRequest(r *http.Request) (services.SeriesRequest, error) {
	q := r.URL.Query()

	req := services.SeriesRequest{
		Metric: q.Get("metric"),
		Region: q.Get("region"),
	}
	if req.Metric == "" {
		req.Metric = "Total_CO2e"
	}
	// An absent kind means no kind filter, not the atomic fallback.
	if kind := q.Get("kind"); kind != "" {
		req.Kind = services.NormalizeKind(kind)
	}

	if items := q.Get("items"); items != "" {
		req.Items = splitParam(items)
	}
	if countries := q.Get("countries"); countries != "" {
		req.Countries = splitParam(countries)
	}

	var err error
	if req.YearFrom, err = intParam(q.Get("from"), 0); err != nil {
		return req, apierrors.NewValidationError("from must be an integer year")
	}
	if req.YearTo, err = intParam(q.Get("to"), 9999); err != nil {
		return req, apierrors.NewValidationError("to must be an integer year")
	}

	if req.TopN, err = intParam(q.Get("top_n"), 0); err != nil || req.TopN < 0 {
		return req, apierrors.NewValidationError("top_n must be a non-negative integer")
	}
	if req.TopN > 100 {
		return req, apierrors.NewValidationError(fmt.Sprintf("top_n must be at most 100, got %d", req.TopN))
	}

	return req, nil
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func splitParam(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
