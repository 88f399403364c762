package errors

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// ErrorHandler provides centralized error handling for the HTTP layer
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var problem *ProblemDetails
	if errors.As(err, &problem) {
		return problem
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return h.appErrorToProblem(appErr, r)
	}

	// Unknown errors become opaque internal problems, details stay in the log
	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	)
}

// appErrorToProblem maps AppError types onto problem details
func (h *ErrorHandler) appErrorToProblem(appErr *AppError, r *http.Request) *ProblemDetails {
	switch appErr.Type {
	case ErrTypeValidation:
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Validation Failed",
			appErr.Message,
			r.URL.Path,
		)
	case ErrTypeNotFound, ErrTypeEmptyResult:
		return NewProblemDetails(
			http.StatusNotFound,
			TypeDataMissing,
			"Data Not Found",
			appErr.Message,
			r.URL.Path,
		)
	case ErrTypeSchema:
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeDataSchema,
			"Dataset Schema Invalid",
			appErr.Message,
			r.URL.Path,
		)
	default:
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			appErr.Message,
			r.URL.Path,
		)
	}
}

// Error implements the error interface so ProblemDetails can travel as an error
func (pd *ProblemDetails) Error() string {
	return pd.Title + ": " + pd.Detail
}
