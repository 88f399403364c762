package services

import "errors"

// Dashboard service errors
var (
	ErrNoSeriesData      = errors.New("no data for the selected filters")
	ErrNoCompositionData = errors.New("no aggregated rows for that area and year")
	ErrUnknownMetric     = errors.New("metric not supported by the dashboard")
	ErrUnknownRegion     = errors.New("unknown region")
	ErrInvalidYearRange  = errors.New("invalid year range")
	ErrInvalidInput      = errors.New("invalid input")
)
