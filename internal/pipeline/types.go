package pipeline

import (
	"emiscli/internal/canonical"
)

// Metric identifies a derived measure in the prepared long table.
type Metric string

const (
	MetricStocks    Metric = "Stocks"
	MetricCH4CO2e   Metric = "CH4_CO2e"
	MetricN2OCO2e   Metric = "N2O_CO2e"
	MetricTotalCO2e Metric = "Total_CO2e"
	MetricLSU       Metric = "LSU"
)

// Record is one prepared long-format observation. The tuple
// (Area, Item, Year, Metric) is unique after the final grouping step.
type Record struct {
	Area   string
	Item   string
	Year   int
	Metric Metric
	Value  float64
	Kind   canonical.Kind
	Flags  canonical.RegionFlags
}

// Options configures one pipeline run.
type Options struct {
	// GWP names the global-warming-potential convention; unrecognized names
	// fall back to canonical.DefaultGWPConvention.
	GWP string
	// SplitCattle enables the guarded split of the generic cattle aggregate
	// into dairy/non-dairy rows for LSU derivation.
	SplitCattle bool
	// DairyFraction is the dairy share used by the split, clamped to [0, 1].
	DairyFraction float64
	// OnlyLivestockTotal restricts CH4/N2O rows to those whose original
	// element label reads as a livestock-wide total.
	OnlyLivestockTotal bool
}

// DefaultOptions mirrors the documented defaults of the preparation run.
func DefaultOptions() Options {
	return Options{
		GWP:                canonical.DefaultGWPConvention,
		SplitCattle:        true,
		DairyFraction:      0.35,
		OnlyLivestockTotal: true,
	}
}

// observation is a melted raw row after canonicalization and filtering,
// before metric derivation.
type observation struct {
	Area    string
	Item    string
	Element canonical.Element
	Year    int
	Value   float64
	Kind    canonical.Kind
	Flags   canonical.RegionFlags
}

// groupKey is the grouping identity used when collapsing duplicate rows.
// Flags participate so two rows only merge when they agree on every
// derived attribute.
type groupKey struct {
	Area  string
	Item  string
	Year  int
	Kind  canonical.Kind
	Flags canonical.RegionFlags
}

func (o observation) key() groupKey {
	return groupKey{Area: o.Area, Item: o.Item, Year: o.Year, Kind: o.Kind, Flags: o.Flags}
}

func recordKey(r Record) groupKey {
	return groupKey{Area: r.Area, Item: r.Item, Year: r.Year, Kind: r.Kind, Flags: r.Flags}
}

// areaYear is the split-guard lookup key.
type areaYear struct {
	Area string
	Year int
}
