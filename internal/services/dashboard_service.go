package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"emiscli/internal/canonical"
	"emiscli/internal/errors"
)

// Metrics served by the dashboard. The template scope is deliberately narrow:
// shares and trends are most meaningful for totals and headcounts.
var dashboardMetrics = []string{"Total_CO2e", "Stocks"}

// Region options exposed to users, mapped to the boolean flag columns of the
// prepared dataset.
var regionOptions = []string{"Europe", "EU", "EU/EEA+UK"}

// groupTotalMarker identifies legacy pre-aggregated rows that must be
// excluded from on-the-fly regional sums to avoid double-counting.
const groupTotalMarker = "(group total)"

// requiredColumns is the exact column set the dashboard needs. A prepared
// file missing any of these halts loading with a descriptive error.
var requiredColumns = []string{
	"Area", "Item", "Year", "Metric", "Value",
	"item_kind", "region_europe", "region_EU", "region_EUEEAUK",
}

// DataRow is one prepared observation as loaded for the dashboard.
type DataRow struct {
	Area          string
	Item          string
	Year          int
	Metric        string
	Value         float64
	Kind          canonical.Kind
	RegionEurope  bool
	RegionEU      bool
	RegionEUEEAUK bool
}

// DashboardService serves read-only views over the prepared long dataset.
// The file is loaded once at startup; there is no mutation afterwards.
type DashboardService struct {
	logger *slog.Logger
	path   string
	rows   []DataRow

	minYear int
	maxYear int
}

// NewDashboardService loads and validates the prepared dataset.
func NewDashboardService(logger *slog.Logger, path string) (*DashboardService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &DashboardService{
		logger: logger.With(slog.String("component", "dashboard_service")),
		path:   path,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads the prepared CSV, validates its schema and keeps only the
// metrics in dashboard scope.
func (s *DashboardService) load() error {
	file, err := os.Open(s.path)
	if err != nil {
		return errors.NewParsingError("failed to open prepared dataset", err).
			WithContext("path", s.path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return errors.NewParsingError("failed to read prepared dataset", err).
			WithContext("path", s.path)
	}
	if len(records) == 0 {
		return errors.NewParsingError("prepared dataset has no header row", nil).
			WithContext("path", s.path)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	index := make(map[string]int, len(header))
	for i, c := range header {
		index[strings.TrimSpace(c)] = i
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		// Halt rather than partially render: the collaborator contract.
		return errors.NewMissingColumnsError(missing)
	}

	cell := func(row []string, column string) string {
		i := index[column]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	inScope := make(map[string]bool, len(dashboardMetrics))
	for _, m := range dashboardMetrics {
		inScope[strings.ToLower(m)] = true
	}

	s.rows = s.rows[:0]
	s.minYear, s.maxYear = 0, 0
	for _, row := range records[1:] {
		metric := cell(row, "Metric")
		if !inScope[strings.ToLower(metric)] {
			continue
		}
		year, err := strconv.Atoi(cell(row, "Year"))
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(cell(row, "Value"), 64)
		if err != nil {
			continue
		}

		s.rows = append(s.rows, DataRow{
			Area:          cell(row, "Area"),
			Item:          cell(row, "Item"),
			Year:          year,
			Metric:        metric,
			Value:         value,
			Kind:          NormalizeKind(cell(row, "item_kind")),
			RegionEurope:  parseBool(cell(row, "region_europe")),
			RegionEU:      parseBool(cell(row, "region_EU")),
			RegionEUEEAUK: parseBool(cell(row, "region_EUEEAUK")),
		})

		if s.minYear == 0 || year < s.minYear {
			s.minYear = year
		}
		if year > s.maxYear {
			s.maxYear = year
		}
	}

	s.logger.Info("prepared dataset loaded",
		slog.String("path", s.path),
		slog.Int("rows", len(s.rows)),
		slog.Int("min_year", s.minYear),
		slog.Int("max_year", s.maxYear))

	return nil
}

// NormalizeKind maps free-text item_kind variants onto the three canonical
// buckets, tolerating small naming inconsistencies from upstream processors.
func NormalizeKind(v string) canonical.Kind {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "all", "all animals", "all_animals":
		return canonical.KindAll
	case "aggregated", "aggregate":
		return canonical.KindAggregated
	default:
		return canonical.KindAtomic
	}
}

// DatasetPath returns the path the prepared table was loaded from.
func (s *DashboardService) DatasetPath() string {
	return s.path
}

// RowCount returns the number of loaded data rows.
func (s *DashboardService) RowCount() int {
	return len(s.rows)
}

// Meta describes the loaded dataset for building dashboard controls.
type Meta struct {
	MinYear int                 `json:"min_year"`
	MaxYear int                 `json:"max_year"`
	Metrics []string            `json:"metrics"`
	Regions []string            `json:"regions"`
	Kinds   []string            `json:"kinds"`
	Items   map[string][]string `json:"items"`
	Areas   []string            `json:"areas"`
}

// Meta returns the dataset metadata: year bounds, metrics in scope, the
// region options, the kinds present and their items, and country areas.
func (s *DashboardService) Meta(ctx context.Context) Meta {
	kindSet := make(map[canonical.Kind]bool)
	itemSet := make(map[canonical.Kind]map[string]bool)
	areaSet := make(map[string]bool)

	for _, r := range s.rows {
		kindSet[r.Kind] = true
		if itemSet[r.Kind] == nil {
			itemSet[r.Kind] = make(map[string]bool)
		}
		itemSet[r.Kind][r.Item] = true
		if !strings.Contains(strings.ToLower(r.Area), groupTotalMarker) {
			areaSet[r.Area] = true
		}
	}

	meta := Meta{
		MinYear: s.minYear,
		MaxYear: s.maxYear,
		Metrics: append([]string{}, dashboardMetrics...),
		Regions: append([]string{}, regionOptions...),
		Items:   make(map[string][]string, len(itemSet)),
	}
	for _, k := range []canonical.Kind{canonical.KindAll, canonical.KindAggregated, canonical.KindAtomic} {
		if kindSet[k] {
			meta.Kinds = append(meta.Kinds, string(k))
		}
	}
	for kind, items := range itemSet {
		meta.Items[string(kind)] = sortedKeys(items)
	}
	meta.Areas = sortedKeys(areaSet)

	return meta
}

// SeriesRequest selects a time-series view.
type SeriesRequest struct {
	Metric   string
	Kind     canonical.Kind
	Items    []string
	YearFrom int
	YearTo   int
	// Region switches to a computed regional total. Empty means country mode.
	Region string
	// Countries restricts country mode to the named areas; empty keeps all.
	Countries []string
	// TopN keeps the N largest countries by latest-year value; 0 keeps all.
	TopN int
}

// SeriesPoint is one point of an aggregated time series.
type SeriesPoint struct {
	Area  string  `json:"area"`
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Series computes the aggregated time series behind the trends chart.
// Regional totals sum country rows flagged for the region; country mode
// groups by (Area, Year) to collapse duplicate rows.
func (s *DashboardService) Series(ctx context.Context, req SeriesRequest) ([]SeriesPoint, error) {
	if err := s.checkMetric(req.Metric); err != nil {
		return nil, err
	}
	if req.YearFrom > req.YearTo {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidYearRange, req.YearFrom, req.YearTo)
	}

	base := s.filter(req.Metric, req.Kind, req.Items, req.YearFrom, req.YearTo)
	if len(base) == 0 {
		return nil, ErrNoSeriesData
	}

	if req.Region != "" {
		flag, err := regionFlag(req.Region)
		if err != nil {
			return nil, err
		}
		totals := make(map[int]float64)
		for _, r := range base {
			if flag(r) && !isGroupTotal(r.Area) {
				totals[r.Year] += r.Value
			}
		}
		if len(totals) == 0 {
			return nil, ErrNoSeriesData
		}
		points := make([]SeriesPoint, 0, len(totals))
		for year, value := range totals {
			points = append(points, SeriesPoint{Area: req.Region, Year: year, Value: value})
		}
		sortPoints(points)
		return points, nil
	}

	keep := make(map[string]bool)
	if len(req.Countries) > 0 {
		for _, c := range req.Countries {
			keep[c] = true
		}
	}

	type areaYear struct {
		Area string
		Year int
	}
	totals := make(map[areaYear]float64)
	for _, r := range base {
		if isGroupTotal(r.Area) {
			continue
		}
		if len(keep) > 0 && !keep[r.Area] {
			continue
		}
		totals[areaYear{r.Area, r.Year}] += r.Value
	}
	if len(totals) == 0 {
		return nil, ErrNoSeriesData
	}

	points := make([]SeriesPoint, 0, len(totals))
	for key, value := range totals {
		points = append(points, SeriesPoint{Area: key.Area, Year: key.Year, Value: value})
	}

	if req.TopN > 0 {
		points = topNByLatestYear(points, req.TopN)
	}

	sortPoints(points)
	return points, nil
}

// CompositionRequest selects a single-year composition view. Metric is fixed
// to Total_CO2e and item kind to aggregated: shares are most meaningful for a
// total, and aggregated groups keep the slice count interpretable.
type CompositionRequest struct {
	// Area is either one of the region options or a country name.
	Area string
	Year int
}

// CompositionSlice is one aggregate group's share of the composition.
type CompositionSlice struct {
	Item  string  `json:"item"`
	Value float64 `json:"value"`
	Share float64 `json:"share"`
}

// Composition computes the share of each aggregated group in Total_CO2e for
// one area (or computed region) and year, sorted by value descending.
func (s *DashboardService) Composition(ctx context.Context, req CompositionRequest) ([]CompositionSlice, error) {
	sums := make(map[string]float64)

	flag, regionErr := regionFlag(req.Area)
	isRegion := regionErr == nil

	for _, r := range s.rows {
		if r.Kind != canonical.KindAggregated || r.Year != req.Year ||
			!strings.EqualFold(r.Metric, "Total_CO2e") || isGroupTotal(r.Area) {
			continue
		}
		if isRegion {
			if flag(r) {
				sums[r.Item] += r.Value
			}
		} else if r.Area == req.Area {
			sums[r.Item] += r.Value
		}
	}

	var total float64
	for _, v := range sums {
		total += v
	}
	if len(sums) == 0 || total <= 0 {
		return nil, ErrNoCompositionData
	}

	slices := make([]CompositionSlice, 0, len(sums))
	for item, value := range sums {
		slices = append(slices, CompositionSlice{Item: item, Value: value, Share: value / total})
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Value != slices[j].Value {
			return slices[i].Value > slices[j].Value
		}
		return slices[i].Item < slices[j].Item
	})

	return slices, nil
}

// ExportSeriesCSV renders an aggregated series as CSV bytes, exactly the data
// behind the on-screen chart.
func (s *DashboardService) ExportSeriesCSV(points []SeriesPoint) []byte {
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.Write([]string{"Area", "Year", "Value"})
	for _, p := range points {
		w.Write([]string{p.Area, strconv.Itoa(p.Year), strconv.FormatFloat(p.Value, 'g', -1, 64)})
	}
	w.Flush()
	return []byte(b.String())
}

// filter applies metric, kind, item and year-range restrictions.
func (s *DashboardService) filter(metric string, kind canonical.Kind, items []string, yearFrom, yearTo int) []DataRow {
	itemSet := make(map[string]bool, len(items))
	for _, i := range items {
		itemSet[i] = true
	}

	var out []DataRow
	for _, r := range s.rows {
		if !strings.EqualFold(r.Metric, metric) {
			continue
		}
		if kind != "" && r.Kind != kind {
			continue
		}
		if len(itemSet) > 0 && !itemSet[r.Item] {
			continue
		}
		if r.Year < yearFrom || r.Year > yearTo {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *DashboardService) checkMetric(metric string) error {
	for _, m := range dashboardMetrics {
		if strings.EqualFold(m, metric) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
}

// regionFlag maps a region option onto its membership predicate.
func regionFlag(region string) (func(DataRow) bool, error) {
	switch region {
	case "Europe":
		return func(r DataRow) bool { return r.RegionEurope }, nil
	case "EU":
		return func(r DataRow) bool { return r.RegionEU }, nil
	case "EU/EEA+UK":
		return func(r DataRow) bool { return r.RegionEUEEAUK }, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegion, region)
	}
}

func isGroupTotal(area string) bool {
	return strings.Contains(strings.ToLower(area), groupTotalMarker)
}

// topNByLatestYear keeps the n areas ranked by their latest-year value.
func topNByLatestYear(points []SeriesPoint, n int) []SeriesPoint {
	latestYear := 0
	for _, p := range points {
		if p.Year > latestYear {
			latestYear = p.Year
		}
	}

	latest := make(map[string]float64)
	for _, p := range points {
		if p.Year == latestYear {
			latest[p.Area] += p.Value
		}
	}

	areas := sortedKeys(latest)
	sort.Slice(areas, func(i, j int) bool {
		if latest[areas[i]] != latest[areas[j]] {
			return latest[areas[i]] > latest[areas[j]]
		}
		return areas[i] < areas[j]
	})
	if len(areas) > n {
		areas = areas[:n]
	}

	keep := make(map[string]bool, len(areas))
	for _, a := range areas {
		keep[a] = true
	}

	var out []SeriesPoint
	for _, p := range points {
		if keep[p.Area] {
			out = append(out, p)
		}
	}
	return out
}

// sortPoints orders a series by (Area, Year) for deterministic output.
func sortPoints(points []SeriesPoint) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].Area != points[j].Area {
			return points[i].Area < points[j].Area
		}
		return points[i].Year < points[j].Year
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return false
	}
	return b
}
