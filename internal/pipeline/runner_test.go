package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emiscli/internal/canonical"
	"emiscli/internal/dataset"
	"emiscli/internal/errors"
)

func runTable(t *testing.T, opts Options, columns []string, rows [][]string) []Record {
	t.Helper()
	runner := NewRunner(nil, opts)
	records, err := runner.Run(context.Background(), dataset.NewTable(columns, rows))
	require.NoError(t, err)
	return records
}

func findRecord(records []Record, item string, year int, metric Metric) (Record, bool) {
	for _, r := range records {
		if r.Item == item && r.Year == year && r.Metric == metric {
			return r, true
		}
	}
	return Record{}, false
}

func TestRunner_GenericCattleSplit(t *testing.T) {
	records := runTable(t, DefaultOptions(),
		[]string{"Area", "Item", "Element", "Y2020"},
		[][]string{
			{"Austria", "Cattle", "Stocks", "100"},
		})

	stocks, ok := findRecord(records, "Cattle", 2020, MetricStocks)
	require.True(t, ok, "stocks row must pass through")
	assert.Equal(t, 100.0, stocks.Value)
	assert.Equal(t, canonical.KindAggregated, stocks.Kind)
	assert.True(t, stocks.Flags.EU)
	assert.True(t, stocks.Flags.EUEEAUK)
	assert.True(t, stocks.Flags.Europe)

	// No atomic cattle reported, so LSU splits 35/65 with weights 1.0/0.8.
	dairy, ok := findRecord(records, "Cattle, dairy", 2020, MetricLSU)
	require.True(t, ok)
	assert.InDelta(t, 35.0, dairy.Value, 1e-9)
	assert.Equal(t, canonical.KindAtomic, dairy.Kind)
	assert.True(t, dairy.Flags.EU)

	nonDairy, ok := findRecord(records, "Cattle, non-dairy", 2020, MetricLSU)
	require.True(t, ok)
	assert.InDelta(t, 52.0, nonDairy.Value, 1e-9)
	assert.Equal(t, canonical.KindAtomic, nonDairy.Kind)

	_, ok = findRecord(records, "Cattle", 2020, MetricLSU)
	assert.False(t, ok, "split replaces the generic cattle LSU row")
}

func TestRunner_SplitGuard(t *testing.T) {
	records := runTable(t, DefaultOptions(),
		[]string{"Area", "Item", "Element", "Y2020"},
		[][]string{
			{"Austria", "Cattle", "Stocks", "100"},
			{"Austria", "Cattle, dairy", "Stocks", "30"},
		})

	// Atomic cattle already reported for (Austria, 2020): no manufactured rows.
	generic, ok := findRecord(records, "Cattle", 2020, MetricLSU)
	require.True(t, ok, "guarded generic row keeps its weight-based LSU")
	assert.InDelta(t, 80.0, generic.Value, 1e-9)
	assert.Equal(t, canonical.KindAggregated, generic.Kind)

	dairy, ok := findRecord(records, "Cattle, dairy", 2020, MetricLSU)
	require.True(t, ok)
	assert.InDelta(t, 30.0, dairy.Value, 1e-9)

	_, ok = findRecord(records, "Cattle, non-dairy", 2020, MetricLSU)
	assert.False(t, ok, "guard must suppress the manufactured non-dairy row")
}

func TestRunner_SplitGuardIsPerYear(t *testing.T) {
	records := runTable(t, DefaultOptions(),
		[]string{"Area", "Item", "Element", "Y2019", "Y2020"},
		[][]string{
			{"Austria", "Cattle", "Stocks", "100", "100"},
			{"Austria", "Cattle, dairy", "Stocks", "", "30"},
		})

	// 2019 has no atomic cattle, so the split applies there.
	_, ok := findRecord(records, "Cattle, non-dairy", 2019, MetricLSU)
	assert.True(t, ok)

	// 2020 does, so it does not.
	_, ok = findRecord(records, "Cattle, non-dairy", 2020, MetricLSU)
	assert.False(t, ok)
}

func TestRunner_GasConversionAndTotal(t *testing.T) {
	records := runTable(t, Options{GWP: "AR4", SplitCattle: true, DairyFraction: 0.35, OnlyLivestockTotal: true},
		[]string{"Area", "Item", "Element", "Y2020"},
		[][]string{
			{"France", "Sheep", "Livestock total (Emissions CH4)", "10"},
			{"France", "Sheep", "Livestock total (Emissions N2O)", "2"},
		})

	ch4, ok := findRecord(records, "Sheep", 2020, MetricCH4CO2e)
	require.True(t, ok)
	assert.InDelta(t, 250.0, ch4.Value, 1e-9)

	n2o, ok := findRecord(records, "Sheep", 2020, MetricN2OCO2e)
	require.True(t, ok)
	assert.InDelta(t, 596.0, n2o.Value, 1e-9)

	total, ok := findRecord(records, "Sheep", 2020, MetricTotalCO2e)
	require.True(t, ok)
	assert.InDelta(t, 846.0, total.Value, 1e-9, "total must equal CH4 + N2O")
}

func TestRunner_TotalWithOneGasMissing(t *testing.T) {
	records := runTable(t, DefaultOptions(),
		[]string{"Area", "Item", "Element", "Y2020"},
		[][]string{
			{"France", "Sheep", "Livestock total (Emissions CH4)", "10"},
		})

	total, ok := findRecord(records, "Sheep", 2020, MetricTotalCO2e)
	require.True(t, ok, "a single gas still yields a total")
	assert.InDelta(t, 272.0, total.Value, 1e-9)

	_, ok = findRecord(records, "Sheep", 2020, MetricN2OCO2e)
	assert.False(t, ok)
}

func TestRunner_OnlyLivestockTotalFilter(t *testing.T) {
	columns := []string{"Area", "Item", "Element", "Y2020"}
	rows := [][]string{
		{"France", "Sheep", "Enteric fermentation (Emissions CH4)", "10"},
		{"France", "Sheep", "Livestock total (Emissions CH4)", "4"},
	}

	strict := runTable(t, DefaultOptions(), columns, rows)
	ch4, ok := findRecord(strict, "Sheep", 2020, MetricCH4CO2e)
	require.True(t, ok)
	assert.InDelta(t, 4*27.2, ch4.Value, 1e-9, "process-level rows must not double-count")

	loose := runTable(t, Options{GWP: "AR6_NOCCF", SplitCattle: true, DairyFraction: 0.35, OnlyLivestockTotal: false},
		columns, rows)
	ch4, ok = findRecord(loose, "Sheep", 2020, MetricCH4CO2e)
	require.True(t, ok)
	assert.InDelta(t, 14*27.2, ch4.Value, 1e-9, "with the filter off both rows sum")
}

func TestRunner_StoplistAndUnknownElements(t *testing.T) {
	records := runTable(t, DefaultOptions(),
		[]string{"Area", "Item", "Element", "Y2020"},
		[][]string{
			{"France", "Chickens", "Stocks", "1000"},
			{"France", "Mules and Hinnies", "Stocks", "5"},
			{"France", "(blank)", "Stocks", "7"},
			{"France", "Sheep", "Milk yield", "3"},
			{"France", "Sheep", "Stocks", "50"},
		})

	for _, r := range records {
		assert.NotEqual(t, "Chickens", r.Item)
		assert.NotEqual(t, "Mules and Hinnies", r.Item)
		assert.NotEqual(t, "(blank)", r.Item)
	}

	sheep, ok := findRecord(records, "Sheep", 2020, MetricStocks)
	require.True(t, ok)
	assert.Equal(t, 50.0, sheep.Value)
}

func TestRunner_NonNumericAndBlankCellsSkipped(t *testing.T) {
	records := runTable(t, DefaultOptions(),
		[]string{"Area", "Item", "Element", "Y2019", "Y2020", "Y2021"},
		[][]string{
			{"France", "Sheep", "Stocks", "", "n.a.", "50"},
		})

	_, ok := findRecord(records, "Sheep", 2019, MetricStocks)
	assert.False(t, ok)
	_, ok = findRecord(records, "Sheep", 2020, MetricStocks)
	assert.False(t, ok)

	r, ok := findRecord(records, "Sheep", 2021, MetricStocks)
	require.True(t, ok)
	assert.Equal(t, 50.0, r.Value)
}

func TestRunner_KeyUniquenessAndOrdering(t *testing.T) {
	records := runTable(t, DefaultOptions(),
		[]string{"Area", "Item", "Element", "Y2019", "Y2020"},
		[][]string{
			{"Austria", "Cattle", "Stocks", "90", "100"},
			{"Austria", "Bovine animals", "Stocks", "10", "20"}, // canonicalizes to Cattle
			{"France", "Sheep", "Stocks", "40", "50"},
		})

	type key struct {
		Area   string
		Item   string
		Year   int
		Metric Metric
	}
	seen := make(map[key]bool)
	for _, r := range records {
		k := key{r.Area, r.Item, r.Year, r.Metric}
		assert.False(t, seen[k], "duplicate output key %+v", k)
		seen[k] = true
	}

	// Duplicate source labels collapse by summation.
	cattle, ok := findRecord(records, "Cattle", 2020, MetricStocks)
	require.True(t, ok)
	assert.Equal(t, 120.0, cattle.Value)

	// Deterministic sort by (Area, Item, Year, Metric).
	for i := 1; i < len(records); i++ {
		a, b := records[i-1], records[i]
		less := a.Area < b.Area ||
			(a.Area == b.Area && a.Item < b.Item) ||
			(a.Area == b.Area && a.Item == b.Item && a.Year < b.Year) ||
			(a.Area == b.Area && a.Item == b.Item && a.Year == b.Year && a.Metric <= b.Metric)
		assert.True(t, less, "records out of order at %d: %+v before %+v", i, a, b)
	}
}

func TestRunner_HeadcountConservedBySplit(t *testing.T) {
	records := runTable(t, DefaultOptions(),
		[]string{"Area", "Item", "Element", "Y2020"},
		[][]string{
			{"Austria", "Cattle", "Stocks", "200"},
		})

	dairy, ok := findRecord(records, "Cattle, dairy", 2020, MetricLSU)
	require.True(t, ok)
	nonDairy, ok := findRecord(records, "Cattle, non-dairy", 2020, MetricLSU)
	require.True(t, ok)

	// Back out headcount from the LSU weights: the split must not create or
	// destroy animals.
	headcount := dairy.Value/1.0 + nonDairy.Value/0.8
	assert.InDelta(t, 200.0, headcount, 1e-9)
}

func TestRunner_ValidationFailures(t *testing.T) {
	runner := NewRunner(nil, DefaultOptions())

	_, err := runner.Run(context.Background(), dataset.NewTable([]string{"Area", "Y2020"}, nil))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))

	_, err = runner.Run(context.Background(), dataset.NewTable([]string{"Area", "Item", "Element"}, nil))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
}

func TestRunner_EmptyResult(t *testing.T) {
	runner := NewRunner(nil, DefaultOptions())

	table := dataset.NewTable(
		[]string{"Area", "Item", "Element", "Y2020"},
		[][]string{
			{"France", "Sheep", "Milk yield", "3"},
		})

	_, err := runner.Run(context.Background(), table)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeEmptyResult))
}
