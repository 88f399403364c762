package pipeline

import (
	"emiscli/internal/canonical"
)

// deriveMetrics computes the five metric tables from the melted observations.
// Order matters only for readability; each derivation is independent except
// Total_CO2e, which joins the two grouped gas tables.
func deriveMetrics(obs []observation, opts Options) []Record {
	var out []Record

	out = append(out, deriveStocks(obs)...)

	ch4 := deriveGas(obs, canonical.ElementCH4, MetricCH4CO2e, canonical.GWP(opts.GWP).CH4)
	n2o := deriveGas(obs, canonical.ElementN2O, MetricN2OCO2e, canonical.GWP(opts.GWP).N2O)
	out = append(out, ch4...)
	out = append(out, n2o...)
	out = append(out, deriveTotal(ch4, n2o)...)

	out = append(out, deriveLSU(obs, opts)...)

	return out
}

// deriveStocks passes stock observations through unchanged.
func deriveStocks(obs []observation) []Record {
	var out []Record
	for _, o := range obs {
		if o.Element != canonical.ElementStocks {
			continue
		}
		out = append(out, Record{
			Area: o.Area, Item: o.Item, Year: o.Year,
			Metric: MetricStocks, Value: o.Value,
			Kind: o.Kind, Flags: o.Flags,
		})
	}
	return out
}

// deriveGas converts one gas to CO2-equivalent and collapses duplicate keys
// by summation before emission.
func deriveGas(obs []observation, element canonical.Element, metric Metric, factor float64) []Record {
	sums := make(map[groupKey]float64)
	for _, o := range obs {
		if o.Element != element {
			continue
		}
		sums[o.key()] += o.Value * factor
	}

	out := make([]Record, 0, len(sums))
	for key, value := range sums {
		out = append(out, Record{
			Area: key.Area, Item: key.Item, Year: key.Year,
			Metric: metric, Value: value,
			Kind: key.Kind, Flags: key.Flags,
		})
	}
	return out
}

// deriveTotal outer-joins the grouped gas tables on the full key, treating a
// missing side as zero. Emitted only when at least one gas had data.
func deriveTotal(ch4, n2o []Record) []Record {
	if len(ch4) == 0 && len(n2o) == 0 {
		return nil
	}

	sums := make(map[groupKey]float64)
	for _, r := range ch4 {
		sums[recordKey(r)] += r.Value
	}
	for _, r := range n2o {
		sums[recordKey(r)] += r.Value
	}

	out := make([]Record, 0, len(sums))
	for key, value := range sums {
		out = append(out, Record{
			Area: key.Area, Item: key.Item, Year: key.Year,
			Metric: MetricTotalCO2e, Value: value,
			Kind: key.Kind, Flags: key.Flags,
		})
	}
	return out
}

// deriveLSU converts stock observations into livestock units. The generic
// cattle aggregate is split into dairy/non-dairy sub-labels only for
// (Area, Year) keys with no pre-existing atomic cattle row, so countries that
// already report disaggregated cattle never gain manufactured rows. Unsplit
// generic rows keep their weight-based LSU value. The final group-and-sum is
// mandatory: it absorbs duplicate input rows and rows introduced by the split.
func deriveLSU(obs []observation, opts Options) []Record {
	var stocks []observation
	for _, o := range obs {
		if o.Element == canonical.ElementStocks {
			stocks = append(stocks, o)
		}
	}
	if len(stocks) == 0 {
		return nil
	}

	// Precomputed split guard: keys that already carry atomic cattle data.
	hasAtomicCattle := make(map[areaYear]bool)
	for _, o := range stocks {
		if canonical.IsAtomicCattle(o.Item) {
			hasAtomicCattle[areaYear{Area: o.Area, Year: o.Year}] = true
		}
	}

	frac := clampFraction(opts.DairyFraction)

	sums := make(map[groupKey]float64)
	add := func(o observation, item string, kind canonical.Kind, headcount float64) {
		key := groupKey{Area: o.Area, Item: item, Year: o.Year, Kind: kind, Flags: o.Flags}
		sums[key] += headcount * canonical.LSUWeight(item)
	}

	for _, o := range stocks {
		if opts.SplitCattle && canonical.IsGenericCattle(o.Item) &&
			!hasAtomicCattle[areaYear{Area: o.Area, Year: o.Year}] {
			add(o, canonical.ItemCattleDairy, canonical.KindAtomic, o.Value*frac)
			add(o, canonical.ItemCattleNonDairy, canonical.KindAtomic, o.Value*(1.0-frac))
			continue
		}
		add(o, o.Item, o.Kind, o.Value)
	}

	out := make([]Record, 0, len(sums))
	for key, value := range sums {
		out = append(out, Record{
			Area: key.Area, Item: key.Item, Year: key.Year,
			Metric: MetricLSU, Value: value,
			Kind: key.Kind, Flags: key.Flags,
		})
	}
	return out
}

func clampFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
