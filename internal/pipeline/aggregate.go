package pipeline

import (
	"sort"

	"emiscli/internal/canonical"
	"emiscli/internal/errors"
)

// finalize re-applies canonicalization and the exclusion stoplist (labels
// introduced by the split still need checking), recomputes region flags from
// the final Area values, collapses any remaining duplicates per metric and
// sorts deterministically. Fails with EmptyResult when no metric produced
// any rows.
func finalize(records []Record) ([]Record, error) {
	type metricKey struct {
		Key    groupKey
		Metric Metric
	}

	sums := make(map[metricKey]float64)
	for _, r := range records {
		item := canonical.Item(r.Item)
		if canonical.Excluded(item) {
			continue
		}
		r.Item = item
		r.Flags = canonical.Regions(r.Area)
		sums[metricKey{Key: recordKey(r), Metric: r.Metric}] += r.Value
	}

	if len(sums) == 0 {
		return nil, errors.NewEmptyResultError()
	}

	out := make([]Record, 0, len(sums))
	for mk, value := range sums {
		out = append(out, Record{
			Area: mk.Key.Area, Item: mk.Key.Item, Year: mk.Key.Year,
			Metric: mk.Metric, Value: value,
			Kind: mk.Key.Kind, Flags: mk.Key.Flags,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Area != b.Area {
			return a.Area < b.Area
		}
		if a.Item != b.Item {
			return a.Item < b.Item
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Metric < b.Metric
	})

	return out, nil
}
