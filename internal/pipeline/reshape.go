package pipeline

import (
	"strconv"
	"strings"

	"emiscli/internal/canonical"
	"emiscli/internal/dataset"
)

// reshape melts the validated wide table into long observations. Each raw row
// yields one observation per year column with a parseable value; identifier
// columns repeat. Item canonicalization, the exclusion stoplist, element
// normalization, classification and region flags are all applied here, once
// per source row.
func reshape(t *dataset.Table, opts Options) []observation {
	yearCols := t.YearColumns()

	var out []observation
	for _, row := range t.Rows {
		rawItem := strings.TrimSpace(t.Cell(row, "Item"))
		if canonical.Excluded(rawItem) {
			continue
		}
		item := canonical.Item(rawItem)
		if canonical.Excluded(item) {
			continue
		}

		rawElement := strings.TrimSpace(t.Cell(row, "Element"))
		element := canonical.NormalizeElement(rawElement)
		if element == canonical.ElementUnknown {
			// Unrecognized measurement label: the row is silently dropped.
			continue
		}
		if opts.OnlyLivestockTotal && isGas(element) && !canonical.IsLivestockTotalElement(rawElement) {
			continue
		}

		area := strings.TrimSpace(t.Cell(row, "Area"))
		kind := canonical.ItemKind(item)
		flags := canonical.Regions(area)

		for _, yc := range yearCols {
			cell := strings.TrimSpace(t.Cell(row, yc.Name))
			if cell == "" {
				continue
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
			out = append(out, observation{
				Area:    area,
				Item:    item,
				Element: element,
				Year:    yc.Year,
				Value:   value,
				Kind:    kind,
				Flags:   flags,
			})
		}
	}
	return out
}

func isGas(e canonical.Element) bool {
	return e == canonical.ElementCH4 || e == canonical.ElementN2O
}
