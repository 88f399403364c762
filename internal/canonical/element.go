package canonical

import (
	"regexp"
	"strings"
)

// Element is the normalized measurement type of a raw row.
type Element string

const (
	ElementStocks Element = "Stocks"
	ElementCH4    Element = "CH4"
	ElementN2O    Element = "N2O"
	// ElementUnknown marks a label the normalizer does not recognize;
	// such rows are dropped downstream.
	ElementUnknown Element = ""
)

var (
	stocksPattern  = regexp.MustCompile(`(?i)(^stocks?$|\bstock\b)`)
	ch4Pattern     = regexp.MustCompile(`(?i)\b(ch4|methane)\b`)
	n2oPattern     = regexp.MustCompile(`(?i)\b(n2o|nitrous)\b`)
	livestockWord  = regexp.MustCompile(`(?i)livestock`)
	totalWord      = regexp.MustCompile(`(?i)total`)
)

// NormalizeElement maps a free-text element label onto the fixed measurement
// vocabulary. Unrecognized labels return ElementUnknown.
func NormalizeElement(label string) Element {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return ElementUnknown
	}
	switch {
	case stocksPattern.MatchString(s):
		return ElementStocks
	case ch4Pattern.MatchString(s):
		return ElementCH4
	case n2oPattern.MatchString(s):
		return ElementN2O
	default:
		return ElementUnknown
	}
}

// IsLivestockTotalElement reports whether the original element label textually
// indicates a livestock-wide total ("livestock" and "total" as independent
// substrings). Used to avoid double-counting when the raw source carries both
// species-level and total-level emission rows for the same gas.
func IsLivestockTotalElement(label string) bool {
	return livestockWord.MatchString(label) && totalWord.MatchString(label)
}
