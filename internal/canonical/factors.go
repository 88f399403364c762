package canonical

import "strings"

// GWPPair holds the CH4 and N2O global-warming-potential factors of one
// assessment-report convention.
type GWPPair struct {
	CH4 float64
	N2O float64
}

// gwpConventions maps convention names to their factor pairs. The exact
// numeric values are domain reference data, not tunables.
var gwpConventions = map[string]GWPPair{
	"AR4":       {CH4: 25.0, N2O: 298.0},
	"AR5":       {CH4: 28.0, N2O: 265.0},
	"AR6_NOCCF": {CH4: 27.2, N2O: 273.0},
	"AR6_CCF":   {CH4: 29.8, N2O: 273.0},
}

// DefaultGWPConvention is used when a convention name is not recognized.
const DefaultGWPConvention = "AR6_NOCCF"

// GWP returns the factor pair for a convention name, falling back to
// DefaultGWPConvention for unrecognized names.
func GWP(name string) GWPPair {
	if pair, ok := gwpConventions[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return pair
	}
	return gwpConventions[DefaultGWPConvention]
}

// GWPConventions lists the recognized convention names.
func GWPConventions() []string {
	return []string{"AR4", "AR5", "AR6_NOCCF", "AR6_CCF"}
}

// lsuRule maps label substrings to a livestock-unit weight. Rules are
// evaluated in order; the first match wins, so dairy cattle must be checked
// before generic cattle.
type lsuRule struct {
	match  func(label string) bool
	weight float64
}

var lsuRules = []lsuRule{
	// "dairy" is a substring of "non-dairy", so non-dairy labels must be
	// ruled out here to fall through to the generic cattle weight.
	{func(l string) bool {
		return strings.Contains(l, "dairy") && !strings.Contains(l, "non-dairy") && strings.Contains(l, "cattle")
	}, 1.0},
	{func(l string) bool { return strings.Contains(l, "cattle") }, 0.8},
	{func(l string) bool { return strings.Contains(l, "buffalo") }, 1.0},
	{func(l string) bool { return strings.Contains(l, "sheep") || strings.Contains(l, "goat") }, 0.1},
	{func(l string) bool { return strings.Contains(l, "pig") || strings.Contains(l, "swine") }, 0.3},
	{func(l string) bool {
		return strings.Contains(l, "poultry") || strings.Contains(l, "chicken") ||
			strings.Contains(l, "turkey") || strings.Contains(l, "duck")
	}, 0.01},
	{func(l string) bool { return strings.Contains(l, "horse") || strings.Contains(l, "equid") }, 0.8},
}

// LSUWeight returns the livestock-unit weight for an item label.
// Labels matching no rule weigh 1.0.
func LSUWeight(label string) float64 {
	low := strings.ToLower(Item(label))
	for _, rule := range lsuRules {
		if rule.match(low) {
			return rule.weight
		}
	}
	return 1.0
}
