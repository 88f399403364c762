package canonical

import (
	"regexp"
	"strings"
)

// Kind classifies a canonical item label into a granularity tier.
type Kind string

const (
	KindAll        Kind = "All"
	KindAggregated Kind = "aggregated"
	KindAtomic     Kind = "atomic"
)

// Canonical cattle labels produced by Item.
const (
	ItemCattle         = "Cattle"
	ItemCattleDairy    = "Cattle, dairy"
	ItemCattleNonDairy = "Cattle, non-dairy"
)

// allAnimalsList holds labels that represent the domain-wide total.
var allAnimalsList = []string{
	"All animals", "All animal", "All livestock", "Total animals", "Animals, all",
}

// aggregateList holds high-level species groups.
var aggregateList = []string{
	"Camels and Llamas", "Cattle", "Mules and Asses", "Poultry Birds", "Sheep and Goats", "Swine",
}

// atomicList holds the most detailed species/breed labels.
var atomicList = []string{
	"Asses", "Buffalo", "Camels", "Swine, breeding", "Swine, market", "Turkeys",
	"Cattle, dairy", "Cattle, non-dairy", "Chickens, broilers", "Chickens, layers",
	"Ducks", "Goats", "Horses", "Sheep",
}

// excludeItems is the stoplist of labels dropped entirely (lowercase keys).
var excludeItems = map[string]bool{
	"chickens":          true,
	"mules and hinnies": true,
	"(blank)":           true,
	"":                  true,
}

var (
	allAnimalsSet = lowerSet(allAnimalsList)
	aggregateSet  = lowerSet(aggregateList)
	atomicSet     = lowerSet(atomicList)
)

func lowerSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[strings.ToLower(l)] = true
	}
	return set
}

// Label-matching rules in fixed priority order: non-dairy/other outranks dairy
// so that labels carrying both words resolve to the non-dairy bucket.
var (
	nonDairyPattern   = regexp.MustCompile(`(?i)\bnon-?dairy\b`)
	otherPattern      = regexp.MustCompile(`(?i)\bother\b`)
	dairyPattern      = regexp.MustCompile(`(?i)\bdairy\b`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Item maps a free-text item label onto the canonical vocabulary.
// Cattle/bovine labels collapse to one of the three cattle labels; every other
// label passes through trimmed with inner whitespace collapsed.
func Item(label string) string {
	s := strings.TrimSpace(label)
	s = whitespacePattern.ReplaceAllString(s, " ")

	low := strings.ToLower(s)
	low = strings.ReplaceAll(low, "non dairy", "non-dairy")

	if strings.Contains(low, "cattle") || strings.Contains(low, "bovine") {
		if nonDairyPattern.MatchString(low) || otherPattern.MatchString(low) {
			return ItemCattleNonDairy
		}
		if dairyPattern.MatchString(low) {
			return ItemCattleDairy
		}
		return ItemCattle
	}
	return s
}

// ItemKind classifies a label against the three reference vocabularies.
// Unmatched labels classify as atomic; the fallback is deliberate, not an error.
func ItemKind(label string) Kind {
	low := strings.ToLower(Item(label))
	switch {
	case allAnimalsSet[low]:
		return KindAll
	case aggregateSet[low]:
		return KindAggregated
	case atomicSet[low]:
		return KindAtomic
	default:
		return KindAtomic
	}
}

// Excluded reports whether the label is on the stoplist (case-insensitive).
func Excluded(label string) bool {
	return excludeItems[strings.ToLower(strings.TrimSpace(label))]
}

// IsGenericCattle reports whether the label is exactly the bare aggregate
// cattle term, as opposed to a more specific sub-label.
func IsGenericCattle(label string) bool {
	return strings.EqualFold(strings.TrimSpace(label), ItemCattle)
}

// IsAtomicCattle reports whether the label is one of the split cattle sub-labels.
func IsAtomicCattle(label string) bool {
	return strings.EqualFold(label, ItemCattleDairy) || strings.EqualFold(label, ItemCattleNonDairy)
}
