package canonical

import "strings"

// RegionFlags is the membership of an area in the three fixed region sets.
// It is a pure function of the Area value and must be recomputed whenever an
// Area is rewritten.
type RegionFlags struct {
	Europe  bool
	EU      bool
	EUEEAUK bool
}

var euMembers = []string{
	"Austria", "Belgium", "Bulgaria", "Croatia", "Cyprus", "Czechia", "Czech Republic", "Denmark", "Estonia",
	"Finland", "France", "Germany", "Greece", "Hungary", "Ireland", "Italy", "Latvia", "Lithuania", "Luxembourg",
	"Malta", "Netherlands", "Poland", "Portugal", "Romania", "Slovakia", "Slovenia", "Spain", "Sweden",
}

var eeaPlusUKExtras = []string{
	"Iceland", "Liechtenstein", "Norway", "United Kingdom", "UK",
}

var europeWideMembers = []string{
	"Albania", "Andorra", "Armenia", "Austria", "Azerbaijan", "Belarus", "Belgium", "Bosnia and Herzegovina", "Bulgaria",
	"Croatia", "Cyprus", "Czechia", "Czech Republic", "Denmark", "Estonia", "Finland", "France", "Georgia", "Germany", "Greece",
	"Hungary", "Iceland", "Ireland", "Italy", "Kazakhstan", "Kosovo", "Latvia", "Liechtenstein", "Lithuania", "Luxembourg",
	"Malta", "Moldova", "Monaco", "Montenegro", "Netherlands", "North Macedonia", "Norway", "Poland", "Portugal", "Romania",
	"Russia", "San Marino", "Serbia", "Slovakia", "Slovenia", "Spain", "Sweden", "Switzerland", "Turkey", "Ukraine",
	"United Kingdom", "UK", "Vatican City",
}

var (
	euSet         = nameSet(euMembers)
	eeaPlusUKSet  = nameSet(append(append([]string{}, euMembers...), eeaPlusUKExtras...))
	europeWideSet = nameSet(europeWideMembers)
)

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Regions computes the membership flags for an area name.
func Regions(area string) RegionFlags {
	a := strings.TrimSpace(area)
	return RegionFlags{
		Europe:  europeWideSet[a],
		EU:      euSet[a],
		EUEEAUK: eeaPlusUKSet[a],
	}
}
