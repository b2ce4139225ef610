package pairing

import (
	"fmt"
	"slices"

	"addsubs/internal/services"
)

// Pair is one media file and the subtitle file asserted to belong with it.
type Pair struct {
	Primary   string
	Secondary string
}

func (p Pair) String() string {
	return p.Primary + " <- " + p.Secondary
}

// Validate sorts copies of both sets byte-wise and zips them by index.
// The inputs are left untouched.
func Validate(primary, secondary FileSet) ([]Pair, error) {
	if len(primary) == 0 || len(secondary) == 0 {
		return nil, services.Wrap(
			services.ErrEmptySet,
			"validate",
			"count files",
			fmt.Sprintf("%d primary, %d secondary", len(primary), len(secondary)),
			nil,
		)
	}
	if len(primary) != len(secondary) {
		return nil, services.Wrap(
			services.ErrCountMismatch,
			"validate",
			"count files",
			fmt.Sprintf("%d primary vs %d secondary", len(primary), len(secondary)),
			nil,
		)
	}

	sortedPrimary := slices.Clone(primary)
	sortedSecondary := slices.Clone(secondary)
	slices.Sort(sortedPrimary)
	slices.Sort(sortedSecondary)

	pairs := make([]Pair, len(sortedPrimary))
	for i := range sortedPrimary {
		pairs[i] = Pair{Primary: sortedPrimary[i], Secondary: sortedSecondary[i]}
	}
	return pairs, nil
}
