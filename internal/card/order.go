package card

import (
	"fmt"
	"sort"
)

// Policy picks one printing among several. The multiverse id is the release
// ordering key: a higher id is a newer printing.
type Policy string

const (
	PolicyNewest Policy = "newest"
	PolicyOldest Policy = "oldest"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyNewest:
		return PolicyNewest, nil
	case PolicyOldest:
		return PolicyOldest, nil
	default:
		return "", fmt.Errorf("unknown printing policy %q", s)
	}
}

// SortNewestFirst returns the printings that carry an image, newest first.
// The input slice is not modified.
func SortNewestFirst(printings []Printing) []Printing {
	out := make([]Printing, 0, len(printings))
	for _, p := range printings {
		if p.HasImage() {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MultiverseID > out[j].MultiverseID
	})
	return out
}

func Newest(printings []Printing) (Printing, bool) {
	sorted := SortNewestFirst(printings)
	if len(sorted) == 0 {
		return Printing{}, false
	}
	return sorted[0], true
}

func Oldest(printings []Printing) (Printing, bool) {
	sorted := SortNewestFirst(printings)
	if len(sorted) == 0 {
		return Printing{}, false
	}
	return sorted[len(sorted)-1], true
}

// Select applies policy to printings.
func Select(printings []Printing, policy Policy) (Printing, bool) {
	if policy == PolicyOldest {
		return Oldest(printings)
	}
	return Newest(printings)
}
