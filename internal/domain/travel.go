package domain

import (
	"slices"
	"strings"
)

// TravelPair is an ordered (from, to) pair of location identifiers.
type TravelPair struct {
	From string
	To   string
}

func (p TravelPair) String() string { return p.From + " -> " + p.To }

// TravelTimeMatrix maps ordered location pairs to travel durations in hours.
// It is built once per planning run and read-only afterwards.
type TravelTimeMatrix map[TravelPair]float64

// Hours returns the travel time from one location to another. Self pairs are
// always zero.
func (m TravelTimeMatrix) Hours(from, to string) (float64, bool) {
	if from == to {
		return 0, true
	}
	h, ok := m[TravelPair{From: from, To: to}]
	return h, ok
}

// MissingPairs lists every ordered pair among locations without an entry,
// sorted for stable reporting. A nil result means the matrix is total.
func (m TravelTimeMatrix) MissingPairs(locations []string) []TravelPair {
	var missing []TravelPair
	for _, a := range locations {
		for _, b := range locations {
			if _, ok := m.Hours(a, b); !ok {
				missing = append(missing, TravelPair{From: a, To: b})
			}
		}
	}
	slices.SortFunc(missing, func(x, y TravelPair) int {
		if c := strings.Compare(x.From, y.From); c != 0 {
			return c
		}
		return strings.Compare(x.To, y.To)
	})
	return missing
}
