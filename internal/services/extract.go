package services

import (
	"errors"
	"fmt"
	"time"

	"fixture-trip-planner/internal/domain"
)

// SelectionThreshold is the value above which a binary variable counts as
// selected. It absorbs engine tolerance; exact engines return 0 or 1.
const SelectionThreshold = 0.1

// displayOffset moves the Start/End display times outside the real fixtures.
const displayOffset = 24 * time.Hour

// ExtractItinerary walks the selected edges from Start to End. It fails with
// ErrMalformedSolution when a visited node does not have exactly one
// selected out-edge, when End is not reached within N+2 steps, or when the
// path does not visit every team exactly once.
func ExtractItinerary(league *domain.League, f *Formulation, assignment []float64) (*domain.Itinerary, error) {
	if league == nil || f == nil {
		return nil, errors.New("extract itinerary: league and formulation are required")
	}
	if len(assignment) != len(f.Edges) {
		return nil, fmt.Errorf("%w: %d values for %d edges", ErrMalformedSolution, len(assignment), len(f.Edges))
	}

	selected := make(map[string][]int)
	for i, e := range f.Edges {
		if assignment[i] > SelectionThreshold {
			selected[e.From] = append(selected[e.From], i)
		}
	}

	maxSteps := len(league.Fixtures) + 2
	path := []string{domain.StartFixtureID}
	var legs []int

	for cur := domain.StartFixtureID; cur != domain.EndFixtureID; {
		if len(legs) >= maxSteps {
			return nil, fmt.Errorf("%w: End not reached within %d steps", ErrMalformedSolution, maxSteps)
		}
		out := selected[cur]
		if len(out) != 1 {
			return nil, fmt.Errorf("%w: fixture %q has %d selected outgoing edges", ErrMalformedSolution, cur, len(out))
		}
		legs = append(legs, out[0])
		cur = f.Edges[out[0]].To
		path = append(path, cur)
	}

	visited := make(map[string]int, len(league.Teams))
	for _, id := range path[1 : len(path)-1] {
		fx, _ := league.Fixture(id)
		visited[fx.HomeTeam]++
	}
	for _, t := range league.Teams {
		if visited[t.ID] != 1 {
			return nil, fmt.Errorf("%w: team %q visited %d times", ErrMalformedSolution, t.ID, visited[t.ID])
		}
	}

	it := &domain.Itinerary{Stops: make([]domain.ItineraryStop, 0, len(path))}
	for _, id := range path {
		fx, _ := league.Fixture(id)
		it.Stops = append(it.Stops, domain.ItineraryStop{
			FixtureID:   fx.ID,
			HomeTeam:    fx.HomeTeam,
			AwayTeam:    fx.AwayTeam,
			StadiumName: fx.StadiumName,
			StadiumCity: fx.StadiumCity,
			Location:    fx.Stadium,
			Kickoff:     fx.Kickoff,
			DisplayAt:   fx.Kickoff,
		})
	}

	matches := it.Matches()
	first, last := matches[0], matches[len(matches)-1]
	it.Stops[0].DisplayAt = first.Kickoff.Add(-displayOffset)
	it.Stops[0].StadiumName = league.Origin.Name
	it.Stops[0].StadiumCity = league.Origin.City
	end := len(it.Stops) - 1
	it.Stops[end].DisplayAt = last.Kickoff.Add(displayOffset)
	it.Stops[end].StadiumName = league.Origin.Name
	it.Stops[end].StadiumCity = league.Origin.City

	it.SpanHours = last.Kickoff.Sub(first.Kickoff).Hours()
	for _, i := range legs {
		e := f.Edges[i]
		it.TravelHours += f.Travel[i]
		if e.From != domain.StartFixtureID && e.To != domain.EndFixtureID {
			it.MatchTravelHours += f.Travel[i]
		}
	}

	return it, nil
}
