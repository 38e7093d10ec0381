package services

import (
	"math"

	"fixture-trip-planner/internal/domain"
)

// GreedyPath walks the feasibility graph from Start, always moving to the
// earliest reachable fixture of a team not visited yet. Ties go to the
// shorter leg, then the smaller fixture id. It reports false when the walk
// gets stuck before every team is covered or cannot reach End.
//
// The result is usually far from optimal; it only seeds the engine with a
// feasible incumbent.
func (f *Formulation) GreedyPath() ([]string, bool) {
	visited := make(map[string]bool, f.Teams)
	path := []string{domain.StartFixtureID}
	at := domain.StartFixtureID

	for len(visited) < f.Teams {
		best := ""
		bestHours, bestTravel := math.Inf(1), math.Inf(1)

		// Select the next fixture by earliest kickoff (greedy step).
		for _, next := range f.Graph.Successors(at) {
			if next == domain.EndFixtureID || visited[f.host[next]] {
				continue
			}
			v, ok := f.vars[FeasibilityEdge{From: at, To: next}]
			if !ok {
				continue
			}
			h, _ := f.Graph.StartHours(next)
			travel := f.Travel[v]
			if h < bestHours ||
				(h == bestHours && travel < bestTravel) ||
				(h == bestHours && travel == bestTravel && next < best) {
				best, bestHours, bestTravel = next, h, travel
			}
		}

		if best == "" {
			return nil, false
		}
		visited[f.host[best]] = true
		path = append(path, best)
		at = best
	}

	if _, ok := f.vars[FeasibilityEdge{From: at, To: domain.EndFixtureID}]; !ok {
		return nil, false
	}
	return append(path, domain.EndFixtureID), true
}

// PathAssignment converts a Start..End fixture path into variable values.
// It reports false when a consecutive pair is not a feasible edge.
func (f *Formulation) PathAssignment(path []string) ([]float64, bool) {
	values := make([]float64, f.Model.NumVars())
	for i := 1; i < len(path); i++ {
		v, ok := f.vars[FeasibilityEdge{From: path[i-1], To: path[i]}]
		if !ok {
			return nil, false
		}
		values[v] = 1
	}
	return values, true
}

// warmStart returns the greedy path's assignment, or nil when the walk fails.
func (f *Formulation) warmStart() []float64 {
	path, ok := f.GreedyPath()
	if !ok {
		return nil
	}
	values, _ := f.PathAssignment(path)
	return values
}
