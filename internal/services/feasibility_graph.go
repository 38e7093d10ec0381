package services

import (
	"errors"
	"fmt"
	"math"

	"fixture-trip-planner/internal/domain"
)

// FeasibilityEdge means the To fixture can be attended after the From one.
type FeasibilityEdge struct {
	From string
	To   string
}

func (e FeasibilityEdge) String() string { return e.From + " -> " + e.To }

// FeasibilityGraph holds every time-feasible transition between fixtures,
// including the synthetic Start and End bookends.
type FeasibilityGraph struct {
	MinIntervalHours float64

	edges []FeasibilityEdge
	succ  map[string][]string
	pred  map[string][]string
	hours map[string]float64
}

// BuildFeasibilityGraph adds an edge A -> B for every pair of distinct
// fixtures with sA + max(travel(homeA, homeB), m) <= sB, where s is the
// kickoff measured in hours from the league's first real fixture. Successor
// lists follow league fixture order.
//
// Edges that can never lie on a Start -> End path (into Start, out of End,
// and the direct Start -> End hop) are not emitted. Two fixtures at the same
// moment (possible only with m = 0 and zero travel) are linked in league
// order only, so the graph is always acyclic.
func BuildFeasibilityGraph(
	league *domain.League,
	matrix domain.TravelTimeMatrix,
	minIntervalHours float64,
) (*FeasibilityGraph, error) {
	if league == nil {
		return nil, errors.New("build feasibility graph: league is nil")
	}
	if math.IsNaN(minIntervalHours) || math.IsInf(minIntervalHours, 0) || minIntervalHours < 0 {
		return nil, fmt.Errorf("build feasibility graph: %w: min interval must be a non-negative number of hours, got %v", ErrInvalidOptions, minIntervalHours)
	}
	if err := ValidateTravelTimeMatrix(league, matrix); err != nil {
		return nil, err
	}

	all := league.AllFixtures()
	g := &FeasibilityGraph{
		MinIntervalHours: minIntervalHours,
		succ:             make(map[string][]string, len(all)),
		pred:             make(map[string][]string, len(all)),
		hours:            make(map[string]float64, len(all)),
	}
	for _, f := range all {
		g.hours[f.ID] = league.HoursSinceStart(f.Kickoff)
	}

	for i, a := range all {
		if a.ID == domain.EndFixtureID {
			continue
		}
		sA := g.hours[a.ID]
		for j, b := range all {
			if i == j || b.ID == domain.StartFixtureID {
				continue
			}
			if a.ID == domain.StartFixtureID && b.ID == domain.EndFixtureID {
				continue
			}

			travel, _ := matrix.Hours(a.HomeTeam, b.HomeTeam)
			sB := g.hours[b.ID]
			if sA+math.Max(travel, minIntervalHours) <= sB && (sA < sB || i < j) {
				g.edges = append(g.edges, FeasibilityEdge{From: a.ID, To: b.ID})
				g.succ[a.ID] = append(g.succ[a.ID], b.ID)
				g.pred[b.ID] = append(g.pred[b.ID], a.ID)
			}
		}
	}

	if len(g.succ[domain.StartFixtureID]) == 0 {
		return nil, fmt.Errorf("%w: no fixture is reachable from the origin within interval %gh",
			ErrNoReachableSchedule, minIntervalHours)
	}
	if len(g.pred[domain.EndFixtureID]) == 0 {
		return nil, fmt.Errorf("%w: the origin cannot be reached after any fixture within interval %gh",
			ErrNoReachableSchedule, minIntervalHours)
	}

	return g, nil
}

// Edges lists every feasible transition, grouped by source in league order.
func (g *FeasibilityGraph) Edges() []FeasibilityEdge { return g.edges }

func (g *FeasibilityGraph) Successors(id string) []string { return g.succ[id] }

func (g *FeasibilityGraph) Predecessors(id string) []string { return g.pred[id] }

// StartHours is the fixture's kickoff in hours relative to the first real
// kickoff of the league. Start is negative.
func (g *FeasibilityGraph) StartHours(id string) (float64, bool) {
	h, ok := g.hours[id]
	return h, ok
}
