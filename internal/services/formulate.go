package services

import (
	"errors"
	"fmt"
	"math"

	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/mip"
)

const (
	SpanObjective   = "trip_span"
	TravelObjective = "travel_time"
)

// ObjectiveSettings tunes the two lexicographic objectives. The trip span is
// always optimized before total travel.
type ObjectiveSettings struct {
	SpanRelTol   float64
	SpanAbsTol   float64
	TravelRelTol float64
	TravelAbsTol float64
}

func DefaultObjectiveSettings() ObjectiveSettings {
	return ObjectiveSettings{SpanRelTol: 0.2, TravelRelTol: 0.1}
}

func (s ObjectiveSettings) validate() error {
	for _, tol := range []float64{s.SpanRelTol, s.SpanAbsTol, s.TravelRelTol, s.TravelAbsTol} {
		if math.IsNaN(tol) || math.IsInf(tol, 0) || tol < 0 {
			return fmt.Errorf("%w: objective tolerances must be finite and >= 0, got %+v", ErrInvalidOptions, s)
		}
	}
	return nil
}

// Formulation is the binary model for one planning run together with the
// mapping between decision variables and feasibility edges. Variable i
// always belongs to Edges[i].
type Formulation struct {
	Model  *mip.Model
	Graph  *FeasibilityGraph
	Edges  []FeasibilityEdge
	Travel []float64
	Teams  int

	vars map[FeasibilityEdge]mip.Var
	host map[string]string
}

func (f *Formulation) Var(e FeasibilityEdge) (mip.Var, bool) {
	v, ok := f.vars[e]
	return v, ok
}

// FormulateModel emits one binary variable per feasible edge and the
// single-path, team-covering constraint system:
//
//	start      exactly one edge leaves Start
//	end        exactly one edge enters End
//	flow[k]    inflow equals outflow at every real fixture
//	out[k]     at most one selected edge leaves a real fixture
//	in[k]      at most one selected edge enters a real fixture
//	cover[t]   exactly one edge enters the fixtures hosted by team t
//
// No subtour elimination is needed. Edges only move forward in (kickoff, id)
// order, so the graph is acyclic and flow conservation plus the start/end
// rows leave a single Start -> End path. Without that ordering a zero-length
// cycle between same-moment fixtures could satisfy cover[t] for two teams
// off the path.
func FormulateModel(
	graph *FeasibilityGraph,
	league *domain.League,
	matrix domain.TravelTimeMatrix,
	settings ObjectiveSettings,
) (*Formulation, error) {
	if graph == nil || league == nil {
		return nil, errors.New("formulate model: graph and league are required")
	}
	if err := settings.validate(); err != nil {
		return nil, fmt.Errorf("formulate model: %w", err)
	}

	edges := graph.Edges()
	f := &Formulation{
		Model:  mip.NewModel("fixture-trip"),
		Graph:  graph,
		Edges:  edges,
		Travel: make([]float64, len(edges)),
		Teams:  len(league.Teams),
		vars:   make(map[FeasibilityEdge]mip.Var, len(edges)),
		host:   make(map[string]string, len(league.Fixtures)+2),
	}

	outOf := make(map[string][]mip.Var)
	into := make(map[string][]mip.Var)

	for i, e := range edges {
		from, ok := league.Fixture(e.From)
		if !ok {
			return nil, fmt.Errorf("formulate model: unknown fixture %q", e.From)
		}
		to, ok := league.Fixture(e.To)
		if !ok {
			return nil, fmt.Errorf("formulate model: unknown fixture %q", e.To)
		}
		travel, ok := matrix.Hours(from.HomeTeam, to.HomeTeam)
		if !ok {
			return nil, fmt.Errorf("formulate model: %w: %s -> %s", ErrMissingTravelTime, from.HomeTeam, to.HomeTeam)
		}

		f.host[from.ID], f.host[to.ID] = from.HomeTeam, to.HomeTeam

		v := f.Model.AddBinary("x[" + e.String() + "]")
		f.vars[e] = v
		f.Travel[i] = travel
		outOf[e.From] = append(outOf[e.From], v)
		into[e.To] = append(into[e.To], v)
	}

	sum := func(vars []mip.Var, coef float64, e *mip.Expr) {
		for _, v := range vars {
			e.Add(v, coef)
		}
	}
	add := func(name string, e mip.Expr, sense mip.Sense, rhs float64) {
		if len(e.Terms) == 0 {
			return
		}
		f.Model.AddConstraint(mip.Constraint{Name: name, Expr: e, Sense: sense, RHS: rhs})
	}

	var start, end mip.Expr
	sum(outOf[domain.StartFixtureID], 1, &start)
	sum(into[domain.EndFixtureID], 1, &end)
	if len(start.Terms) == 0 || len(end.Terms) == 0 {
		return nil, fmt.Errorf("formulate model: %w: Start or End has no edges", ErrNoReachableSchedule)
	}
	add("start", start, mip.Equal, 1)
	add("end", end, mip.Equal, 1)

	// Edges into Start and out of End are never emitted, so every out-edge
	// of a real fixture targets a real fixture or End, and every in-edge
	// comes from a real fixture or Start.
	for _, k := range league.Fixtures {
		var flow, out, in mip.Expr
		sum(into[k.ID], 1, &flow)
		sum(outOf[k.ID], -1, &flow)
		sum(outOf[k.ID], 1, &out)
		sum(into[k.ID], 1, &in)

		add("flow["+k.ID+"]", flow, mip.Equal, 0)
		add("out["+k.ID+"]", out, mip.LessEq, 1)
		add("in["+k.ID+"]", in, mip.LessEq, 1)
	}

	for _, t := range league.Teams {
		var cover mip.Expr
		for _, id := range league.Coverage[t.ID] {
			sum(into[id], 1, &cover)
		}
		if len(cover.Terms) == 0 {
			return nil, fmt.Errorf("%w: no fixture hosted by %q can be reached within interval %gh",
				ErrInfeasible, t.ID, graph.MinIntervalHours)
		}
		add("cover["+t.ID+"]", cover, mip.Equal, 1)
	}

	// O1: kickoff of the fixture before End minus kickoff of the fixture
	// after Start.
	var span mip.Expr
	for _, v := range outOf[domain.StartFixtureID] {
		h, _ := graph.StartHours(edges[v].To)
		span.Add(v, -h)
	}
	for _, v := range into[domain.EndFixtureID] {
		h, _ := graph.StartHours(edges[v].From)
		span.Add(v, h)
	}

	// O2: hours travelled over every selected leg, origin legs included.
	var travel mip.Expr
	for i, h := range f.Travel {
		if h != 0 {
			travel.Add(mip.Var(i), h)
		}
	}

	f.Model.AddObjective(mip.Objective{
		Name:     SpanObjective,
		Expr:     span,
		Sense:    mip.Minimize,
		Priority: 1,
		RelTol:   settings.SpanRelTol,
		AbsTol:   settings.SpanAbsTol,
	})
	f.Model.AddObjective(mip.Objective{
		Name:     TravelObjective,
		Expr:     travel,
		Sense:    mip.Minimize,
		Priority: 2,
		RelTol:   settings.TravelRelTol,
		AbsTol:   settings.TravelAbsTol,
	})

	if err := f.Model.Validate(); err != nil {
		return nil, fmt.Errorf("formulate model: %w", err)
	}
	return f, nil
}
