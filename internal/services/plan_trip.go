package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/platform/obs"
	"fixture-trip-planner/internal/ports"
)

// PlanOptions are the scalar parameters of one planning run.
type PlanOptions struct {
	MinIntervalHours float64
	Buffer           time.Duration
	Objectives       ObjectiveSettings
	// SolveTimeout bounds the solve stage when positive.
	SolveTimeout time.Duration
}

func DefaultPlanOptions() PlanOptions {
	return PlanOptions{
		MinIntervalHours: 12,
		Buffer:           domain.DefaultBuffer,
		Objectives:       DefaultObjectiveSettings(),
	}
}

type PlanTripRequest struct {
	Fixtures []domain.Fixture
	Origin   domain.Origin
	Options  PlanOptions
	// Matrix, when set, is used instead of querying the provider.
	Matrix domain.TravelTimeMatrix
}

type PlanTripResult struct {
	RunID       string
	Fingerprint string
	League      *domain.League
	Matrix      domain.TravelTimeMatrix
	Itinerary   *domain.Itinerary
	Objectives  []ObjectiveResult
	Optimal     bool
	Edges       int
	Constraints int
}

// TripPlanner wires the planning pipeline to a travel-time provider and an
// optimization engine. It keeps no state between runs.
type TripPlanner struct {
	Provider ports.TravelTimeProvider
	Engine   ports.OptimizationEngine
}

func NewTripPlanner(provider ports.TravelTimeProvider, engine ports.OptimizationEngine) *TripPlanner {
	return &TripPlanner{Provider: provider, Engine: engine}
}

// Plan runs league -> matrix -> graph -> model -> solve -> extract on a fresh
// snapshot of the request. Failures are *StageError values naming the step.
func (p *TripPlanner) Plan(ctx context.Context, req PlanTripRequest) (_ *PlanTripResult, err error) {
	ctx, runID := obs.WithRunID(ctx)
	defer obs.Time(ctx, "services.PlanTrip")(&err)

	if p.Engine == nil {
		return nil, errors.New("plan trip: engine is nil")
	}

	league, err := domain.BuildLeague(req.Fixtures, req.Origin, req.Options.Buffer)
	if err != nil {
		return nil, stageErr(StageLeague, err)
	}

	res := &PlanTripResult{
		RunID:       runID,
		Fingerprint: fingerprint(league, req.Options, req.Matrix),
		League:      league,
	}
	log.Printf("run_id=%s fingerprint=%s fixtures=%d teams=%d min_interval=%g",
		runID, res.Fingerprint, len(league.Fixtures), len(league.Teams), req.Options.MinIntervalHours)

	matrix := req.Matrix
	if matrix == nil {
		if p.Provider == nil {
			return nil, stageErr(StageMatrix, errors.New("no travel time provider and no matrix"))
		}
		if matrix, err = BuildTravelTimeMatrix(ctx, p.Provider, league); err != nil {
			return nil, stageErr(StageMatrix, err)
		}
	} else if err := ValidateTravelTimeMatrix(league, matrix); err != nil {
		return nil, stageErr(StageMatrix, err)
	}
	res.Matrix = matrix

	graph, err := BuildFeasibilityGraph(league, matrix, req.Options.MinIntervalHours)
	if err != nil {
		return nil, stageErr(StageGraph, err)
	}
	res.Edges = len(graph.Edges())

	f, err := FormulateModel(graph, league, matrix, req.Options.Objectives)
	if err != nil {
		return nil, stageErr(StageModel, err)
	}
	res.Constraints = len(f.Model.Constraints)

	solveCtx := ctx
	if req.Options.SolveTimeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, req.Options.SolveTimeout)
		defer cancel()
	}
	sol, err := SolveLexicographic(solveCtx, p.Engine, f)
	if err != nil {
		return nil, stageErr(StageSolve, err)
	}
	res.Objectives = sol.Objectives
	res.Optimal = sol.Optimal

	it, err := ExtractItinerary(league, f, sol.Assignment)
	if err != nil {
		return nil, stageErr(StageExtract, err)
	}
	res.Itinerary = it

	return res, nil
}

// fingerprint identifies the planning inputs independent of input order. A
// caller-supplied matrix is part of the inputs; one built from the provider
// is not.
func fingerprint(l *domain.League, opts PlanOptions, matrix domain.TravelTimeMatrix) string {
	parts := []string{
		l.Origin.Name,
		l.Origin.Location.Key(),
		strconv.FormatFloat(opts.MinIntervalHours, 'g', -1, 64),
		opts.Buffer.String(),
		fmt.Sprintf("%+v", opts.Objectives),
	}
	for _, f := range l.Fixtures {
		parts = append(parts, f.ID, f.Kickoff.UTC().Format(time.RFC3339), f.Stadium.Key())
	}
	if matrix != nil {
		locations := l.LocationIDs()
		parts = append(parts, "matrix")
		for _, from := range locations {
			for _, to := range locations {
				if h, ok := matrix.Hours(from, to); ok {
					parts = append(parts, from, to, strconv.FormatFloat(h, 'g', -1, 64))
				}
			}
		}
	}
	return obs.Fingerprint(parts...)
}
