package services

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/mip"
	"fixture-trip-planner/internal/ports"
)

var day0 = time.Date(2023, 1, 7, 15, 0, 0, 0, time.UTC)

func hoursAfter(h float64) time.Time {
	return day0.Add(time.Duration(h * float64(time.Hour)))
}

// coordAt places a point km kilometres along a straight line. The test world
// uses 100 km per degree of longitude.
func coordAt(km float64) domain.Coordinates {
	return domain.Coordinates{Lat: 0, Lon: km / 100}
}

func fixture(home, away string, km float64, at time.Time) domain.Fixture {
	return domain.Fixture{
		Kickoff:     at,
		HomeTeam:    home,
		AwayTeam:    away,
		Stadium:     coordAt(km),
		StadiumName: home + " Ground",
		StadiumCity: home + " City",
	}
}

func originAt(km float64) domain.Origin {
	return domain.Origin{Name: "Origin", Location: coordAt(km), City: "Origin City"}
}

// lineMatrix travels at 60 km/h between points on a line.
func lineMatrix(positions map[string]float64) domain.TravelTimeMatrix {
	m := domain.TravelTimeMatrix{}
	for a, pa := range positions {
		for b, pb := range positions {
			if a != b {
				m[domain.TravelPair{From: a, To: b}] = math.Abs(pa-pb) / 60
			}
		}
	}
	return m
}

// lineProvider is the provider form of lineMatrix.
type lineProvider struct {
	calls atomic.Int32
	fail  func(from, to domain.Coordinates) bool
}

func (p *lineProvider) Estimate(ctx context.Context, from, to domain.Coordinates) (ports.TravelEstimate, error) {
	p.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return ports.TravelEstimate{}, err
	}
	if p.fail != nil && p.fail(from, to) {
		return ports.TravelEstimate{}, errors.New("route not found")
	}
	km := math.Abs(from.Lon-to.Lon) * 100
	return ports.TravelEstimate{DistanceKm: km, Hours: km / 60}, nil
}

// batchLineProvider also answers whole rows.
type batchLineProvider struct {
	lineProvider
	rows atomic.Int32
}

func (p *batchLineProvider) EstimateMany(ctx context.Context, from domain.Coordinates, to []domain.Coordinates) (map[string]ports.TravelEstimate, error) {
	p.rows.Add(1)
	out := make(map[string]ports.TravelEstimate, len(to))
	for _, c := range to {
		est, err := p.lineProvider.Estimate(ctx, from, c)
		if err != nil {
			return nil, err
		}
		out[c.Key()] = est
	}
	return out, nil
}

// recordingEngine counts calls and keeps a copy of every model it is given.
type recordingEngine struct {
	inner  ports.OptimizationEngine
	calls  int
	models []*mip.Model
}

func (r *recordingEngine) Solve(ctx context.Context, m *mip.Model, o mip.Objective) (*mip.Solution, error) {
	r.calls++
	r.models = append(r.models, m.Clone())
	if r.inner == nil {
		return nil, errors.New("unexpected solve")
	}
	return r.inner.Solve(ctx, m, o)
}

type stubEngine struct {
	sol *mip.Solution
	err error
}

func (s stubEngine) Solve(context.Context, *mip.Model, mip.Objective) (*mip.Solution, error) {
	return s.sol, s.err
}

// scenarioA: three teams on a line 0/100/200 km from an origin co-located
// with the first, playing one day apart in geographic order.
func scenarioA() ([]domain.Fixture, domain.Origin, domain.TravelTimeMatrix) {
	fixtures := []domain.Fixture{
		fixture("T1", "T2", 0, day0),
		fixture("T2", "T3", 100, hoursAfter(24)),
		fixture("T3", "T1", 200, hoursAfter(48)),
	}
	matrix := lineMatrix(map[string]float64{"Origin": 0, "T1": 0, "T2": 100, "T3": 200})
	return fixtures, originAt(0), matrix
}

func mustLeague(fixtures []domain.Fixture, origin domain.Origin) *domain.League {
	l, err := domain.BuildLeague(fixtures, origin, domain.DefaultBuffer)
	if err != nil {
		panic(err)
	}
	return l
}

func stopIDs(it *domain.Itinerary) []string {
	ids := make([]string, 0, len(it.Stops))
	for _, s := range it.Stops {
		ids = append(ids, s.FixtureID)
	}
	return ids
}
