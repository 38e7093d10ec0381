package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixture-trip-planner/internal/adapters/distance"
	"fixture-trip-planner/internal/adapters/engine"
	"fixture-trip-planner/internal/api/dto"
	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/services"
)

type fakeRepo struct {
	fixtures []domain.Fixture
	err      error
}

func (r *fakeRepo) ListFixtures(context.Context) ([]domain.Fixture, error) {
	return r.fixtures, r.err
}

type stubPlanner struct {
	got services.PlanTripRequest
	err error
}

func (p *stubPlanner) Plan(_ context.Context, req services.PlanTripRequest) (*services.PlanTripResult, error) {
	p.got = req
	return nil, p.err
}

var heathrow = domain.Origin{Name: "Heathrow Airport", Location: domain.Coordinates{Lat: 51.47, Lon: -0.4543}}

// threeTeamLeague has Arsenal, Chelsea and Fulham each hosting once, two days
// apart, all within London.
func threeTeamLeague() []domain.Fixture {
	day := time.Date(2023, 1, 7, 15, 0, 0, 0, time.UTC)
	mk := func(home, away string, d int, lat, lon float64) domain.Fixture {
		return domain.Fixture{
			ID: domain.FixtureID(home, away), HomeTeam: home, AwayTeam: away,
			Kickoff: day.Add(time.Duration(d) * 48 * time.Hour),
			Stadium: domain.Coordinates{Lat: lat, Lon: lon}, StadiumName: home + " Stadium", StadiumCity: "London",
		}
	}
	return []domain.Fixture{
		mk("Arsenal", "Chelsea", 0, 51.555, -0.108),
		mk("Chelsea", "Fulham", 1, 51.482, -0.191),
		mk("Fulham", "Arsenal", 2, 51.475, -0.222),
	}
}

func post(t *testing.T, h *PlanHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/plans", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Plan(rr, req)
	return rr
}

func TestPlanEndToEnd(t *testing.T) {
	planner := services.NewTripPlanner(distance.NewHaversineEstimator(), engine.NewBranchAndBound(0, 0))
	h := NewPlanHandler(&fakeRepo{fixtures: threeTeamLeague()}, planner, heathrow, services.DefaultPlanOptions())

	rr := post(t, h, `{}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res dto.PlanResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))

	matches := make([]string, 0, len(res.Stops))
	for _, s := range res.Stops {
		matches = append(matches, s.Match)
	}
	assert.Equal(t, []string{"Start", "Arsenal x Chelsea", "Chelsea x Fulham", "Fulham x Arsenal", "End"}, matches)
	assert.InDelta(t, 96.0, res.SpanHours, 1e-9)
	assert.True(t, res.Optimal)
	assert.Len(t, res.Objectives, 2)
	assert.Equal(t, "2023-01-06 15:00", res.Stops[0].MatchDate)
}

func TestPlanUsesRequestOverrides(t *testing.T) {
	p := &stubPlanner{err: errors.New("stop")}
	repo := &fakeRepo{err: errors.New("repository must not be read")}
	h := NewPlanHandler(repo, p, heathrow, services.DefaultPlanOptions())

	body := `{
		"origin": {"name": "Manchester Airport", "lat": 53.365, "lon": -2.273},
		"min_interval_hours": 6,
		"span_reltol": 0,
		"fixtures": [{"home_team": "A", "away_team": "B", "kickoff": "2023-01-07T15:00:00Z", "lat": 53, "lon": -2}]
	}`
	rr := post(t, h, body)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	assert.Equal(t, "Manchester Airport", p.got.Origin.Name)
	assert.Equal(t, 6.0, p.got.Options.MinIntervalHours)
	assert.Zero(t, p.got.Options.Objectives.SpanRelTol)
	assert.Equal(t, 0.1, p.got.Options.Objectives.TravelRelTol)
	require.Len(t, p.got.Fixtures, 1)
	assert.Equal(t, "A x B", p.got.Fixtures[0].ID)
}

func TestPlanRejectsBadRequests(t *testing.T) {
	h := NewPlanHandler(&fakeRepo{}, &stubPlanner{}, heathrow, services.DefaultPlanOptions())

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"origin":`},
		{"unknown field", `{"trucks": 3}`},
		{"two objects", `{} {}`},
		{"negative interval", `{"min_interval_hours": -1}`},
		{"origin without name", `{"origin": {"lat": 1, "lon": 2}}`},
		{"fixture against itself", `{"fixtures": [{"home_team": "A", "away_team": "A", "kickoff": "2023-01-07T15:00:00Z"}]}`},
		{"latitude out of range", `{"origin": {"name": "x", "lat": 95, "lon": 0}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := post(t, h, tc.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
}

func TestPlanErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		stage  string
	}{
		{"infeasible", &services.StageError{Stage: services.StageSolve, Err: fmt.Errorf("%w: no path", services.ErrInfeasible)}, http.StatusUnprocessableEntity, "solve"},
		{"unreachable", &services.StageError{Stage: services.StageGraph, Err: services.ErrNoReachableSchedule}, http.StatusUnprocessableEntity, "graph"},
		{"invalid league", &services.StageError{Stage: services.StageLeague, Err: domain.ErrInvalidLeague}, http.StatusUnprocessableEntity, "league"},
		{"cancelled", &services.StageError{Stage: services.StageSolve, Err: services.ErrCancelled}, http.StatusGatewayTimeout, "solve"},
		{"malformed", &services.StageError{Stage: services.StageExtract, Err: services.ErrMalformedSolution}, http.StatusInternalServerError, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewPlanHandler(&fakeRepo{fixtures: threeTeamLeague()}, &stubPlanner{err: tc.err}, heathrow, services.DefaultPlanOptions())
			rr := post(t, h, `{}`)
			require.Equal(t, tc.status, rr.Code)

			var body dto.PlanErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.stage, body.Stage)
		})
	}
}
