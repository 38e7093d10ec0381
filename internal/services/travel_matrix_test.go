package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixture-trip-planner/internal/domain"
)

func TestBuildTravelTimeMatrixIsTotal(t *testing.T) {
	fixtures, origin, _ := scenarioA()
	league := mustLeague(fixtures, origin)

	provider := &lineProvider{}
	m, err := BuildTravelTimeMatrix(context.Background(), provider, league)
	require.NoError(t, err)

	assert.Empty(t, m.MissingPairs(league.LocationIDs()))

	h, ok := m.Hours("T1", "T3")
	require.True(t, ok)
	assert.InDelta(t, 200.0/60, h, 1e-9)

	h, ok = m.Hours("T3", "Origin")
	require.True(t, ok)
	assert.InDelta(t, 200.0/60, h, 1e-9)

	// The origin shares T1's ground, so that pair never reaches the provider.
	h, ok = m.Hours("Origin", "T1")
	require.True(t, ok)
	assert.Zero(t, h)
	assert.EqualValues(t, 4*3-2, provider.calls.Load())
}

func TestBuildTravelTimeMatrixUsesBatchedRows(t *testing.T) {
	fixtures, origin, _ := scenarioA()
	league := mustLeague(fixtures, origin)

	provider := &batchLineProvider{}
	_, err := BuildTravelTimeMatrix(context.Background(), provider, league)
	require.NoError(t, err)

	assert.EqualValues(t, len(league.LocationIDs()), provider.rows.Load())
}

func TestBuildTravelTimeMatrixReportsMissingPairs(t *testing.T) {
	fixtures, origin, _ := scenarioA()
	league := mustLeague(fixtures, origin)

	provider := &lineProvider{fail: func(from, to domain.Coordinates) bool {
		return from == coordAt(100) && to == coordAt(200)
	}}
	_, err := BuildTravelTimeMatrix(context.Background(), provider, league)

	require.ErrorIs(t, err, ErrMissingTravelTime)
	assert.Contains(t, err.Error(), "T2 -> T3")
	assert.NotContains(t, err.Error(), "T3 -> T2")
}

func TestBuildTravelTimeMatrixCancelled(t *testing.T) {
	fixtures, origin, _ := scenarioA()
	league := mustLeague(fixtures, origin)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildTravelTimeMatrix(ctx, &lineProvider{}, league)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrMissingTravelTime)
}

func TestValidateTravelTimeMatrixRejectsNegative(t *testing.T) {
	fixtures, origin, m := scenarioA()
	league := mustLeague(fixtures, origin)

	m[domain.TravelPair{From: "T1", To: "T2"}] = -1
	err := ValidateTravelTimeMatrix(league, m)
	assert.ErrorIs(t, err, ErrMissingTravelTime)
}
