package distance

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixture-trip-planner/internal/domain"
)

func TestHaversineEstimator(t *testing.T) {
	h := NewHaversineEstimator()
	a := domain.Coordinates{Lat: 0, Lon: 0}
	b := domain.Coordinates{Lat: 0, Lon: 1}

	est, err := h.Estimate(context.Background(), a, b)
	require.NoError(t, err)

	wantKm := 2 * math.Pi * DefaultEarthRadiusKm / 360
	assert.InDelta(t, wantKm, est.DistanceKm, 1e-6)
	assert.InDelta(t, wantKm/60, est.Hours, 1e-9)

	back, err := h.Estimate(context.Background(), b, a)
	require.NoError(t, err)
	assert.Equal(t, est, back)

	self, err := h.Estimate(context.Background(), a, a)
	require.NoError(t, err)
	assert.Zero(t, self.Hours)
}

func TestHaversineEstimatorRejectsInvalid(t *testing.T) {
	h := NewHaversineEstimator()
	_, err := h.Estimate(context.Background(), domain.Coordinates{Lat: 120}, domain.Coordinates{})
	assert.Error(t, err)

	h.SpeedKmh = 0
	_, err = h.Estimate(context.Background(), domain.Coordinates{}, domain.Coordinates{Lon: 1})
	assert.Error(t, err)
}

func TestHaversineEstimateManyKeysByCoordinates(t *testing.T) {
	h := NewHaversineEstimator()
	to := []domain.Coordinates{{Lat: 51.5, Lon: -0.12}, {Lat: 53.48, Lon: -2.24}}

	res, err := h.EstimateMany(context.Background(), domain.Coordinates{Lat: 51.47, Lon: -0.45}, to)
	require.NoError(t, err)

	assert.Len(t, res, 2)
	assert.Contains(t, res, to[1].Key())
	assert.Greater(t, res[to[1].Key()].Hours, res[to[0].Key()].Hours)
}
