package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixture-trip-planner/internal/domain"
)

func TestFeasibilityGraphBoundaryIsInclusive(t *testing.T) {
	tests := []struct {
		name     string
		km       float64
		gapHours float64
		interval float64
		want     bool
	}{
		{name: "gap equals interval", km: 60, gapHours: 12, interval: 12, want: true},
		{name: "gap below interval", km: 60, gapHours: 12, interval: 12.5, want: false},
		{name: "gap equals travel", km: 1440, gapHours: 24, interval: 12, want: true},
		{name: "gap below travel", km: 1500, gapHours: 24, interval: 12, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixtures := []domain.Fixture{
				fixture("A", "B", 0, day0),
				fixture("B", "A", tt.km, hoursAfter(tt.gapHours)),
			}
			league := mustLeague(fixtures, originAt(0))
			matrix := lineMatrix(map[string]float64{"Origin": 0, "A": 0, "B": tt.km})

			g, err := BuildFeasibilityGraph(league, matrix, tt.interval)
			require.NoError(t, err)

			assert.Equal(t, tt.want, contains(g.Successors("A x B"), "B x A"))
		})
	}
}

func TestFeasibilityGraphEdgesHonourInterval(t *testing.T) {
	fixtures, origin, matrix := scenarioA()
	league := mustLeague(fixtures, origin)

	g, err := BuildFeasibilityGraph(league, matrix, 12)
	require.NoError(t, err)

	for _, e := range g.Edges() {
		a, _ := league.Fixture(e.From)
		b, _ := league.Fixture(e.To)
		sA, _ := g.StartHours(e.From)
		sB, _ := g.StartHours(e.To)
		travel, _ := matrix.Hours(a.HomeTeam, b.HomeTeam)

		assert.GreaterOrEqual(t, sB, sA+math.Max(travel, 12), e.String())
		assert.NotEqual(t, domain.StartFixtureID, e.To)
		assert.NotEqual(t, domain.EndFixtureID, e.From)
	}

	assert.NotContains(t, g.Successors(domain.StartFixtureID), domain.EndFixtureID)
	assert.Equal(t, []string{"T1 x T2", "T2 x T3", "T3 x T1"}, g.Successors(domain.StartFixtureID))
	assert.Equal(t, []string{domain.StartFixtureID, "T1 x T2", "T2 x T3"}, g.Predecessors("T3 x T1"))
	assert.Len(t, g.Edges(), 9)

	start, _ := g.StartHours(domain.StartFixtureID)
	assert.Equal(t, -120.0, start)
}

func TestFeasibilityGraphSameMomentWithZeroInterval(t *testing.T) {
	// Two clubs sharing a ground kick off together.
	fixtures := []domain.Fixture{
		fixture("A", "B", 0, day0),
		fixture("B", "A", 0, day0),
	}
	league := mustLeague(fixtures, originAt(300))
	matrix := lineMatrix(map[string]float64{"Origin": 300, "A": 0, "B": 0})

	g, err := BuildFeasibilityGraph(league, matrix, 0)
	require.NoError(t, err)

	assert.Contains(t, g.Successors("A x B"), "B x A")
	assert.NotContains(t, g.Successors("B x A"), "A x B")

	g, err = BuildFeasibilityGraph(league, matrix, 0.5)
	require.NoError(t, err)
	assert.Empty(t, g.Successors("A x B"))
}

func TestFeasibilityGraphNoReachableSchedule(t *testing.T) {
	fixtures, origin, matrix := scenarioA()
	league := mustLeague(fixtures, origin)

	_, err := BuildFeasibilityGraph(league, matrix, 10000)
	assert.ErrorIs(t, err, ErrNoReachableSchedule)
}

func TestFeasibilityGraphRejectsBadInput(t *testing.T) {
	fixtures, origin, matrix := scenarioA()
	league := mustLeague(fixtures, origin)

	_, err := BuildFeasibilityGraph(league, matrix, -1)
	assert.Error(t, err)

	delete(matrix, domain.TravelPair{From: "T2", To: "T1"})
	_, err = BuildFeasibilityGraph(league, matrix, 12)
	assert.ErrorIs(t, err, ErrMissingTravelTime)
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
