package repositories

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/platform/db"
)

func newRepo(t *testing.T) *SQLFixtureRepository {
	t.Helper()
	conn, err := db.OpenSqlite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitSchema(context.Background(), conn, db.SQLite))
	return NewSQLFixtureRepository(conn, db.SQLite)
}

func TestSaveAndListFixtures(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	day := time.Date(2023, 1, 7, 15, 0, 0, 0, time.UTC)
	later := domain.Fixture{
		HomeTeam: "Leeds", AwayTeam: "Wolves", Kickoff: day.Add(24 * time.Hour),
		Stadium: domain.Coordinates{Lat: 53.77, Lon: -1.57}, StadiumName: "Elland Road", StadiumCity: "Leeds",
	}
	earlier := domain.Fixture{
		ID: "Wolves x Leeds", HomeTeam: "Wolves", AwayTeam: "Leeds", Kickoff: day,
		Stadium: domain.Coordinates{Lat: 52.59, Lon: -2.13}, StadiumName: "Molineux", StadiumCity: "Wolverhampton",
	}

	require.NoError(t, repo.SaveFixtures(ctx, 39, 2022, []domain.Fixture{later, earlier}))
	// Saving twice keeps one row per fixture.
	require.NoError(t, repo.SaveFixtures(ctx, 39, 2022, []domain.Fixture{later}))

	got, err := repo.ListFixtures(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Wolves x Leeds", got[0].ID)
	assert.Equal(t, "Leeds x Wolves", got[1].ID)
	assert.True(t, got[1].Kickoff.Equal(later.Kickoff))
	assert.Equal(t, "Elland Road", got[1].StadiumName)
	assert.InDelta(t, -1.57, got[1].Stadium.Lon, 1e-9)

	none, err := repo.ForSeason(39, 2023).ListFixtures(ctx)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSeedFromJSON(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	path := filepath.Join(t.TempDir(), "fixtures.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"league_id": 39,
		"season": 2022,
		"fixtures": [
			{"home_team": "Arsenal", "away_team": "Chelsea", "kickoff": "2023-01-07T15:00:00Z",
			 "stadium_name": "Emirates Stadium", "stadium_city": "London", "lat": 51.555, "lon": -0.108}
		]
	}`), 0o644))

	n, err := SeedFromJSON(ctx, repo, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repo.ForSeason(39, 2022).ListFixtures(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Arsenal x Chelsea", got[0].ID)
}

func TestParseSeedRejectsBadInput(t *testing.T) {
	_, _, err := ParseSeed([]byte(`{"fixtures":[{"home_team":"","away_team":"B","kickoff":"2023-01-07T15:00:00Z"}]}`))
	assert.Error(t, err)

	_, _, err = ParseSeed([]byte(`{"fixtures":[{"home_team":"A","away_team":"B","kickoff":"tomorrow"}]}`))
	assert.Error(t, err)

	_, _, err = ParseSeed([]byte(`{"fixtures":[{"home_team":"A","away_team":"B","kickoff":"2023-01-07T15:00:00Z","lat":91}]}`))
	assert.Error(t, err)
}
