package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"fixture-trip-planner/internal/domain"
)

// FixtureSeed is one fixture in a seed file.
type FixtureSeed struct {
	HomeTeam    string  `json:"home_team"`
	AwayTeam    string  `json:"away_team"`
	Kickoff     string  `json:"kickoff"`
	StadiumName string  `json:"stadium_name"`
	StadiumCity string  `json:"stadium_city"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// SeedFile is the JSON layout read by SeedFromJSON.
type SeedFile struct {
	LeagueID int           `json:"league_id"`
	Season   int           `json:"season"`
	Fixtures []FixtureSeed `json:"fixtures"`
}

// ParseSeed validates a seed document and converts it to fixtures.
func ParseSeed(data []byte) (SeedFile, []domain.Fixture, error) {
	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return SeedFile{}, nil, fmt.Errorf("seed fixtures: parse json: %w", err)
	}

	fixtures := make([]domain.Fixture, 0, len(seed.Fixtures))
	for i, item := range seed.Fixtures {
		home := strings.TrimSpace(item.HomeTeam)
		away := strings.TrimSpace(item.AwayTeam)
		if home == "" || away == "" {
			return SeedFile{}, nil, fmt.Errorf("seed fixtures: item at index %d: teams cannot be empty", i+1)
		}

		kickoff, err := time.Parse(time.RFC3339, strings.TrimSpace(item.Kickoff))
		if err != nil {
			return SeedFile{}, nil, fmt.Errorf("seed fixtures: item at index %d: kickoff: %w", i+1, err)
		}

		f := domain.Fixture{
			ID:          domain.FixtureID(home, away),
			Kickoff:     kickoff.UTC(),
			HomeTeam:    home,
			AwayTeam:    away,
			Stadium:     domain.Coordinates{Lat: item.Lat, Lon: item.Lon},
			StadiumName: strings.TrimSpace(item.StadiumName),
			StadiumCity: strings.TrimSpace(item.StadiumCity),
		}
		if !f.Stadium.Valid() {
			return SeedFile{}, nil, fmt.Errorf("seed fixtures: item %q: invalid coordinates", f.ID)
		}
		fixtures = append(fixtures, f)
	}

	return seed, fixtures, nil
}

// SeedFromJSON populates the fixtures table from a JSON seed file.
func SeedFromJSON(ctx context.Context, repo *SQLFixtureRepository, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed fixtures: read %q: %w", jsonPath, err)
	}

	seed, fixtures, err := ParseSeed(bytes)
	if err != nil {
		return 0, err
	}

	if err := repo.SaveFixtures(ctx, seed.LeagueID, seed.Season, fixtures); err != nil {
		return 0, fmt.Errorf("seed fixtures: %w", err)
	}
	return len(fixtures), nil
}
