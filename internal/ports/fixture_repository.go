package ports

import (
	"context"

	"fixture-trip-planner/internal/domain"
)

// Port: a boundary for retrieving Fixture entities from a data source.
type FixtureRepository interface {
	// Retrieve all fixtures available for planning.
	ListFixtures(ctx context.Context) ([]domain.Fixture, error)
}

// Port: an external provider of league fixtures, such as a sports-data API.
type FixtureSource interface {
	FetchFixtures(ctx context.Context, leagueID, season int) ([]domain.Fixture, error)
}
