package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fixture-trip-planner/internal/platform/db"
)

// InitSchema creates the fixtures table and the travel/geocode cache tables
// when they are missing. Kickoffs are stored as RFC 3339 UTC text so both
// drivers scan them the same way.
func InitSchema(ctx context.Context, conn *sql.DB, dialect db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	floatType := "DOUBLE PRECISION"
	if dialect == db.SQLite {
		floatType = "REAL"
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createFixturesQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS fixtures (
		fixture_id TEXT PRIMARY KEY,
		league_id INTEGER NOT NULL DEFAULT 0,
		season INTEGER NOT NULL DEFAULT 0,
		home_team TEXT NOT NULL,
		away_team TEXT NOT NULL,
		kickoff TEXT NOT NULL,
		stadium_name TEXT NOT NULL DEFAULT '',
		stadium_city TEXT NOT NULL DEFAULT '',
		lat %[1]s NOT NULL,
		lon %[1]s NOT NULL
	);
	`, floatType)

	createTravelCacheQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS travel_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_km %[1]s NOT NULL,
		hours %[1]s NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`, floatType)

	createGeocodeCacheQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS geocode_cache (
		query TEXT PRIMARY KEY,
		lon %[1]s NOT NULL,
		lat %[1]s NOT NULL
	);
	`, floatType)

	statements := []string{
		createFixturesQuery,
		createTravelCacheQuery,
		createGeocodeCacheQuery,
		`CREATE INDEX IF NOT EXISTS idx_fixtures_league_season ON fixtures(league_id, season);`,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
