package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/platform/db"
	"fixture-trip-planner/internal/platform/obs"
)

// SQL-backed implementation of the FixtureRepository port. A non-zero
// LeagueID or Season narrows ListFixtures to that league or season.
type SQLFixtureRepository struct {
	DB       *sql.DB
	Dialect  db.Dialect
	LeagueID int
	Season   int
}

func NewSQLFixtureRepository(conn *sql.DB, dialect db.Dialect) *SQLFixtureRepository {
	return &SQLFixtureRepository{DB: conn, Dialect: dialect}
}

// ForSeason returns a copy of the repository scoped to one league season.
func (s *SQLFixtureRepository) ForSeason(leagueID, season int) *SQLFixtureRepository {
	c := *s
	c.LeagueID, c.Season = leagueID, season
	return &c
}

// Return stored fixtures ordered by kickoff.
func (s *SQLFixtureRepository) ListFixtures(ctx context.Context) (_ []domain.Fixture, err error) {
	defer obs.Time(ctx, "fixtures.List")(&err)

	if s.DB == nil {
		return nil, errors.New("fixture repository: DB is nil")
	}

	var where []string
	var args []any
	if s.LeagueID != 0 {
		args = append(args, s.LeagueID)
		where = append(where, "league_id = "+s.Dialect.Placeholder(len(args)))
	}
	if s.Season != 0 {
		args = append(args, s.Season)
		where = append(where, "season = "+s.Dialect.Placeholder(len(args)))
	}

	query := `
	SELECT
		fixture_id,
		home_team,
		away_team,
		kickoff,
		stadium_name,
		stadium_city,
		lat,
		lon
	FROM fixtures`
	if len(where) > 0 {
		query += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\tORDER BY kickoff, fixture_id;"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: query fixtures table: %w", err)
	}
	defer rows.Close()

	fixtures := make([]domain.Fixture, 0, 64)
	for rows.Next() {
		var f domain.Fixture
		var kickoff string
		if err := rows.Scan(&f.ID, &f.HomeTeam, &f.AwayTeam, &kickoff, &f.StadiumName, &f.StadiumCity, &f.Stadium.Lat, &f.Stadium.Lon); err != nil {
			return nil, fmt.Errorf("list fixtures: scan row: %w", err)
		}
		if f.Kickoff, err = time.Parse(time.RFC3339, kickoff); err != nil {
			return nil, fmt.Errorf("list fixtures: fixture %q: parse kickoff: %w", f.ID, err)
		}
		fixtures = append(fixtures, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fixtures: row iteration: %w", err)
	}

	return fixtures, nil
}

// SaveFixtures upserts fixtures for one league season in a single transaction.
func (s *SQLFixtureRepository) SaveFixtures(ctx context.Context, leagueID, season int, fixtures []domain.Fixture) (err error) {
	defer obs.Time(ctx, "fixtures.Save")(&err)

	if s.DB == nil {
		return errors.New("fixture repository: DB is nil")
	}
	if len(fixtures) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save fixtures: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.Dialect.Upsert("fixtures",
		[]string{"fixture_id"},
		[]string{"league_id", "season", "home_team", "away_team", "kickoff", "stadium_name", "stadium_city", "lat", "lon"},
	))
	if err != nil {
		return fmt.Errorf("save fixtures: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range fixtures {
		id := f.ID
		if id == "" {
			id = domain.FixtureID(f.HomeTeam, f.AwayTeam)
		}
		if _, err := stmt.ExecContext(ctx,
			id, leagueID, season, f.HomeTeam, f.AwayTeam,
			f.Kickoff.UTC().Format(time.RFC3339),
			f.StadiumName, f.StadiumCity, f.Stadium.Lat, f.Stadium.Lon,
		); err != nil {
			return fmt.Errorf("save fixtures: insert %q: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save fixtures: commit tx: %w", err)
	}

	return nil
}
