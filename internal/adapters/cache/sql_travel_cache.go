package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fixture-trip-planner/internal/platform/db"
	"fixture-trip-planner/internal/platform/obs"
	"fixture-trip-planner/internal/ports"
)

// SQLTravelCache is a SQL-backed cache for origin->destination travel
// estimates. Keys are expected to be consistent (Coordinates.Key) by the
// caller.
type SQLTravelCache struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLTravelCache(conn *sql.DB, dialect db.Dialect) *SQLTravelCache {
	return &SQLTravelCache{DB: conn, Dialect: dialect}
}

// Fetch cached estimates for one origin and multiple destinations.
func (s *SQLTravelCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.TravelEstimate, err error) {
	defer obs.Time(ctx, "travel.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("travel cache: db is nil")
	}

	if origin == "" {
		return nil, errors.New("get travel cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.TravelEstimate{}, nil
	}

	cond, inArgs := inClause(s.Dialect, "destination", 2, uniq)
	q := fmt.Sprintf(`
	SELECT destination, distance_km, hours
	FROM travel_cache
	WHERE origin = %s
		AND %s;
	`, s.Dialect.Placeholder(1), cond)

	rows, err := s.DB.QueryContext(ctx, q, append([]any{origin}, inArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("get travel cache: query travel_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ports.TravelEstimate, len(uniq))
	for rows.Next() {
		var dest string
		var est ports.TravelEstimate
		if err := rows.Scan(&dest, &est.DistanceKm, &est.Hours); err != nil {
			return nil, fmt.Errorf("get travel cache: scan rows: %w", err)
		}
		out[dest] = est
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get travel cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many travel estimates for a single origin.
func (s *SQLTravelCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.TravelEstimate,
) error {
	if s.DB == nil {
		return errors.New("travel cache: db is nil")
	}

	if origin == "" {
		return errors.New("insert travel cache: origin must not be empty")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert travel cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.Dialect.Upsert("travel_cache",
		[]string{"origin", "destination"},
		[]string{"distance_km", "hours"},
	))
	if err != nil {
		return fmt.Errorf("insert travel cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert travel cache: empty destination key")
		}

		if _, err := stmt.ExecContext(ctx, origin, dest, r.DistanceKm, r.Hours); err != nil {
			return fmt.Errorf("insert travel cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert travel cache commit: %w", err)
	}

	return nil
}
