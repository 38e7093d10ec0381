package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/platform/obs"
	"fixture-trip-planner/internal/ports"
)

// matrixConcurrency bounds in-flight provider rows.
const matrixConcurrency = 5

// BuildTravelTimeMatrix estimates travel between every ordered pair of league
// locations (team stadiums plus the origin). Rows are fetched concurrently,
// one per source location, and merged once all have finished.
//
// Pairs the provider cannot produce are left out and reported by the final
// validation as ErrMissingTravelTime. Context errors abort the build.
func BuildTravelTimeMatrix(
	ctx context.Context,
	provider ports.TravelTimeProvider,
	league *domain.League,
) (_ domain.TravelTimeMatrix, err error) {
	defer obs.Time(ctx, "services.BuildTravelTimeMatrix")(&err)

	if provider == nil {
		return nil, errors.New("build travel time matrix: provider is nil")
	}
	if league == nil {
		return nil, errors.New("build travel time matrix: league is nil")
	}

	ids := league.LocationIDs()
	rows := make([]map[string]float64, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(matrixConcurrency)

	for i, from := range ids {
		g.Go(func() error {
			row, err := estimateRow(gctx, provider, league, from, ids)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build travel time matrix: %w", err)
	}

	matrix := make(domain.TravelTimeMatrix, len(ids)*len(ids))
	for i, from := range ids {
		for to, h := range rows[i] {
			matrix[domain.TravelPair{From: from, To: to}] = h
		}
	}

	if err := ValidateTravelTimeMatrix(league, matrix); err != nil {
		return nil, err
	}
	return matrix, nil
}

// estimateRow computes travel hours from one location to every other one.
func estimateRow(
	ctx context.Context,
	provider ports.TravelTimeProvider,
	league *domain.League,
	from string,
	ids []string,
) (map[string]float64, error) {
	fromCoord, ok := league.Location(from)
	if !ok {
		return nil, fmt.Errorf("estimate row: unknown location %q", from)
	}

	row := make(map[string]float64, len(ids))
	targets := make([]string, 0, len(ids))
	targetCoords := make([]domain.Coordinates, 0, len(ids))
	for _, to := range ids {
		if to == from {
			continue
		}
		c, _ := league.Location(to)
		// Shared grounds need no lookup.
		if c == fromCoord {
			row[to] = 0
			continue
		}
		targets = append(targets, to)
		targetCoords = append(targetCoords, c)
	}
	if len(targets) == 0 {
		return row, nil
	}

	// Prefer batched lookups when supported to reduce external API calls.
	if mp, ok := provider.(ports.TravelTimeMatrixProvider); ok {
		res, err := mp.EstimateMany(ctx, fromCoord, targetCoords)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("travel matrix: row from %q failed: %v", from, err)
			return row, nil
		}
		for i, to := range targets {
			if est, ok := res[targetCoords[i].Key()]; ok {
				row[to] = est.Hours
			}
		}
		return row, nil
	}

	for i, to := range targets {
		est, err := provider.Estimate(ctx, fromCoord, targetCoords[i])
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("travel matrix: pair %q -> %q failed: %v", from, to, err)
			continue
		}
		row[to] = est.Hours
	}
	return row, nil
}

// ValidateTravelTimeMatrix is the single total-definedness check: every
// ordered pair of league locations must map to a finite, non-negative number
// of hours.
func ValidateTravelTimeMatrix(league *domain.League, matrix domain.TravelTimeMatrix) error {
	ids := league.LocationIDs()

	if missing := matrix.MissingPairs(ids); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, p := range missing {
			names = append(names, p.String())
		}
		return fmt.Errorf("%w: %d pair(s) without travel time: %s",
			ErrMissingTravelTime, len(missing), strings.Join(names, ", "))
	}

	for _, a := range ids {
		for _, b := range ids {
			h, _ := matrix.Hours(a, b)
			if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
				return fmt.Errorf("%w: invalid duration %v for %s -> %s", ErrMissingTravelTime, h, a, b)
			}
		}
	}
	return nil
}
