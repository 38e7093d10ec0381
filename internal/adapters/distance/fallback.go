package distance

import (
	"context"
	"errors"
	"log"

	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/ports"
)

// FallbackProvider asks Primary first and answers from Fallback for every
// pair Primary fails on or leaves out. Context errors are returned as is.
type FallbackProvider struct {
	Primary  ports.TravelTimeProvider
	Fallback ports.TravelTimeProvider
}

func NewFallbackProvider(primary, fallback ports.TravelTimeProvider) *FallbackProvider {
	return &FallbackProvider{Primary: primary, Fallback: fallback}
}

func (f *FallbackProvider) Estimate(ctx context.Context, from, to domain.Coordinates) (ports.TravelEstimate, error) {
	if f.Primary != nil {
		est, err := f.Primary.Estimate(ctx, from, to)
		if err == nil {
			return est, nil
		}
		if ctx.Err() != nil {
			return ports.TravelEstimate{}, ctx.Err()
		}
		log.Printf("travel fallback: %s -> %s: %v", from.Key(), to.Key(), err)
	}
	if f.Fallback == nil {
		return ports.TravelEstimate{}, errors.New("travel fallback: no provider available")
	}
	return f.Fallback.Estimate(ctx, from, to)
}

func (f *FallbackProvider) EstimateMany(
	ctx context.Context,
	from domain.Coordinates,
	to []domain.Coordinates,
) (map[string]ports.TravelEstimate, error) {
	out := make(map[string]ports.TravelEstimate, len(to))

	if mp, ok := f.Primary.(ports.TravelTimeMatrixProvider); ok {
		res, err := mp.EstimateMany(ctx, from, to)
		switch {
		case err == nil:
			for k, v := range res {
				out[k] = v
			}
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			log.Printf("travel fallback: row from %s: %v", from.Key(), err)
		}
	}

	for _, c := range to {
		if _, ok := out[c.Key()]; ok {
			continue
		}
		var (
			est ports.TravelEstimate
			err error
		)
		if _, batched := f.Primary.(ports.TravelTimeMatrixProvider); batched {
			if f.Fallback == nil {
				continue
			}
			est, err = f.Fallback.Estimate(ctx, from, c)
		} else {
			est, err = f.Estimate(ctx, from, c)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		out[c.Key()] = est
	}
	return out, nil
}
