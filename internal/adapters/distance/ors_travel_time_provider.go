package distance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/platform/obs"
	"fixture-trip-planner/internal/ports"
)

// ORSTravelTimeProvider implements TravelTimeMatrixProvider, Geocoder and
// RouteTracer using OpenRouteService.
//
// It coordinates:
//   - Persistent travel-time caching per origin
//   - Persistent geocode caching with normalized keys
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type ORSTravelTimeProvider struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	profile      string
	country      string
	travelCache  ports.TravelTimeCache
	geocodeCache ports.GeocodeCache
}

func NewORSTravelTimeProvider(
	apiKey string,
	travelCache ports.TravelTimeCache,
	geocodeCache ports.GeocodeCache,
) (*ORSTravelTimeProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSTravelTimeProvider{
		session:      &http.Client{Timeout: 10 * time.Second},
		apiKey:       apiKey,
		baseURL:      "https://api.openrouteservice.org",
		profile:      "driving-car",
		travelCache:  travelCache,
		geocodeCache: geocodeCache,
	}, nil
}

// WithCountry restricts geocoding to an ISO country code such as "GB".
func (o *ORSTravelTimeProvider) WithCountry(code string) *ORSTravelTimeProvider {
	o.country = strings.ToUpper(strings.TrimSpace(code))
	return o
}

// normalize ensures consistent cache keys: NFC form, collapsed whitespace,
// lower case.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(norm.NFC.String(s)), " "))
}

// Delegate to the batched path to reuse caching and matrix logic.
func (o *ORSTravelTimeProvider) Estimate(ctx context.Context, from, to domain.Coordinates) (ports.TravelEstimate, error) {
	results, err := o.EstimateMany(ctx, from, []domain.Coordinates{to})
	if err != nil {
		return ports.TravelEstimate{}, fmt.Errorf("estimate %s -> %s: %w", from.Key(), to.Key(), err)
	}

	est, ok := results[to.Key()]
	if !ok {
		return ports.TravelEstimate{}, fmt.Errorf("no route from %s to %s", from.Key(), to.Key())
	}
	return est, nil
}

// Compute travel estimates from a single origin to many destinations.
// Unroutable destinations are left out of the result.
func (o *ORSTravelTimeProvider) EstimateMany(
	ctx context.Context,
	from domain.Coordinates,
	to []domain.Coordinates,
) (_ map[string]ports.TravelEstimate, err error) {
	defer obs.Time(ctx, "ors.EstimateMany")(&err)

	if !from.Valid() {
		return nil, errors.New("origin coordinates are invalid")
	}

	originKey := from.Key()
	out := make(map[string]ports.TravelEstimate, len(to))

	seen := make(map[string]struct{}, len(to))
	destKeys := make([]string, 0, len(to))
	destCoords := make(map[string]domain.Coordinates, len(to))
	for _, c := range to {
		k := c.Key()
		if k == originKey {
			out[k] = ports.TravelEstimate{}
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		destKeys = append(destKeys, k)
		destCoords[k] = c
	}

	if len(destKeys) == 0 {
		return out, nil
	}

	// Check persistent cache before issuing external API calls.
	if o.travelCache != nil {
		hits, err := o.travelCache.GetMany(ctx, originKey, destKeys)
		if err != nil {
			return nil, fmt.Errorf("ORS get travel cache: %w", err)
		}
		for k, v := range hits {
			out[k] = v
		}
	}

	misses := make([]string, 0, len(destKeys))
	missCoords := make([]domain.Coordinates, 0, len(destKeys))
	for _, k := range destKeys {
		if _, ok := out[k]; !ok {
			misses = append(misses, k)
			missCoords = append(missCoords, destCoords[k])
		}
	}

	if len(misses) == 0 {
		return out, nil
	}

	// Fetch a single origin->many matrix row for all cache misses.
	fetched, err := o.fetchMatrixRow(ctx, from, misses, missCoords)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix row: %w", err)
	}

	if len(fetched) < len(misses) {
		log.Printf("ors matrix: %d of %d destinations unroutable from %s", len(misses)-len(fetched), len(misses), originKey)
	}

	if o.travelCache != nil && len(fetched) > 0 {
		if err := o.travelCache.PutMany(ctx, originKey, fetched); err != nil {
			log.Printf("travel cache write failed: %v", err)
		}
	}

	for k, v := range fetched {
		out[k] = v
	}
	return out, nil
}
