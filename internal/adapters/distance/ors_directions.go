package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/platform/obs"
	"fixture-trip-planner/internal/ports"
)

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Trace returns the routed polyline of one leg from the directions endpoint.
func (o *ORSTravelTimeProvider) Trace(ctx context.Context, from, to domain.Coordinates) (_ []domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Trace")(&err)

	if from == to {
		return []domain.Coordinates{from}, nil
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)
	payload, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{from.CoordsToList(), to.CoordsToList()},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}
	if len(dr.Features) == 0 {
		return nil, fmt.Errorf("directions %s -> %s: %w", from.Key(), to.Key(), ports.ErrNotFound)
	}

	line := dr.Features[0].Geometry.Coordinates
	out := make([]domain.Coordinates, 0, len(line))
	for _, p := range line {
		if len(p) < 2 {
			return nil, fmt.Errorf("invalid directions point %v", p)
		}
		out = append(out, domain.Coordinates{Lon: p[0], Lat: p[1]})
	}
	return out, nil
}
