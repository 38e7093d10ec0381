package distance

import (
	"context"
	"fmt"

	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/ports"
)

type MockPair struct {
	From, To domain.Coordinates
	Hours    float64
}

// MockTravelTimeProvider answers only the pairs it was built with. Pairs are
// directional.
type MockTravelTimeProvider struct {
	m map[string]ports.TravelEstimate
}

func NewMockTravelTimeProvider(pairs []MockPair) *MockTravelTimeProvider {
	m := make(map[string]ports.TravelEstimate, len(pairs))
	for _, p := range pairs {
		m[p.From.Key()+"|"+p.To.Key()] = ports.TravelEstimate{Hours: p.Hours}
	}
	return &MockTravelTimeProvider{m: m}
}

func (p *MockTravelTimeProvider) Estimate(ctx context.Context, from, to domain.Coordinates) (ports.TravelEstimate, error) {
	if from == to {
		return ports.TravelEstimate{}, nil
	}
	r, ok := p.m[from.Key()+"|"+to.Key()]
	if !ok {
		return ports.TravelEstimate{}, fmt.Errorf("missing pair %q -> %q", from.Key(), to.Key())
	}

	return r, nil
}
