package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/ports"
)

// straightLegPoints is how many points a leg gets when no routed geometry is
// available.
const straightLegPoints = 16

// RouteMap draws an itinerary on a geo chart: one labelled marker per stop
// and the leg geometry between consecutive stops. Legs are traced with
// Tracer when set; a leg the tracer cannot route is drawn as a straight line.
type RouteMap struct {
	Tracer ports.RouteTracer
	Title  string
}

func NewRouteMap(tracer ports.RouteTracer) *RouteMap {
	return &RouteMap{Tracer: tracer, Title: "Trip route"}
}

// Build assembles the chart without rendering it.
func (m *RouteMap) Build(ctx context.Context, it *domain.Itinerary) (*charts.Geo, error) {
	if it == nil || len(it.Stops) == 0 {
		return nil, errors.New("route map: itinerary is empty")
	}

	stops := make([]opts.GeoData, 0, len(it.Stops))
	for _, s := range it.Matches() {
		stops = append(stops, opts.GeoData{
			Name:  s.FixtureID,
			Value: []float64{s.Location.Lon, s.Location.Lat},
		})
	}
	origin := it.Stops[0]
	stops = append(stops, opts.GeoData{
		Name:  origin.HomeTeam,
		Value: []float64{origin.Location.Lon, origin.Location.Lat},
	})

	var route []opts.GeoData
	for i := 1; i < len(it.Stops); i++ {
		line, err := m.leg(ctx, it.Stops[i-1].Location, it.Stops[i].Location)
		if err != nil {
			return nil, err
		}
		for _, p := range line {
			route = append(route, opts.GeoData{Value: []float64{p.Lon, p.Lat}})
		}
	}

	geo := charts.NewGeo()
	geo.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: m.Title,
			Width:     "1000px",
			Height:    "800px",
		}),
		charts.WithTitleOpts(opts.Title{Title: m.Title}),
		charts.WithGeoComponentOpts(opts.GeoComponent{
			Map:    "world",
			Silent: opts.Bool(true),
		}),
	)

	geo.AddSeries("Route", types.ChartScatter, route)
	geo.AddSeries("Stops", types.ChartEffectScatter, stops,
		charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Formatter: "{b}",
		}),
	)

	return geo, nil
}

// Render builds the chart and writes it as a standalone HTML page.
func (m *RouteMap) Render(ctx context.Context, w io.Writer, it *domain.Itinerary) error {
	geo, err := m.Build(ctx, it)
	if err != nil {
		return err
	}
	if err := geo.Render(w); err != nil {
		return fmt.Errorf("route map: render: %w", err)
	}
	return nil
}

func (m *RouteMap) leg(ctx context.Context, from, to domain.Coordinates) ([]domain.Coordinates, error) {
	if m.Tracer != nil {
		line, err := m.Tracer.Trace(ctx, from, to)
		if err == nil && len(line) > 0 {
			return line, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			log.Printf("route map: trace %s -> %s failed, drawing straight leg: %v", from.Key(), to.Key(), err)
		}
	}
	return straightLeg(from, to, straightLegPoints), nil
}

// straightLeg interpolates n points from a to b inclusive.
func straightLeg(a, b domain.Coordinates, n int) []domain.Coordinates {
	if n < 2 || a == b {
		return []domain.Coordinates{a}
	}
	out := make([]domain.Coordinates, n)
	for i := range out {
		f := float64(i) / float64(n-1)
		out[i] = domain.Coordinates{
			Lon: a.Lon + f*(b.Lon-a.Lon),
			Lat: a.Lat + f*(b.Lat-a.Lat),
		}
	}
	return out
}
