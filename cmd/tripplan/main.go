// Command tripplan plans one trip from the stored league and writes the
// itinerary as CSV and the route as an HTML map.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"fixture-trip-planner/internal/adapters/render"
	"fixture-trip-planner/internal/app"
	"fixture-trip-planner/internal/config"
	"fixture-trip-planner/internal/services"
)

func main() {
	outputFlag := flag.String("output", ".", "output directory for the schedule and map")
	intervalFlag := flag.Float64("interval", -1, "minimum hours between visited kickoffs (default: MIN_INTERVAL_HOURS)")
	noMapFlag := flag.Bool("no-map", false, "skip the HTML route map")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err := run(context.Background(), cfg, *outputFlag, *intervalFlag, !*noMapFlag); err != nil {
		var se *services.StageError
		if errors.As(err, &se) {
			log.Fatalf("planning failed at %s stage: %v", se.Stage, se.Err)
		}
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config, outDir string, interval float64, withMap bool) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	fixtures, err := a.Fixtures.ListFixtures(ctx)
	if err != nil {
		return err
	}
	if len(fixtures) == 0 {
		return fmt.Errorf("no fixtures stored for league=%d season=%d; run dbtool seed or pull first", cfg.LeagueID, cfg.Season)
	}

	opts := a.PlanOptions()
	if interval >= 0 {
		opts.MinIntervalHours = interval
	}

	res, err := a.Planner.Plan(ctx, services.PlanTripRequest{
		Fixtures: fixtures,
		Origin:   a.Origin(),
		Options:  opts,
	})
	if err != nil {
		return err
	}

	it := res.Itinerary
	log.Printf("run_id=%s optimal=%t span_hours=%.1f travel_hours=%.2f match_travel_hours=%.2f",
		res.RunID, res.Optimal, it.SpanHours, it.TravelHours, it.MatchTravelHours)
	for _, s := range it.Stops {
		fmt.Printf("%-16s  %-40s  %s\n", s.Display(), s.FixtureID, s.StadiumName)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := writeFile(filepath.Join(outDir, "schedule.csv"), func(f *os.File) error {
		return render.WriteItineraryCSV(f, it)
	}); err != nil {
		return err
	}

	if withMap {
		m := render.NewRouteMap(a.Tracer)
		if err := writeFile(filepath.Join(outDir, "route_map.html"), func(f *os.File) error {
			return m.Render(ctx, f, it)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	log.Printf("wrote %s", path)
	return nil
}
