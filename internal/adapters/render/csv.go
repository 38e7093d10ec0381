// Package render writes planned itineraries as a CSV table and an HTML route
// map.
package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"fixture-trip-planner/internal/domain"
)

var csvHeader = []string{
	"Match", "Stadium Name", "Stadium City", "Stadium Lat", "Stadium Lon",
	"Home Team", "Away Team", "Match Date",
}

// WriteItineraryCSV writes one row per stop in visiting order, Start and End
// included.
func WriteItineraryCSV(w io.Writer, it *domain.Itinerary) error {
	if it == nil {
		return fmt.Errorf("write itinerary csv: itinerary is nil")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write itinerary csv: header: %w", err)
	}

	for _, s := range it.Stops {
		row := []string{
			s.FixtureID,
			s.StadiumName,
			s.StadiumCity,
			strconv.FormatFloat(s.Location.Lat, 'f', 6, 64),
			strconv.FormatFloat(s.Location.Lon, 'f', 6, 64),
			s.HomeTeam,
			s.AwayTeam,
			s.Display(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write itinerary csv: stop %q: %w", s.FixtureID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write itinerary csv: flush: %w", err)
	}
	return nil
}
