package domain

import "time"

// DisplayLayout is the timestamp format used for itinerary output.
const DisplayLayout = "2006-01-02 15:04"

// ItineraryStop is one visited fixture of a planned trip. Start and End
// stops carry synthetic display times one day outside the real fixtures.
type ItineraryStop struct {
	FixtureID   string
	HomeTeam    string
	AwayTeam    string
	StadiumName string
	StadiumCity string
	Location    Coordinates
	Kickoff     time.Time
	DisplayAt   time.Time
}

// Display formats the stop's display timestamp.
func (s ItineraryStop) Display() string { return s.DisplayAt.Format(DisplayLayout) }

// Itinerary is the ordered outcome of one planning run: Start, one fixture
// per team in visiting order, then End.
type Itinerary struct {
	Stops []ItineraryStop

	// SpanHours is the kickoff gap between the first and last real fixture.
	SpanHours float64
	// TravelHours sums every selected leg, including legs to and from the origin.
	TravelHours float64
	// MatchTravelHours sums only the legs between two real fixtures.
	MatchTravelHours float64
}

// Matches returns the real fixture stops, excluding Start and End.
func (it *Itinerary) Matches() []ItineraryStop {
	if len(it.Stops) <= 2 {
		return nil
	}
	return it.Stops[1 : len(it.Stops)-1]
}
