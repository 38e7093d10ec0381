package domain

import "time"

const (
	StartFixtureID = "Start"
	EndFixtureID   = "End"
)

// Fixture is a single scheduled match between two teams at a given time and
// stadium. Fixtures are immutable once loaded.
type Fixture struct {
	ID          string
	Kickoff     time.Time
	HomeTeam    string
	AwayTeam    string
	Stadium     Coordinates
	StadiumName string
	StadiumCity string
}

// FixtureID derives the identifier of the fixture hosted by home against away.
func FixtureID(home, away string) string {
	return home + " x " + away
}

// IsSynthetic reports whether the fixture is one of the Start/End bookends.
func (f Fixture) IsSynthetic() bool {
	return f.ID == StartFixtureID || f.ID == EndFixtureID
}
