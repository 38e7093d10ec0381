package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// DefaultBuffer separates the synthetic Start/End fixtures from the first and
// last real kickoff.
const DefaultBuffer = 5 * 24 * time.Hour

var ErrInvalidLeague = errors.New("invalid league")

// League is an immutable snapshot of one season: the real fixtures, the teams
// they belong to, and the synthetic Start/End fixtures at the origin.
type League struct {
	Origin    Origin
	Fixtures  []Fixture
	Teams     []Team
	Start     Fixture
	End       Fixture
	StartTime time.Time
	EndTime   time.Time

	// Coverage maps every team (and the origin pseudo-team) to the ids of the
	// fixtures that count as visiting it.
	Coverage map[string][]string

	byID   map[string]Fixture
	teamAt map[string]Coordinates
}

// BuildLeague validates fixtures and derives teams, coverage and the synthetic
// bookend fixtures. Fixtures are ordered by kickoff, then id. A team's stadium
// is taken from the first fixture it hosts in input order.
func BuildLeague(fixtures []Fixture, origin Origin, buffer time.Duration) (*League, error) {
	if len(fixtures) == 0 {
		return nil, fmt.Errorf("%w: no fixtures", ErrInvalidLeague)
	}
	if strings.TrimSpace(origin.Name) == "" {
		return nil, fmt.Errorf("%w: origin name must not be empty", ErrInvalidLeague)
	}
	if !origin.Location.Valid() {
		return nil, fmt.Errorf("%w: origin %q has invalid coordinates", ErrInvalidLeague, origin.Name)
	}
	if buffer < 0 {
		return nil, fmt.Errorf("%w: buffer must be >= 0, got %s", ErrInvalidLeague, buffer)
	}

	l := &League{
		Origin:   origin,
		Fixtures: make([]Fixture, 0, len(fixtures)),
		Coverage: make(map[string][]string),
		byID:     make(map[string]Fixture, len(fixtures)+2),
		teamAt:   make(map[string]Coordinates),
	}

	for i, f := range fixtures {
		if strings.TrimSpace(f.HomeTeam) == "" || strings.TrimSpace(f.AwayTeam) == "" {
			return nil, fmt.Errorf("%w: fixture #%d has an empty team", ErrInvalidLeague, i+1)
		}
		if f.ID == "" {
			f.ID = FixtureID(f.HomeTeam, f.AwayTeam)
		}
		if f.HomeTeam == origin.Name || f.AwayTeam == origin.Name {
			return nil, fmt.Errorf("%w: team %q collides with the origin name", ErrInvalidLeague, origin.Name)
		}
		if f.Kickoff.IsZero() {
			return nil, fmt.Errorf("%w: fixture %q has no kickoff", ErrInvalidLeague, f.ID)
		}
		if !f.Stadium.Valid() {
			return nil, fmt.Errorf("%w: fixture %q has invalid stadium coordinates", ErrInvalidLeague, f.ID)
		}
		if f.IsSynthetic() {
			return nil, fmt.Errorf("%w: fixture id %q is reserved", ErrInvalidLeague, f.ID)
		}
		if _, dup := l.byID[f.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate fixture %q", ErrInvalidLeague, f.ID)
		}

		l.byID[f.ID] = f
		l.Fixtures = append(l.Fixtures, f)

		if _, seen := l.teamAt[f.HomeTeam]; !seen {
			l.teamAt[f.HomeTeam] = f.Stadium
			l.Teams = append(l.Teams, Team{
				ID:          f.HomeTeam,
				Stadium:     f.Stadium,
				StadiumName: f.StadiumName,
				City:        f.StadiumCity,
			})
		}
	}

	slices.SortStableFunc(l.Fixtures, func(a, b Fixture) int {
		if c := a.Kickoff.Compare(b.Kickoff); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	slices.SortFunc(l.Teams, func(a, b Team) int { return strings.Compare(a.ID, b.ID) })

	for _, f := range l.Fixtures {
		l.Coverage[f.HomeTeam] = append(l.Coverage[f.HomeTeam], f.ID)
	}

	l.StartTime = l.Fixtures[0].Kickoff
	l.EndTime = l.Fixtures[len(l.Fixtures)-1].Kickoff

	l.Start = Fixture{
		ID:       StartFixtureID,
		Kickoff:  l.StartTime.Add(-buffer),
		HomeTeam: origin.Name,
		AwayTeam: origin.Name,
		Stadium:  origin.Location,
	}
	l.End = Fixture{
		ID:       EndFixtureID,
		Kickoff:  l.EndTime.Add(buffer),
		HomeTeam: origin.Name,
		AwayTeam: origin.Name,
		Stadium:  origin.Location,
	}
	l.byID[StartFixtureID] = l.Start
	l.byID[EndFixtureID] = l.End
	l.teamAt[origin.Name] = origin.Location
	l.Coverage[origin.Name] = []string{StartFixtureID, EndFixtureID}

	return l, nil
}

// Fixture looks up a fixture (real or synthetic) by id.
func (l *League) Fixture(id string) (Fixture, bool) {
	f, ok := l.byID[id]
	return f, ok
}

// AllFixtures returns Start, every real fixture in kickoff order, then End.
func (l *League) AllFixtures() []Fixture {
	out := make([]Fixture, 0, len(l.Fixtures)+2)
	out = append(out, l.Start)
	out = append(out, l.Fixtures...)
	out = append(out, l.End)
	return out
}

// TeamIDs lists the real teams, excluding the origin pseudo-team.
func (l *League) TeamIDs() []string {
	ids := make([]string, 0, len(l.Teams))
	for _, t := range l.Teams {
		ids = append(ids, t.ID)
	}
	return ids
}

// LocationIDs lists every location that needs travel times: the teams and
// the origin.
func (l *League) LocationIDs() []string {
	return append(l.TeamIDs(), l.Origin.Name)
}

// Location returns the coordinates of a team stadium or of the origin.
func (l *League) Location(id string) (Coordinates, bool) {
	c, ok := l.teamAt[id]
	return c, ok
}

// HoursSinceStart measures t against the earliest real kickoff, in hours.
func (l *League) HoursSinceStart(t time.Time) float64 {
	return t.Sub(l.StartTime).Hours()
}
