// Package football pulls league fixtures from API-Football and resolves each
// venue to coordinates.
package football

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/platform/httpx"
	"fixture-trip-planner/internal/platform/obs"
	"fixture-trip-planner/internal/ports"
)

const (
	defaultBaseURL = "https://api-football-v1.p.rapidapi.com"
	rapidAPIHost   = "api-football-v1.p.rapidapi.com"
)

// Client implements ports.FixtureSource against API-Football (RapidAPI).
type Client struct {
	session  *http.Client
	apiKey   string
	baseURL  string
	country  string
	geocoder ports.Geocoder
}

// NewClient builds a client. country is appended to venue queries so
// geocoding stays inside the league's country.
func NewClient(apiKey string, geocoder ports.Geocoder, country string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("football api key is empty")
	}
	if geocoder == nil {
		return nil, errors.New("football client: geocoder is nil")
	}
	return &Client{
		session:  &http.Client{Timeout: 30 * time.Second},
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		country:  strings.TrimSpace(country),
		geocoder: geocoder,
	}, nil
}

type fixturesResponse struct {
	Errors   json.RawMessage `json:"errors"`
	Response []struct {
		Fixture struct {
			ID    int    `json:"id"`
			Date  string `json:"date"`
			Venue struct {
				Name string `json:"name"`
				City string `json:"city"`
			} `json:"venue"`
		} `json:"fixture"`
		Teams struct {
			Home struct {
				Name string `json:"name"`
			} `json:"home"`
			Away struct {
				Name string `json:"name"`
			} `json:"away"`
		} `json:"teams"`
	} `json:"response"`
}

// FetchFixtures returns every fixture of the league season with geocoded
// stadiums. Venues are geocoded once per call.
func (c *Client) FetchFixtures(ctx context.Context, leagueID, season int) (_ []domain.Fixture, err error) {
	defer obs.Time(ctx, "football.FetchFixtures")(&err)

	q := url.Values{}
	q.Set("league", strconv.Itoa(leagueID))
	q.Set("season", strconv.Itoa(season))

	endpoint := c.baseURL + "/v3/fixtures?" + q.Encode()
	resp, err := httpx.DoWithRetry(ctx, c.session, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
		req.Header.Set("X-RapidAPI-Host", rapidAPIHost)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch fixtures: %w", err)
	}
	defer resp.Body.Close()

	var decoded fixturesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("fetch fixtures: decode response: %w", err)
	}
	if apiErr := apiErrors(decoded.Errors); apiErr != "" {
		return nil, fmt.Errorf("fetch fixtures: api error: %s", apiErr)
	}

	venues := make(map[string]domain.Coordinates)
	fixtures := make([]domain.Fixture, 0, len(decoded.Response))
	for _, r := range decoded.Response {
		home := strings.TrimSpace(r.Teams.Home.Name)
		away := strings.TrimSpace(r.Teams.Away.Name)
		if home == "" || away == "" {
			log.Printf("football: skipping fixture %d without teams", r.Fixture.ID)
			continue
		}

		kickoff, err := time.Parse(time.RFC3339, r.Fixture.Date)
		if err != nil {
			return nil, fmt.Errorf("fetch fixtures: fixture %d: parse date %q: %w", r.Fixture.ID, r.Fixture.Date, err)
		}

		name := strings.TrimSpace(r.Fixture.Venue.Name)
		city := strings.TrimSpace(r.Fixture.Venue.City)
		key := name + "|" + city
		loc, ok := venues[key]
		if !ok {
			if loc, err = c.locate(ctx, name, city); err != nil {
				return nil, fmt.Errorf("fetch fixtures: venue %q: %w", name, err)
			}
			venues[key] = loc
		}

		fixtures = append(fixtures, domain.Fixture{
			ID:          domain.FixtureID(home, away),
			Kickoff:     kickoff.UTC(),
			HomeTeam:    home,
			AwayTeam:    away,
			Stadium:     loc,
			StadiumName: name,
			StadiumCity: city,
		})
	}

	if len(fixtures) == 0 {
		return nil, fmt.Errorf("fetch fixtures: league %d season %d returned no fixtures", leagueID, season)
	}

	return fixtures, nil
}

// locate geocodes a venue, falling back from "stadium, city, country" to
// "city, country" and then "country".
func (c *Client) locate(ctx context.Context, name, city string) (domain.Coordinates, error) {
	for _, q := range venueQueries(name, city, c.country) {
		loc, err := c.geocoder.Geocode(ctx, q)
		if err == nil {
			return loc, nil
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return domain.Coordinates{}, err
		}
		log.Printf("football: no geocode match for %q, widening", q)
	}
	return domain.Coordinates{}, ports.ErrNotFound
}

func venueQueries(name, city, country string) []string {
	join := func(parts ...string) string {
		kept := parts[:0]
		for _, p := range parts {
			if p != "" {
				kept = append(kept, p)
			}
		}
		return strings.Join(kept, ", ")
	}

	var out []string
	seen := map[string]bool{}
	for _, q := range []string{join(name, city, country), join(city, country), country} {
		if q != "" && !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	return out
}

// apiErrors flattens API-Football's "errors" field, which is an empty array
// on success and an object of messages on failure.
func apiErrors(raw json.RawMessage) string {
	var msgs map[string]string
	if len(raw) == 0 || json.Unmarshal(raw, &msgs) != nil || len(msgs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(msgs))
	for k, v := range msgs {
		parts = append(parts, k+": "+v)
	}
	return strings.Join(parts, "; ")
}
