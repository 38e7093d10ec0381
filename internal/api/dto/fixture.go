package dto

import "time"

type FixtureResponse struct {
	ID          string    `json:"id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	Kickoff     time.Time `json:"kickoff"`
	StadiumName string    `json:"stadium_name"`
	StadiumCity string    `json:"stadium_city"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
}

type ListFixturesResponse struct {
	Fixtures []FixtureResponse `json:"fixtures"`
}
