package dto

import "time"

type OriginRequest struct {
	Name string  `json:"name" validate:"required"`
	Lat  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon  float64 `json:"lon" validate:"gte=-180,lte=180"`
}

type FixtureRequest struct {
	HomeTeam    string    `json:"home_team" validate:"required"`
	AwayTeam    string    `json:"away_team" validate:"required,nefield=HomeTeam"`
	Kickoff     time.Time `json:"kickoff" validate:"required"`
	StadiumName string    `json:"stadium_name"`
	StadiumCity string    `json:"stadium_city"`
	Lat         float64   `json:"lat" validate:"gte=-90,lte=90"`
	Lon         float64   `json:"lon" validate:"gte=-180,lte=180"`
}

// PlanRequest overrides the server defaults for one run. Fixtures, when
// given, replace the stored league.
type PlanRequest struct {
	Origin           *OriginRequest   `json:"origin"`
	MinIntervalHours *float64         `json:"min_interval_hours" validate:"omitempty,gte=0"`
	BufferHours      *float64         `json:"buffer_hours" validate:"omitempty,gte=0"`
	SpanRelTol       *float64         `json:"span_reltol" validate:"omitempty,gte=0"`
	TravelRelTol     *float64         `json:"travel_reltol" validate:"omitempty,gte=0"`
	Fixtures         []FixtureRequest `json:"fixtures" validate:"omitempty,dive"`
}

type PlanStopResponse struct {
	Match       string    `json:"match"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	StadiumName string    `json:"stadium_name"`
	StadiumCity string    `json:"stadium_city"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	MatchDate   string    `json:"match_date"`
	Kickoff     time.Time `json:"kickoff"`
}

type ObjectiveResponse struct {
	Name    string  `json:"name"`
	Optimum float64 `json:"optimum"`
	Value   float64 `json:"value"`
	Optimal bool    `json:"optimal"`
}

type PlanResponse struct {
	RunID            string              `json:"run_id"`
	Fingerprint      string              `json:"fingerprint"`
	Optimal          bool                `json:"optimal"`
	SpanHours        float64             `json:"span_hours"`
	TravelHours      float64             `json:"travel_hours"`
	MatchTravelHours float64             `json:"match_travel_hours"`
	Objectives       []ObjectiveResponse `json:"objectives"`
	Stops            []PlanStopResponse  `json:"stops"`
}

type PlanErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}
