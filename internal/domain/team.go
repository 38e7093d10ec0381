package domain

// Team is a home side of the league together with its stadium.
type Team struct {
	ID          string
	Stadium     Coordinates
	StadiumName string
	City        string
}

// Origin is the fixed departure and return point of a trip. It acts as a
// pseudo-team owning the synthetic Start and End fixtures.
type Origin struct {
	Name     string
	Location Coordinates
	City     string
}
