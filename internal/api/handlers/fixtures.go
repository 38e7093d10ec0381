package handlers

import (
	"log"
	"net/http"

	"fixture-trip-planner/internal/api/dto"
	"fixture-trip-planner/internal/ports"
)

// FixtureHandler exposes read-only fixture retrieval endpoints.
type FixtureHandler struct {
	Repo ports.FixtureRepository
}

func (h *FixtureHandler) List(w http.ResponseWriter, r *http.Request) {
	fixtures, err := h.Repo.ListFixtures(r.Context())
	if err != nil {
		log.Printf("list fixtures failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListFixturesResponse{
		Fixtures: make([]dto.FixtureResponse, 0, len(fixtures)),
	}
	for _, f := range fixtures {
		res.Fixtures = append(res.Fixtures, dto.FixtureResponse{
			ID:          f.ID,
			HomeTeam:    f.HomeTeam,
			AwayTeam:    f.AwayTeam,
			Kickoff:     f.Kickoff,
			StadiumName: f.StadiumName,
			StadiumCity: f.StadiumCity,
			Lat:         f.Stadium.Lat,
			Lon:         f.Stadium.Lon,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
