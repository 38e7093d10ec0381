package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"fixture-trip-planner/internal/api/dto"
	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/ports"
	"fixture-trip-planner/internal/services"
)

// Planner runs one planning pipeline.
type Planner interface {
	Plan(ctx context.Context, req services.PlanTripRequest) (*services.PlanTripResult, error)
}

type PlanHandler struct {
	Repo          ports.FixtureRepository
	Planner       Planner
	DefaultOrigin domain.Origin
	Defaults      services.PlanOptions

	validate *validator.Validate
}

func NewPlanHandler(repo ports.FixtureRepository, planner Planner, origin domain.Origin, defaults services.PlanOptions) *PlanHandler {
	return &PlanHandler{
		Repo:          repo,
		Planner:       planner,
		DefaultOrigin: origin,
		Defaults:      defaults,
		validate:      validator.New(),
	}
}

// Plan decodes the request, resolves fixtures (request body or repository)
// and runs the planner. Input and unsolvable problems answer 422 with the
// failing stage; a solve that ran out of time answers 504.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if h.validate == nil {
		h.validate = validator.New()
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	svcReq := services.PlanTripRequest{
		Origin:  h.DefaultOrigin,
		Options: h.Defaults,
	}
	if req.Origin != nil {
		svcReq.Origin = domain.Origin{
			Name:     strings.TrimSpace(req.Origin.Name),
			Location: domain.Coordinates{Lat: req.Origin.Lat, Lon: req.Origin.Lon},
		}
	}
	if req.MinIntervalHours != nil {
		svcReq.Options.MinIntervalHours = *req.MinIntervalHours
	}
	if req.BufferHours != nil {
		svcReq.Options.Buffer = time.Duration(*req.BufferHours * float64(time.Hour))
	}
	if req.SpanRelTol != nil {
		svcReq.Options.Objectives.SpanRelTol = *req.SpanRelTol
	}
	if req.TravelRelTol != nil {
		svcReq.Options.Objectives.TravelRelTol = *req.TravelRelTol
	}

	if len(req.Fixtures) > 0 {
		svcReq.Fixtures = make([]domain.Fixture, 0, len(req.Fixtures))
		for _, f := range req.Fixtures {
			svcReq.Fixtures = append(svcReq.Fixtures, domain.Fixture{
				ID:          domain.FixtureID(f.HomeTeam, f.AwayTeam),
				Kickoff:     f.Kickoff,
				HomeTeam:    f.HomeTeam,
				AwayTeam:    f.AwayTeam,
				Stadium:     domain.Coordinates{Lat: f.Lat, Lon: f.Lon},
				StadiumName: f.StadiumName,
				StadiumCity: f.StadiumCity,
			})
		}
	} else {
		fixtures, err := h.Repo.ListFixtures(r.Context())
		if err != nil {
			log.Printf("list fixtures failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		svcReq.Fixtures = fixtures
	}

	res, err := h.Planner.Plan(r.Context(), svcReq)
	if err != nil {
		writePlanError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, planResponse(res))
}

func writePlanError(w http.ResponseWriter, r *http.Request, err error) {
	body := dto.PlanErrorResponse{Error: err.Error()}
	var se *services.StageError
	if errors.As(err, &se) {
		body.Stage = string(se.Stage)
	}

	switch {
	case services.IsInputError(err):
		writeJSON(w, r, http.StatusUnprocessableEntity, body)
	case errors.Is(err, services.ErrCancelled):
		writeJSON(w, r, http.StatusGatewayTimeout, body)
	default:
		log.Printf("plan trip failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func planResponse(res *services.PlanTripResult) dto.PlanResponse {
	it := res.Itinerary
	out := dto.PlanResponse{
		RunID:            res.RunID,
		Fingerprint:      res.Fingerprint,
		Optimal:          res.Optimal,
		SpanHours:        it.SpanHours,
		TravelHours:      it.TravelHours,
		MatchTravelHours: it.MatchTravelHours,
		Objectives:       make([]dto.ObjectiveResponse, 0, len(res.Objectives)),
		Stops:            make([]dto.PlanStopResponse, 0, len(it.Stops)),
	}
	for _, o := range res.Objectives {
		out.Objectives = append(out.Objectives, dto.ObjectiveResponse{
			Name:    o.Name,
			Optimum: o.Optimum,
			Value:   o.Value,
			Optimal: o.Optimal,
		})
	}
	for _, s := range it.Stops {
		out.Stops = append(out.Stops, dto.PlanStopResponse{
			Match:       s.FixtureID,
			HomeTeam:    s.HomeTeam,
			AwayTeam:    s.AwayTeam,
			StadiumName: s.StadiumName,
			StadiumCity: s.StadiumCity,
			Lat:         s.Location.Lat,
			Lon:         s.Location.Lon,
			MatchDate:   s.Display(),
			Kickoff:     s.Kickoff,
		})
	}
	return out
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Namespace()+" failed "+fe.Tag())
	}
	return strings.Join(msgs, "; ")
}
