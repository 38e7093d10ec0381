package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"fixture-trip-planner/internal/api/handlers"
)

// NewRouter wires HTTP handlers and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(fixtures *handlers.FixtureHandler, plans *handlers.PlanHandler) http.Handler {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.HandleFunc("/fixtures", fixtures.List).Methods(http.MethodGet)
	r.HandleFunc("/plans", plans.Plan).Methods(http.MethodPost)

	return r
}
