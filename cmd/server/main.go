package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"fixture-trip-planner/internal/api"
	"fixture-trip-planner/internal/api/handlers"
	"fixture-trip-planner/internal/app"
	"fixture-trip-planner/internal/config"
)

// main is the application composition root.
// It wires concrete adapters (SQL store, ORS, engine) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	router := api.NewRouter(
		&handlers.FixtureHandler{Repo: a.Fixtures},
		handlers.NewPlanHandler(a.Fixtures, a.Planner, a.Origin(), a.PlanOptions()),
	)

	// Write timeout leaves room for a cold travel cache plus the solve timeout.
	log.Printf("Server listening addr=:%s db=%s", cfg.Port, a.Dialect)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.SolveTimeout + 120*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
