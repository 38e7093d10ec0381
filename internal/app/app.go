// Package app assembles concrete adapters behind ports from a Config. It is
// shared by the server, CLI and dbtool binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"fixture-trip-planner/internal/adapters/cache"
	"fixture-trip-planner/internal/adapters/distance"
	"fixture-trip-planner/internal/adapters/engine"
	"fixture-trip-planner/internal/adapters/football"
	"fixture-trip-planner/internal/adapters/repositories"
	"fixture-trip-planner/internal/config"
	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/platform/db"
	"fixture-trip-planner/internal/ports"
	"fixture-trip-planner/internal/services"
)

const travelCacheTTL = 30 * 24 * time.Hour

// App holds the wired adapters. Close releases the database and Redis
// connections.
type App struct {
	Config   config.Config
	DB       *sql.DB
	Dialect  db.Dialect
	Fixtures *repositories.SQLFixtureRepository
	Provider ports.TravelTimeProvider
	Geocoder ports.Geocoder
	Tracer   ports.RouteTracer
	Planner  *services.TripPlanner

	redis *redis.Client
}

// New opens the configured database, creates the schema and wires the
// travel-time stack. Without an ORS key travel times come from the haversine
// estimate alone and geocoding is unavailable.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	dialect, err := db.DialectFor(cfg.DBDriver)
	if err != nil {
		return nil, err
	}

	var conn *sql.DB
	if dialect == db.Postgres {
		conn, err = db.Open(cfg.DatabaseURL)
	} else {
		conn, err = db.OpenSqlite(cfg.DBPath)
	}
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, DB: conn, Dialect: dialect}

	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		a.Close()
		return nil, err
	}
	a.Fixtures = repositories.NewSQLFixtureRepository(conn, dialect).ForSeason(cfg.LeagueID, cfg.Season)

	if err := a.wireTravel(ctx); err != nil {
		a.Close()
		return nil, err
	}

	eng, err := engine.New(cfg.Engine, cfg.EngineNodeLimit, cfg.EngineTimeBudget)
	if err != nil {
		a.Close()
		return nil, err
	}
	log.Printf("app: engine=%T glpk_available=%v", eng, engine.GLPKAvailable)

	a.Planner = services.NewTripPlanner(a.Provider, eng)
	return a, nil
}

func (a *App) wireTravel(ctx context.Context) error {
	haversine := distance.NewHaversineEstimator()
	if a.Config.ORSAPIKey == "" {
		log.Println("ORS_API_KEY not set: using haversine travel estimates")
		a.Provider = haversine
		return nil
	}

	var travelCache ports.TravelTimeCache = cache.NewSQLTravelCache(a.DB, a.Dialect)
	var geocodeCache ports.GeocodeCache = cache.NewSQLGeocodeCache(a.DB, a.Dialect)
	if a.Config.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: a.Config.RedisAddr})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("app: ping redis %s: %w", a.Config.RedisAddr, err)
		}
		travelCache = cache.NewRedisTravelCache(a.redis, travelCacheTTL)
		geocodeCache = cache.NewRedisGeocodeCache(a.redis)
	}

	ors, err := distance.NewORSTravelTimeProvider(a.Config.ORSAPIKey, travelCache, geocodeCache)
	if err != nil {
		return err
	}
	ors.WithCountry(countryCode(a.Config.LeagueCountry))

	a.Provider = distance.NewFallbackProvider(ors, haversine)
	a.Geocoder = ors
	a.Tracer = ors
	return nil
}

// FixtureSource returns the API-Football client, which needs both API keys.
func (a *App) FixtureSource() (ports.FixtureSource, error) {
	if a.Geocoder == nil {
		return nil, fmt.Errorf("app: ORS_API_KEY is required to geocode venues")
	}
	return football.NewClient(a.Config.FootballAPIKey, a.Geocoder, a.Config.LeagueCountry)
}

// Origin is the configured trip origin.
func (a *App) Origin() domain.Origin {
	return domain.Origin{
		Name:     a.Config.OriginName,
		Location: domain.Coordinates{Lat: a.Config.OriginLat, Lon: a.Config.OriginLon},
	}
}

// PlanOptions converts the configured defaults.
func (a *App) PlanOptions() services.PlanOptions {
	opts := services.DefaultPlanOptions()
	opts.MinIntervalHours = a.Config.MinIntervalHours
	opts.Buffer = time.Duration(a.Config.BufferHours * float64(time.Hour))
	opts.Objectives.SpanRelTol = a.Config.SpanRelTol
	opts.Objectives.TravelRelTol = a.Config.TravelRelTol
	opts.SolveTimeout = a.Config.SolveTimeout
	return opts
}

func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

// countryCode maps the league countries the football API uses to the ISO
// codes the geocoder filters on. Unknown names disable the filter.
func countryCode(country string) string {
	switch country {
	case "United Kingdom", "England":
		return "GB"
	case "Brazil":
		return "BR"
	case "Spain":
		return "ES"
	case "France":
		return "FR"
	case "Germany":
		return "DE"
	case "Italy":
		return "IT"
	}
	return ""
}
