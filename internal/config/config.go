package config

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the resolved runtime configuration shared by the binaries.
type Config struct {
	Port        string
	DBDriver    string
	DBPath      string
	DatabaseURL string
	RedisAddr   string
	SeedPath    string

	ORSAPIKey      string
	FootballAPIKey string
	LeagueID       int
	Season         int
	LeagueCountry  string

	OriginName string
	OriginLat  float64
	OriginLon  float64

	MinIntervalHours float64
	BufferHours      float64
	SpanRelTol       float64
	TravelRelTol     float64
	SolveTimeout     time.Duration

	// Engine is "auto", "glpk" or "bnb". Auto prefers GLPK when the binary
	// was built with the glpk tag.
	Engine           string
	EngineNodeLimit  int
	EngineTimeBudget time.Duration
}

// Load reads a .env file when present and resolves every setting from the
// environment, applying defaults for anything unset.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := Config{
		Port:           Get("PORT", "8080"),
		DBDriver:       strings.ToLower(Get("DB_DRIVER", "sqlite")),
		DBPath:         Get("DB_PATH", "data/app.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		SeedPath:       Get("SEED_PATH", "data/seeds/fixtures.json"),
		ORSAPIKey:      os.Getenv("ORS_API_KEY"),
		FootballAPIKey: os.Getenv("FOOTBALL_API_KEY"),
		LeagueCountry:  Get("LEAGUE_COUNTRY", "United Kingdom"),
		OriginName:     Get("ORIGIN_NAME", "Heathrow Airport"),
		Engine:         strings.ToLower(Get("ENGINE", "auto")),
	}

	var err error
	if cfg.LeagueID, err = getInt("LEAGUE_ID", 39); err != nil {
		return Config{}, err
	}
	if cfg.Season, err = getInt("SEASON", 2022); err != nil {
		return Config{}, err
	}
	if cfg.OriginLat, err = getFloat("ORIGIN_LAT", 51.4700); err != nil {
		return Config{}, err
	}
	if cfg.OriginLon, err = getFloat("ORIGIN_LON", -0.4543); err != nil {
		return Config{}, err
	}
	if cfg.MinIntervalHours, err = getFloat("MIN_INTERVAL_HOURS", 12); err != nil {
		return Config{}, err
	}
	if cfg.BufferHours, err = getFloat("BUFFER_HOURS", 120); err != nil {
		return Config{}, err
	}
	if cfg.SpanRelTol, err = getFloat("SPAN_RELTOL", 0.2); err != nil {
		return Config{}, err
	}
	if cfg.TravelRelTol, err = getFloat("TRAVEL_RELTOL", 0.1); err != nil {
		return Config{}, err
	}
	if cfg.SolveTimeout, err = getDuration("SOLVE_TIMEOUT", 60*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.EngineNodeLimit, err = getInt("ENGINE_NODE_LIMIT", 0); err != nil {
		return Config{}, err
	}
	// Each objective stage gets one budget; two of them fit in the solve timeout.
	if cfg.EngineTimeBudget, err = getDuration("ENGINE_TIME_BUDGET", cfg.SolveTimeout*2/5); err != nil {
		return Config{}, err
	}
	if cfg.EngineTimeBudget < 0 {
		return Config{}, fmt.Errorf("config: ENGINE_TIME_BUDGET must be >= 0, got %s", cfg.EngineTimeBudget)
	}
	if cfg.SolveTimeout > 0 && 2*cfg.EngineTimeBudget >= cfg.SolveTimeout {
		return Config{}, fmt.Errorf("config: ENGINE_TIME_BUDGET %s leaves no room for two objective stages within SOLVE_TIMEOUT %s",
			cfg.EngineTimeBudget, cfg.SolveTimeout)
	}

	switch cfg.DBDriver {
	case "sqlite":
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return Config{}, fmt.Errorf("config: DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	switch cfg.Engine {
	case "auto", "glpk", "bnb":
	default:
		return Config{}, fmt.Errorf("config: unsupported ENGINE %q", cfg.Engine)
	}

	if cfg.MinIntervalHours < 0 {
		return Config{}, fmt.Errorf("config: MIN_INTERVAL_HOURS must be >= 0, got %v", cfg.MinIntervalHours)
	}
	if cfg.SpanRelTol < 0 || cfg.TravelRelTol < 0 {
		return Config{}, fmt.Errorf("config: SPAN_RELTOL and TRAVEL_RELTOL must be >= 0")
	}

	return cfg, nil
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("config: %s=%q is not a finite number", key, v)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return d, nil
}
