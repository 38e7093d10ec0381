package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"fixture-trip-planner/internal/adapters/repositories"
	"fixture-trip-planner/internal/app"
	"fixture-trip-planner/internal/config"
)

const usage = `usage: dbtool <command>

commands:
  init   create the schema
  seed   init, then load fixtures from SEED_PATH (or -file)
  pull   init, then fetch LEAGUE_ID/SEASON from API-Football and store them
`

func main() {
	file := flag.String("file", "", "seed file (default: SEED_PATH)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	log.Println("Initializing database schema...")
	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	defer a.Close()
	log.Println("Schema ready.")

	switch flag.Arg(0) {
	case "init":
	case "seed":
		path := cfg.SeedPath
		if *file != "" {
			path = *file
		}
		log.Printf("Seeding database from %s...", path)
		n, err := repositories.SeedFromJSON(ctx, a.Fixtures, path)
		if err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
		log.Printf("Seeding complete. fixtures=%d", n)
	case "pull":
		src, err := a.FixtureSource()
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Pulling league=%d season=%d...", cfg.LeagueID, cfg.Season)
		fixtures, err := src.FetchFixtures(ctx, cfg.LeagueID, cfg.Season)
		if err != nil {
			log.Fatalf("pull failed: %v", err)
		}
		if err := a.Fixtures.SaveFixtures(ctx, cfg.LeagueID, cfg.Season, fixtures); err != nil {
			log.Fatalf("store failed: %v", err)
		}
		log.Printf("Pull complete. fixtures=%d", len(fixtures))
	default:
		flag.Usage()
		os.Exit(2)
	}
}
