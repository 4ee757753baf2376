package main

import (
	"context"
	"flag"
	"os"

	"carrier-search-portal/internal/adapters/kv"
	"carrier-search-portal/internal/adapters/repositories"
	"carrier-search-portal/internal/config"
	"carrier-search-portal/internal/platform/db"
	"carrier-search-portal/internal/platform/logger"
)

// dbtool prepares a carrier catalog database: schema, catalog seed and the
// portal key/value table.
func main() {
	config.LoadDotEnv()
	logger.Init()
	cfg := config.LoadServer()

	driver := flag.String("driver", cfg.DBDriver, "database driver: sqlite or pgx")
	dbPath := flag.String("db", cfg.DBPath, "sqlite database path")
	seedPath := flag.String("seed", config.Get("SEED_PATH", "data/seeds/catalog.yaml"), "catalog seed file (.yaml or .json); empty uses the built-in catalog")
	withKV := flag.Bool("kv", false, "also create the portal key/value table")
	flag.Parse()

	if *driver != "sqlite" && cfg.DatabaseURL == "" {
		logger.Log.Fatal().Msg("DATABASE_URL is required")
	}

	conn, err := db.OpenDriver(*driver, *dbPath, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("open database")
	}
	defer conn.Close()

	ctx := context.Background()
	d := repositories.DialectFor(*driver)

	logger.Log.Info().Msg("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		logger.Log.Fatal().Err(err).Msg("schema initialization failed")
	}
	if *withKV {
		var initErr error
		if d == repositories.DialectPostgres {
			initErr = kv.NewSQLBackend(conn).InitSchema(ctx)
		} else {
			initErr = kv.NewSqliteBackend(conn).InitSchema(ctx)
		}
		if initErr != nil {
			logger.Log.Fatal().Err(initErr).Msg("kv schema initialization failed")
		}
	}
	logger.Log.Info().Msg("Schema ready.")

	seed := repositories.BuiltinCatalog()
	if *seedPath != "" {
		if seed, err = repositories.LoadSeed(*seedPath); err != nil {
			logger.Log.Fatal().Err(err).Msg("seeding failed")
		}
	}

	logger.Log.Info().Str("seed", *seedPath).Msg("Seeding database...")
	if err := repositories.SeedCatalog(ctx, conn, d, seed); err != nil {
		logger.Log.Error().Err(err).Msg("seeding failed")
		os.Exit(1)
	}
	logger.Log.Info().
		Int("aliases", len(seed.Aliases)).
		Int("routes", len(seed.Routes)).
		Msg("Seeding complete.")
}
