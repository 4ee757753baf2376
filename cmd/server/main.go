package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carrier-search-portal/internal/adapters/repositories"
	"carrier-search-portal/internal/api"
	"carrier-search-portal/internal/config"
	"carrier-search-portal/internal/platform/db"
	"carrier-search-portal/internal/platform/logger"
	"carrier-search-portal/internal/services"

	"golang.org/x/time/rate"
)

// main is the carrier search API composition root.
// It wires the SQL catalog behind the repository port and starts the HTTP server.
func main() {
	config.LoadDotEnv()
	logger.Init()
	cfg := config.LoadServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.OpenDriver(cfg.DBDriver, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("open database")
	}
	defer conn.Close()

	dialect := repositories.DialectFor(cfg.DBDriver)

	// Initialize schema and seed the catalog on startup for local runs.
	if err := initAndSeed(ctx, conn, dialect, cfg.SeedPath); err != nil {
		logger.Log.Fatal().Err(err).Msg("prepare catalog")
	}

	repo := repositories.NewSQLCarrierRepository(conn, dialect)
	router := api.NewRouter(services.NewCarrierCatalog(repo), api.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		SearchRate:  rate.Limit(cfg.SearchRatePerSec),
		SearchBurst: cfg.SearchRateBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error().Err(err).Msg("server shutdown")
		}
	}()

	logger.Log.Info().Str("addr", srv.Addr).Str("db_driver", dialect.String()).Msg("carrier search API listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatal().Err(err).Msg("server stopped")
	}
	logger.Log.Info().Msg("server stopped")
}

func initAndSeed(ctx context.Context, conn *sql.DB, d repositories.Dialect, seedPath string) error {
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	seed := repositories.BuiltinCatalog()
	if seedPath != "" {
		var err error
		if seed, err = repositories.LoadSeed(seedPath); err != nil {
			return fmt.Errorf("init and seed: %w", err)
		}
	}

	if err := repositories.SeedCatalog(ctx, conn, d, seed); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
