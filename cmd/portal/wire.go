package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"carrier-search-portal/internal/adapters/cache"
	"carrier-search-portal/internal/adapters/canvas"
	"carrier-search-portal/internal/adapters/carrierapi"
	"carrier-search-portal/internal/adapters/kv"
	"carrier-search-portal/internal/adapters/ors"
	"carrier-search-portal/internal/config"
	"carrier-search-portal/internal/platform/db"
	"carrier-search-portal/internal/platform/logger"
	"carrier-search-portal/internal/ports"
	"carrier-search-portal/internal/services"
	"carrier-search-portal/internal/services/mapgateway"
	"carrier-search-portal/internal/storage"

	"github.com/redis/go-redis/v9"
)

// app is the portal composition root shared by every command.
type app struct {
	client *carrierapi.Client
	portal *services.Portal
	close  func()
}

func buildApp(ctx context.Context, cfg config.Portal) (*app, error) {
	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	backend, conn, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	closers = append(closers, closeBackend)

	store := storage.NewStore(backend)
	if !store.IsAvailable(ctx) {
		logger.Ctx(ctx).Warn().Str("backend", cfg.StorageBackend).Msg("storage unavailable; history and preferences will not persist")
	}

	client := carrierapi.NewClient(cfg.CarrierAPIURL, &http.Client{})

	var sdk ports.MapSDK
	if cfg.ORSAPIKey != "" {
		s, err := newORSSDK(ctx, cfg, conn)
		if err != nil {
			closeAll()
			return nil, err
		}
		sdk = s
	} else {
		logger.Ctx(ctx).Info().Msg("ORS_API_KEY not set; route maps and place suggestions are disabled")
	}

	portal := services.NewPortal(
		client,
		storage.NewHistory(store),
		storage.NewPreferences(store),
		mapgateway.New(sdk),
	)

	return &app{client: client, portal: portal, close: closeAll}, nil
}

// openBackend returns the key/value backend for STORAGE_BACKEND. conn is the
// SQL connection behind it, or nil for redis and memory.
func openBackend(ctx context.Context, cfg config.Portal) (ports.KeyValueBackend, *sql.DB, func(), error) {
	switch strings.ToLower(cfg.StorageBackend) {
	case "memory":
		return kv.NewMemoryBackend(), nil, func() {}, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		}
		return kv.NewRedisBackend(rdb, kv.DefaultRedisPrefix), nil, func() { _ = rdb.Close() }, nil

	case "postgres", "pgx":
		conn, err := db.OpenDriver("pgx", cfg.DBPath, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		b := kv.NewSQLBackend(conn)
		if err := b.InitSchema(ctx); err != nil {
			conn.Close()
			return nil, nil, nil, err
		}
		return b, conn, func() { conn.Close() }, nil

	case "sqlite", "":
		conn, err := db.OpenSqlite(cfg.DBPath)
		if err != nil {
			return nil, nil, nil, err
		}
		b := kv.NewSqliteBackend(conn)
		if err := b.InitSchema(ctx); err != nil {
			conn.Close()
			return nil, nil, nil, err
		}
		return b, conn, func() { conn.Close() }, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// newORSSDK builds the OpenRouteService map environment and starts loading it.
// Geocodes are cached in the portal database when one is configured.
func newORSSDK(ctx context.Context, cfg config.Portal, conn *sql.DB) (*ors.SDK, error) {
	opts := []ors.ClientOption{ors.WithBaseURL(cfg.ORSBaseURL)}

	if conn != nil {
		gc := cache.NewSqliteGeocodeCache(conn)
		if strings.EqualFold(cfg.StorageBackend, "postgres") || strings.EqualFold(cfg.StorageBackend, "pgx") {
			gc = cache.NewSQLGeocodeCache(conn)
		}
		if err := gc.InitSchema(ctx); err != nil {
			return nil, err
		}
		opts = append(opts, ors.WithGeocodeCache(gc))
	}

	client, err := ors.NewClient(cfg.ORSAPIKey, opts...)
	if err != nil {
		return nil, err
	}

	sdk := ors.NewSDK(client, canvas.NewFactory())
	go func() {
		if err := sdk.Load(context.WithoutCancel(ctx)); err != nil {
			logger.Log.Error().Err(err).Msg("map SDK failed to load")
		}
	}()
	return sdk, nil
}
