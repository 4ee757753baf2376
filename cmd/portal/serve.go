package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"carrier-search-portal/internal/api/portal"
	"carrier-search-portal/internal/platform/logger"

	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portal HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		carrierAPI := func(ctx context.Context) error {
			_, err := a.client.Health(ctx)
			return err
		}
		router := portal.NewRouter(portal.NewHandler(a.portal, carrierAPI), cfg.CORSOrigins)

		port := cfg.Port
		if servePort != "" {
			port = servePort
		}
		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Log.Error().Err(err).Msg("portal shutdown")
			}
		}()

		logger.Log.Info().
			Str("addr", srv.Addr).
			Str("carrier_api", a.client.BaseURL()).
			Str("storage", cfg.StorageBackend).
			Msg("portal listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Log.Info().Msg("portal stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (or set PORT)")
}
