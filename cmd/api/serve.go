package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/pkordes/tripplanner/internal/config"
	"github.com/pkordes/tripplanner/internal/handler"
	"github.com/pkordes/tripplanner/internal/middleware"
	"github.com/pkordes/tripplanner/internal/provider"
	"github.com/pkordes/tripplanner/internal/view"
)

func newServeCommand() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if migrate && cfg.StoreDriver == "postgres" {
				if err := migrateUp(cmd.Context(), cfg.DatabaseURL, logger); err != nil {
					return err
				}
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending Postgres migrations before serving")
	return cmd
}

func serve(parent context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeQuietly(logger, a)

	money, err := view.NewMoney(cfg.Currency, cfg.Locale)
	if err != nil {
		return err
	}

	weather := provider.NewWeather(provider.Options{APIKey: cfg.OpenWeatherAPIKey})
	srv := handler.NewServer(handler.Deps{
		Trips:             a.trips,
		Packing:           a.packing,
		Timeline:          a.timeline,
		Export:            a.export,
		Weather:           provider.NewWeatherCache(weather, nil, provider.DefaultWeatherTTL),
		Places:            provider.NewPlaces(provider.Options{APIKey: cfg.FoursquareAPIKey}),
		Maps:              provider.NewMaps(provider.Options{APIKey: cfg.GoogleMapsAPIKey}),
		Money:             money,
		Live:              a.broker,
		CountdownInterval: cfg.CountdownInterval,
		AllowedOrigins:    cfg.CORSOrigins,
		Logger:            logger,
	})

	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RequestID generates a unique trace ID per request.
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", srv.Routes())

	// Explicit read timeouts prevent slowloris. WriteTimeout stays unset
	// because /ws/live holds its connection open; handlers bound their own
	// writes.
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	// Give in-flight requests up to 15 seconds to complete before forcefully
	// closing. Live WebSocket handlers exit when ctx is cancelled.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
