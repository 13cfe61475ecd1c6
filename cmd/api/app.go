package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkordes/tripplanner/internal/config"
	"github.com/pkordes/tripplanner/internal/events"
	"github.com/pkordes/tripplanner/internal/kv"
	"github.com/pkordes/tripplanner/internal/repo"
	"github.com/pkordes/tripplanner/internal/service"
)

// app is the storage and service graph shared by the commands.
type app struct {
	broker   *events.Broker
	trips    *service.TripStore
	packing  *service.PackingService
	timeline *service.TimelineService
	export   *service.ExportService

	closers []func() error
}

// Close releases everything newApp opened, most recent first.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// newApp opens the configured store and event publishers, builds the
// services and loads the trip collection.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}

	store, closeStore, err := kv.Open(ctx, kv.Options{
		Driver:      kv.Driver(cfg.StoreDriver),
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)
	logger.Info("store opened", "driver", cfg.StoreDriver)

	a.broker = events.NewBroker(events.DefaultBuffer, logger)
	publishers := events.Multi{a.broker}
	switch cfg.EventsMode {
	case config.EventsRabbitMQ:
		p, err := events.DialRabbit(cfg.RabbitMQURL)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, p.Close)
		publishers = append(publishers, p)
		logger.Info("publishing events to rabbitmq", "exchange", events.Exchange)
	case config.EventsGCPPubSub:
		p, err := events.DialPubSub(ctx, cfg.GCPProjectID, cfg.PubSubTopic)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, p.Close)
		publishers = append(publishers, p)
		logger.Info("publishing events to pubsub", "project", cfg.GCPProjectID, "topic", cfg.PubSubTopic)
	}

	tripRepo := repo.NewTripRepo(store, logger)
	packingRepo := repo.NewPackingRepo(store, logger)
	timelineRepo := repo.NewTimelineRepo(store, logger)

	opts := []service.Option{service.WithPublisher(publishers), service.WithLogger(logger)}
	a.trips = service.NewTripStore(tripRepo, opts...)
	a.packing = service.NewPackingService(a.trips, packingRepo, opts...)
	a.timeline = service.NewTimelineService(a.trips, timelineRepo, opts...)
	a.trips.CascadeTo(a.packing, a.timeline)
	a.export = service.NewExportService(a.trips, a.packing)

	if err := a.trips.Load(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("load trips: %w", err)
	}
	logger.Info("trips loaded", "count", len(a.trips.List()))
	return a, nil
}

// closeQuietly logs a Close error instead of returning it.
func closeQuietly(logger *slog.Logger, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
