// Package app wires the coop controller's components together.
package app

import (
	"context"
	"fmt"

	"coopcontrol/internal/api"
	"coopcontrol/internal/astro"
	"coopcontrol/internal/clock"
	"coopcontrol/internal/config"
	"coopcontrol/internal/device"
	"coopcontrol/internal/events"
	"coopcontrol/internal/metrics"
	"coopcontrol/internal/scheduler"
	"coopcontrol/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the long-lived components built from one configuration
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Clock   clock.Clock
	Metrics *metrics.Metrics
	Events  *events.Hub
	Records *astro.Store
	Astro   *astro.Service
	Devices *device.Repository

	db *gorm.DB
}

// New opens the database, migrates the schema and builds every component
func New(cfg *config.Config, logger *zap.Logger, clk clock.Clock) (*App, error) {
	if clk == nil {
		clk = clock.NewRealClock()
	}

	db, err := storage.Open(cfg.Database, clk, logger)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	hub := events.NewHub(clk, logger.Named("events"), m.SetEventClients)

	records := astro.NewStore(db, cfg.Location(), logger.Named("astro"))
	devices := device.NewRepository(db, hub, logger.Named("device"))

	if err := records.Migrate(); err != nil {
		storage.Close(db)
		return nil, err
	}
	if err := devices.Migrate(); err != nil {
		storage.Close(db)
		return nil, err
	}

	fetcher := astro.NewFetcher(cfg.Provider, logger.Named("provider"))
	service := astro.NewService(fetcher, records, cfg.App, clk, m, hub, logger.Named("astro"))

	return &App{
		Config:  cfg,
		Logger:  logger,
		Clock:   clk,
		Metrics: m,
		Events:  hub,
		Records: records,
		Astro:   service,
		Devices: devices,
		db:      db,
	}, nil
}

// Server builds the HTTP API for this app
func (a *App) Server() *api.Server {
	return api.NewServer(a.Config.HTTP, api.Dependencies{
		Astro:   a.Astro,
		Records: a.Records,
		Devices: a.Devices,
		Events:  a.Events,
		Metrics: a.Metrics,
		Clock:   a.Clock,
	}, a.Logger.Named("api"))
}

// Serve runs the HTTP API and the daily scheduler until ctx is cancelled
func (a *App) Serve(ctx context.Context) error {
	server := a.Server()
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	sched := scheduler.New(a.Config.Schedule, a.Config.Location(), a.Astro.AddDaily, a.Logger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		server.Stop()
		return err
	}

	a.Logger.Info("Coop controller running",
		zap.String("env", a.Config.Env),
		zap.String("addr", a.Config.HTTP.Addr))

	<-ctx.Done()

	a.Logger.Info("Shutting down gracefully...")
	sched.Stop()
	a.Events.Close()
	return server.Stop()
}

// Close releases the database
func (a *App) Close() error {
	return storage.Close(a.db)
}
