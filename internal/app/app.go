// Package app wires the services shared by the toaster commands.
package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/colonyops/toaster/internal/core/config"
	"github.com/colonyops/toaster/internal/core/logging"
	"github.com/colonyops/toaster/internal/core/toast"
	"github.com/colonyops/toaster/internal/data/db"
	"github.com/colonyops/toaster/internal/data/stores"
	"github.com/colonyops/toaster/internal/sweep"
	"github.com/colonyops/toaster/internal/toaster"
)

// App is the central entry point for toaster operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Config   *config.Config
	DB       *db.DB
	History  *stores.HistoryStore // nil when history is disabled
	Registry *toaster.Registry
	Toaster  *toaster.Toaster
	Metrics  *toaster.Metrics
	Gatherer prometheus.Gatherer
}

// Options customizes New.
type Options struct {
	// Metrics receives the registry metrics. Nil uses the Prometheus
	// default registry.
	Metrics *prometheus.Registry
	// Scheduler drives notification timers. Nil uses the system clock.
	Scheduler toast.Scheduler
}

// New builds an App from cfg. database may be nil, in which case history is
// not recorded.
func New(cfg *config.Config, database *db.DB, opts Options) *App {
	regOpts := []toaster.RegistryOption{
		toaster.WithSettings(cfg.SettingsFor),
		toaster.WithDefaultRemoveDelay(cfg.RemoveDelay),
	}
	if opts.Scheduler != nil {
		regOpts = append(regOpts, toaster.WithScheduler(opts.Scheduler))
	}
	reg := toaster.NewRegistry(regOpts...)
	toaster.RegisterDebugLogger(reg, logging.Component("registry"))

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if opts.Metrics != nil {
		registerer, gatherer = opts.Metrics, opts.Metrics
	}

	a := &App{
		Config:   cfg,
		DB:       database,
		Registry: reg,
		Metrics:  toaster.RegisterMetrics(reg, toaster.WithRegisterer(registerer)),
		Gatherer: gatherer,
	}

	tcfg := toaster.Config{
		Durations: cfg.KindDurations(),
		Logger:    logging.Component("toaster"),
	}
	if database != nil && cfg.History.Enabled {
		a.History = stores.NewHistoryStore(database, cfg.History.Retention)
		tcfg.History = a.History
	}
	a.Toaster = toaster.New(reg, tcfg)

	return a
}

// HistorySource returns the notification history, or nil when disabled.
func (a *App) HistorySource() toast.History {
	if a.History == nil {
		return nil
	}
	return a.History
}

// StartSweep deletes expired history in the background until ctx is done.
// It does nothing without history or a max age.
func (a *App) StartSweep(ctx context.Context) {
	h := a.Config.History
	if a.History == nil || h.MaxAge <= 0 || h.SweepInterval <= 0 {
		return
	}
	go sweep.Start(ctx, a.History, h.SweepInterval, h.MaxAge)
}

// Close stops every pending timer and closes the database.
func (a *App) Close() error {
	a.Registry.Close()
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
