package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chrissnell/glacierpost/internal/controllers/restserver"
	"github.com/chrissnell/glacierpost/internal/glacier"
	"github.com/chrissnell/glacierpost/internal/log"
	"github.com/chrissnell/glacierpost/internal/postprocess"
	"github.com/chrissnell/glacierpost/internal/storage"
	"github.com/chrissnell/glacierpost/internal/storage/sqlite"
	"github.com/chrissnell/glacierpost/internal/storage/timescaledb"
	"github.com/chrissnell/glacierpost/pkg/config"
)

// App represents the main application
type App struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
	serve  bool
	store  storage.Store
}

// Option configures an App
type Option func(*App)

// WithServe keeps the REST API running after the batch until shutdown
func WithServe() Option {
	return func(a *App) {
		a.serve = true
	}
}

// WithStore replaces the export stores named in the configuration
func WithStore(s storage.Store) Option {
	return func(a *App) {
		a.store = s
	}
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger, opts ...Option) *App {
	a := &App{
		cfg:    cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summary counts what one batch produced
type Summary struct {
	BatchID           uuid.UUID
	RunResults        int
	ClimateStatistics int
	Failures          int
}

// Run post-processes every configured glacier, exports the tables and, when serving,
// blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := a.store
	if store == nil {
		var err error
		store, err = OpenStores(ctx, a.cfg.Storage)
		if err != nil {
			return err
		}
	}
	defer store.Close()

	processor := postprocess.New(a.cfg)

	summary, batchErr := a.Batch(ctx, processor, store)
	log.Infow("batch complete", "batch_id", summary.BatchID, "run_results", summary.RunResults,
		"climate_statistics", summary.ClimateStatistics, "failures", summary.Failures)
	if batchErr != nil {
		log.Errorf("batch finished with errors: %v", batchErr)
	}

	if !a.serve {
		return batchErr
	}

	rc := config.RESTServerData{}
	if a.cfg.REST != nil {
		rc = *a.cfg.REST
	}
	ctrl, err := restserver.NewController(ctx, &wg, processor, rc, a.logger)
	if err != nil {
		return err
	}
	if err := ctrl.StartController(); err != nil {
		return err
	}

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	cancel()

	log.Info("waiting for the REST server to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}

// Batch reads both tables for every configured glacier and run, and hands them to
// store. A failing glacier does not stop the batch; every failure is returned joined.
func (a *App) Batch(ctx context.Context, p *postprocess.Processor, store storage.Store) (Summary, error) {
	summary := Summary{BatchID: uuid.New()}
	var errs []error

	fail := func(err error) {
		summary.Failures++
		errs = append(errs, err)
		log.Warnw("glacier failed", "error", err)
	}

	for _, g := range p.Glaciers() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		d, err := p.DirectoryFor(g)
		if err != nil {
			fail(fmt.Errorf("glacier %s: %w", g.RGIID, err))
			continue
		}

		for _, suffix := range g.Suffixes {
			rr, err := glacier.ReadRunResults(d, suffix)
			if err != nil {
				fail(err)
				continue
			}
			if err := store.SaveRunResults(ctx, summary.BatchID, rr); err != nil {
				fail(err)
				continue
			}
			summary.RunResults++
		}

		cs, err := p.ClimateStatisticsFor(d)
		if err != nil {
			fail(err)
			continue
		}
		if err := store.SaveClimateStatistics(ctx, summary.BatchID, cs); err != nil {
			fail(err)
			continue
		}
		summary.ClimateStatistics++

		log.Infow("glacier processed", "rgi_id", d.RGIID, "runs", len(g.Suffixes))
	}

	return summary, errors.Join(errs...)
}

// OpenStores opens every export store named in the configuration. With none
// configured, tables are computed and logged but not written anywhere.
func OpenStores(ctx context.Context, sc config.StorageData) (storage.Store, error) {
	var stores storage.Multi

	if sc.SQLite != nil {
		s, err := sqlite.New(ctx, sc.SQLite.Path)
		if err != nil {
			return nil, err
		}
		stores = append(stores, s)
		log.Infof("exporting to SQLite database %s", sc.SQLite.Path)
	}

	if sc.TimescaleDB != nil {
		s, err := timescaledb.New(ctx, sc.TimescaleDB.ConnectionString)
		if err != nil {
			stores.Close()
			return nil, fmt.Errorf("could not open TimescaleDB store: %w", err)
		}
		stores = append(stores, s)
		log.Info("exporting to TimescaleDB")
	}

	if len(stores) == 0 {
		log.Warn("no export store configured; tables will not be saved")
	}
	return stores, nil
}
