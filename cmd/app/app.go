// Package main is the entry point for the exchange bank service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"exchangebank/internal/bank"
	"exchangebank/internal/config"
	"exchangebank/internal/importer"
	"exchangebank/internal/rounding"
	"exchangebank/internal/service"
	"exchangebank/internal/store/cached"
	"exchangebank/internal/store/history"
	"exchangebank/internal/store/memory"
	"exchangebank/internal/store/postgres"
	"exchangebank/internal/store/redisstore"
	"exchangebank/internal/worker"
)

// App holds all application dependencies and manages their lifecycle.
type App struct {
	cfg         *config.Config
	logger      *zap.SugaredLogger
	db          *sql.DB
	rdbCache    *redis.Client
	rdbAsynq    *redis.Client
	rateStore   any
	asynqClient *asynq.Client
	asynqServer *asynq.Server
	asynqMux    *asynq.ServeMux
	httpServer  *http.Server
}

// NewApp initializes all dependencies and returns a ready-to-run App.
func NewApp(cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: logger,
	}

	if err := app.initStorage(); err != nil {
		_ = app.close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.close()
		return nil, err
	}

	return app, nil
}

// close releases database and Redis connections
func (app *App) close() error {
	var errs []error
	if app.asynqClient != nil {
		if err := app.asynqClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("asynq client close: %w", err))
		}
	}
	if app.rdbAsynq != nil {
		if err := app.rdbAsynq.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis asynq close: %w", err))
		}
	}
	if app.rdbCache != nil {
		if err := app.rdbCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis cache close: %w", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	return errors.Join(errs...)
}

// initStorage opens the connections the configured rate store needs and builds the store.
func (app *App) initStorage() error {
	if app.cfg.UsesPostgres() {
		db, err := postgres.NewPostgresDB(&app.cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to Postgres: %w", err)
		}
		app.db = db

		if err := postgres.RunMigrations(app.db, app.logger); err != nil {
			return fmt.Errorf("run DB migrations: %w", err)
		}
	}

	if app.cfg.Store.Kind == config.StoreRedis || app.cfg.UsesRateCache() {
		app.rdbCache = redis.NewClient(&redis.Options{
			Addr: app.cfg.Redis.CacheAddr,
		})
		if err := app.rdbCache.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("connect to Redis (cache, %s): %w", app.cfg.Redis.CacheAddr, err)
		}
		app.logger.Infow("Connected to Redis cache", "addr", app.cfg.Redis.CacheAddr)
	}

	app.rateStore = app.newRateStore()
	return nil
}

func (app *App) newRateStore() any {
	ttl := time.Duration(app.cfg.Store.CacheTTLSec) * time.Second

	switch app.cfg.Store.Kind {
	case config.StorePostgres:
		pg := postgres.NewRateStore(app.db)
		if app.cfg.UsesRateCache() {
			return cached.New(pg, app.rdbCache, ttl, config.StorePostgres, app.logger)
		}
		return pg
	case config.StoreHistory:
		hs := history.New()
		if app.cfg.UsesRateCache() {
			return cached.New(hs, app.rdbCache, ttl, config.StoreHistory, app.logger)
		}
		return hs
	case config.StoreRedis:
		return redisstore.New(app.rdbCache, app.cfg.Redis.RatesKey)
	default:
		return memory.New()
	}
}

func (app *App) newBank() (*bank.Bank, error) {
	policy, err := rounding.Lookup(app.cfg.Bank.Rounding)
	if err != nil {
		return nil, err
	}

	opts := []bank.Option{
		bank.WithRounding(policy),
		bank.WithLogger(app.logger),
	}
	if app.cfg.Bank.ImportFile != "" {
		opts = append(opts, bank.WithImporter(importer.NewFile(app.cfg.Bank.ImportFile)))
		app.logger.Infow("Rate importer configured", "file", app.cfg.Bank.ImportFile)
	}

	b, err := bank.New(app.rateStore, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bank: %w", err)
	}
	return b, nil
}

func (app *App) initServices() error {
	redisOpt := asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr}

	app.rdbAsynq = redis.NewClient(&redis.Options{Addr: app.cfg.Redis.AsynqAddr})
	app.asynqClient = asynq.NewClient(redisOpt)
	app.asynqServer = asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:              app.cfg.Worker.Concurrency,
			DelayedTaskCheckInterval: time.Duration(app.cfg.Worker.CheckIntervalSec) * time.Second,
			TaskCheckInterval:        time.Duration(app.cfg.Worker.CheckIntervalSec) * time.Second,
		},
	)
	app.logger.Infow("Asynq configured", "addr", app.cfg.Redis.AsynqAddr)

	b, err := app.newBank()
	if err != nil {
		return err
	}
	asynqEnqueuer := worker.NewAsynqEnqueuer(
		app.asynqClient,
		app.cfg.Worker.MaxRetry,
		time.Duration(app.cfg.Worker.TimeoutSec)*time.Second,
	)
	exchangeService := service.NewExchangeService(b, asynqEnqueuer, app.logger)

	app.asynqMux = asynq.NewServeMux()
	app.asynqMux.HandleFunc(service.TaskTypeImportRates, worker.NewImportHandler(exchangeService, app.logger))

	app.initHTTP(exchangeService)
	return nil
}

// Run starts the HTTP server and Asynq worker, blocking until the context is canceled.
func (app *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Infow("Starting Asynq worker server")
		if err := app.asynqServer.Start(app.asynqMux); err != nil {
			return fmt.Errorf("asynq worker failed to start: %w", err)
		}

		<-ctx.Done()
		return nil
	})

	g.Go(func() error {
		app.logger.Infow("HTTP server listening", "port", app.cfg.Server.Port)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown: triggered by context cancellation (signal or component failure).
	g.Go(func() error {
		<-ctx.Done()
		return app.shutdown()
	})

	return g.Wait()
}

// shutdown performs ordered teardown: HTTP server -> Asynq worker -> connections.
// In-flight imports finish before the store connections close.
func (app *App) shutdown() error {
	app.logger.Infow("Shutting down server...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Errorw("HTTP server shutdown error", "error", err)
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	app.asynqServer.Shutdown()

	if err := app.close(); err != nil {
		app.logger.Errorw("Connection cleanup errors", "error", err)
		errs = append(errs, err)
	}

	app.logger.Infow("Shutdown complete")
	return errors.Join(errs...)
}
