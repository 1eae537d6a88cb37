// Package server wires the upload service together: configuration, logging,
// PostgreSQL, the object store gateway, the orchestrator, the reconciliation
// sweeper and the HTTP and gRPC endpoints. Shutdown is driven by OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/mediaupload/internal/logging"
	"github.com/dmitrijs2005/mediaupload/internal/server/config"
	"github.com/dmitrijs2005/mediaupload/internal/server/httpapi"
	"github.com/dmitrijs2005/mediaupload/internal/server/objectstore"
	"github.com/dmitrijs2005/mediaupload/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mediaupload/internal/server/services"
	"github.com/dmitrijs2005/mediaupload/internal/server/validation"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/mediaupload/internal/server/grpc"
)

const healthCheckInterval = 15 * time.Second

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	uploadService *services.UploadService
	sweeper       *services.Sweeper
}

// NewLogger builds the JSON logger for the configured level.
func NewLogger(w io.Writer, level string) (logging.Logger, error) {
	l, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.NewJSON(w, l), nil
}

// OpenDatabase opens the pgx-backed pool and checks connectivity.
func OpenDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Components bundles what both the server and the admin CLI need.
type Components struct {
	DB          *sql.DB
	RepoManager repomanager.RepositoryManager
	Gateway     objectstore.Gateway
}

// NewComponents connects to PostgreSQL and the object store. The caller
// owns DB.
func NewComponents(ctx context.Context, c *config.Config, logger logging.Logger) (*Components, error) {
	db, err := OpenDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	gateway, err := objectstore.NewS3Gateway(ctx, c.ObjectStore(), logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	return &Components{
		DB:          db,
		RepoManager: repomanager.NewPostgresRepositoryManager(),
		Gateway:     gateway,
	}, nil
}

// Sweeper builds the reconciliation sweeper from c's settings.
func (cs *Components) Sweeper(c *config.Config, logger logging.Logger) *services.Sweeper {
	return services.NewSweeper(cs.DB, cs.RepoManager, cs.Gateway, services.SweepOptions{
		Interval:    c.SweepInterval,
		OrphanGrace: c.SweepOrphanGrace,
		StaleAfter:  c.SweepStaleAfter,
	}, logger)
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	cs, err := NewComponents(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	if err := cs.RepoManager.RunMigrations(ctx, cs.DB); err != nil {
		cs.DB.Close()
		return nil, fmt.Errorf("db migrations error: %w", err)
	}

	us := services.NewUploadService(cs.DB, cs.RepoManager, cs.Gateway, validation.New(c.Limits()), services.Options{
		MultipartThreshold: c.MultipartThreshold,
		PresignExpiry:      c.PresignExpiry,
		BulkFailFast:       c.BulkFailFast,
	}, logger)

	return &App{
		config:        c,
		logger:        logger,
		db:            cs.DB,
		uploadService: us,
		sweeper:       cs.Sweeper(c, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := httpapi.NewHandler(app.uploadService, app.db, app.logger.With("module", "http_api"))
	s := httpapi.NewServer(app.config.HTTPAddr, h.Routes(app.config.SecretKey), app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if app.config.GRPCAddr == "" {
		return
	}

	s := gs.NewGRPCServer(app.config.GRPCAddr, app.db, healthCheckInterval, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until a signal arrives or one of the servers fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	wg.Wait()
	app.sweeper.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "close database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
