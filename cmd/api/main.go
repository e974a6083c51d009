package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vox-librorum/vox-desk/config"
	"github.com/vox-librorum/vox-desk/internal/bootstrap"
	cronjob "github.com/vox-librorum/vox-desk/internal/desk/cron"
	"github.com/vox-librorum/vox-desk/internal/library"
	"github.com/vox-librorum/vox-desk/internal/storage/postgres"
)

const serviceName = "vox-desk"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := bootstrap.NewLogger(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap.SetGinMode(cfg.App.Environment)

	lib, err := library.Load(cfg.Desk.LibraryPath)
	if err != nil {
		return err
	}

	var (
		pool  *pgxpool.Pool
		sqlDB *sql.DB
		rdb   *redis.Client
	)
	if !cfg.App.OfflineMode {
		pool, err = bootstrap.OpenDB(ctx, bootstrap.DBOptions{
			DSN:      postgres.DSN(&cfg.Database),
			MaxConns: int32(cfg.Database.MaxConns),
			MinConns: int32(cfg.Database.MinConns),
		})
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return err
		}

		sqlDB, err = postgres.NewConnection(&cfg.Database)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
	}

	rdb, err = bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	deps := bootstrap.Deps{Config: cfg, Log: logger, DB: pool, SQL: sqlDB, Redis: rdb, Library: lib}
	svcs, err := bootstrap.NewServices(deps)
	if err != nil {
		return err
	}

	sweeper := cronjob.NewScheduler(svcs.Desks, cfg.Desk.SweepSchedule, cfg.Desk.SessionIdleTTL, logger)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		Deps:        deps,
		Services:    svcs,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,

		// conduit streams end with the process context
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.Bool("offline", cfg.App.OfflineMode),
			zap.Int("library", lib.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
