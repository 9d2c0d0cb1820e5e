package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/hospital-bed-scheduling/internal/appointment"
	"github.com/hackgods/hospital-bed-scheduling/internal/config"
	"github.com/hackgods/hospital-bed-scheduling/internal/db"
	"github.com/hackgods/hospital-bed-scheduling/internal/logger"
	redisclient "github.com/hackgods/hospital-bed-scheduling/internal/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "reconcile-worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.StorageDriver != config.StorageDriverPostgres {
		log.Fatal("reconcile-worker needs STORAGE_DRIVER=postgres", zap.String("storage_driver", cfg.StorageDriver))
	}

	log.Info("reconcile-worker starting up",
		zap.String("env", cfg.Env), zap.Duration("interval", cfg.WorkerInterval))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	log.Info("connected to Postgres")

	// the sweep runs in a single transaction, so allocation locks are not needed
	svc := appointment.NewService(appointment.NewPgStore(pgPool), redisclient.NopLocker{}, log)

	runOnce(rootCtx, svc, log)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info("shutdown signal received, stopping reconcile worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, log)
		}
	}
}

func runOnce(ctx context.Context, svc *appointment.Service, log *zap.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	report, err := svc.ReconcileBeds(runCtx)
	if err != nil {
		log.Error("reconcile run error", zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.Duration("took", time.Since(start)),
		zap.Int("checked", report.Checked),
		zap.Int("released", report.Released),
		zap.Int("reoccupied", report.Reoccupied),
		zap.Int("conflicts", report.Conflicts),
	}
	if report.Released+report.Reoccupied+report.Conflicts > 0 {
		log.Warn("reconcile run repaired beds", fields...)
		return
	}
	log.Info("reconcile run complete", fields...)
}
