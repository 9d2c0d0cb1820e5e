package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/hospital-bed-scheduling/internal/api"
	"github.com/hackgods/hospital-bed-scheduling/internal/appointment"
	"github.com/hackgods/hospital-bed-scheduling/internal/bed"
	"github.com/hackgods/hospital-bed-scheduling/internal/catalog"
	"github.com/hackgods/hospital-bed-scheduling/internal/config"
	"github.com/hackgods/hospital-bed-scheduling/internal/db"
	"github.com/hackgods/hospital-bed-scheduling/internal/logger"
	redisclient "github.com/hackgods/hospital-bed-scheduling/internal/redis"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "api-server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("storage_driver", cfg.StorageDriver),
		zap.Bool("lock_enabled", cfg.LockEnabled))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]api.CheckFunc{}

	var store appointment.Store
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		store = newMemoryStore(cfg.MemoryBedsPerHospital)
		log.Info("using in-memory store", zap.Int("beds_per_hospital", cfg.MemoryBedsPerHospital))
	default:
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		if err == nil {
			err = db.ApplySchema(pgCtx, pgPool)
		}
		cancelPg()
		if err != nil {
			log.Fatal("postgres setup error", zap.Error(err))
		}
		defer pgPool.Close()
		log.Info("connected to Postgres")

		store = appointment.NewPgStore(pgPool)
		checks["postgres"] = pgPool.Ping
	}

	var locker redisclient.Locker = redisclient.NopLocker{}
	if cfg.LockEnabled {
		rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatal("redis connection error", zap.Error(err))
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn("error closing redis", zap.Error(err))
			}
		}()
		log.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))

		locker = redisclient.NewHospitalLocker(rdb, cfg.LockTTL, cfg.LockWait)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	svc := appointment.NewService(store, locker, log)

	srv := &http.Server{
		Addr: net.JoinHostPort("", cfg.HTTPPort),
		Handler: api.NewRouter(api.RouterConfig{
			Service:        svc,
			Logger:         log,
			Checks:         checks,
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Env:            cfg.Env,
			Version:        version,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return rootCtx },
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-rootCtx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}

	log.Info("shutting down api-server", zap.Duration("timeout", cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newMemoryStore(bedsPerHospital int) *appointment.MemoryStore {
	reg := bed.NewMemoryRegistry(nil)
	for _, hospital := range catalog.Hospitals() {
		for n := 1; n <= bedsPerHospital; n++ {
			reg.Provision(hospital, n)
		}
	}
	return appointment.NewMemoryStore(reg)
}
