package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/iniyan007/Power-loom-production-monitoring-app/config"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/api/handler"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/api/router"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/repository"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/service"
	"github.com/iniyan007/Power-loom-production-monitoring-app/pkg/database"
	"github.com/iniyan007/Power-loom-production-monitoring-app/pkg/jwt"
	applogger "github.com/iniyan007/Power-loom-production-monitoring-app/pkg/logger"
	"github.com/iniyan007/Power-loom-production-monitoring-app/pkg/redis"
)

func main() {
	// 1. load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. initialize logging
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting loom monitor",
		zap.Int("port", cfg.Server.Port),
		zap.String("timezone", cfg.Server.Timezone),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. connect to the database
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	logger.Info("database connected")

	// 3.1 run migrations
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to access underlying sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	// 4. connect to Redis; a failure degrades token revocation and rate
	// limiting instead of blocking startup
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis connection failed, token blacklist and rate limiting disabled", zap.Error(err))
		rdb = nil
	}

	// 5. JWT manager
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. dependency injection: repository -> service -> handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, logger)
	h := handler.NewHandler(svc)

	// 7. routes
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 8. background sweeper: closes expired shifts and prunes old readings
	// even when no scheduler or user traffic touches the API
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sweeperDone := make(chan struct{})
	go runSweeper(sweepCtx, svc.Sweeper, cfg.Sweeper.Interval, logger, sweeperDone)

	// 9. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	// 10. wait for termination signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", zap.String("signal", sig.String()))

	stopSweeper()
	<-sweeperDone

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	if closeDB, _ := db.DB(); closeDB != nil {
		closeDB.Close()
	}

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}

// runSweeper periodically closes expired shifts and purges readings past
// the retention window. One immediate pass runs at startup so shifts that
// expired while the server was down are closed right away.
func runSweeper(ctx context.Context, sweeper service.SweeperService, interval time.Duration, logger *zap.Logger, done chan<- struct{}) {
	defer close(done)

	sweepOnce := func() {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		closed, err := sweeper.Sweep(runCtx)
		if err != nil {
			logger.Error("shift sweep failed", zap.Error(err))
		} else if closed > 0 {
			logger.Info("expired shifts closed", zap.Int("count", closed))
		}

		purged, err := sweeper.PurgeOldReadings(runCtx)
		if err != nil {
			logger.Error("reading purge failed", zap.Error(err))
		} else if purged > 0 {
			logger.Info("old readings purged", zap.Int64("count", purged))
		}
	}

	sweepOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepOnce()
		}
	}
}
