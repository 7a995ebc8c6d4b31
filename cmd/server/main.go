package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jengzang/flight-delay-backend-go/internal/api"
	"github.com/jengzang/flight-delay-backend-go/internal/artifact"
	"github.com/jengzang/flight-delay-backend-go/internal/config"
	"github.com/jengzang/flight-delay-backend-go/internal/database"
	"github.com/jengzang/flight-delay-backend-go/internal/logging"
	"github.com/jengzang/flight-delay-backend-go/internal/middleware"
	"github.com/jengzang/flight-delay-backend-go/internal/repository"
	"github.com/jengzang/flight-delay-backend-go/internal/service"
	"github.com/jengzang/flight-delay-backend-go/internal/telemetry"
	"github.com/jengzang/flight-delay-backend-go/internal/training"
)

func main() {
	cfg := config.Load()
	logger := logging.Must(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.New()
	store := artifact.NewStore(cfg.ArtifactDir)
	predictor := service.NewPredictor(
		service.NewLoader(store, logger.Named("loader"), metrics),
		service.WithLogger(logger.Named("predictor")),
		service.WithMetrics(metrics),
	)

	// Startup load never fails the process; without artifacts the
	// predictor stays in heuristic mode
	if _, err := predictor.Reload(); err != nil {
		logger.Warn("starting without a trained model", zap.Error(err))
	}

	deps := api.Deps{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics,
		Predictor: predictor,
		Limiter:   middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow),
	}
	deps.Limiter.StartSweeper(ctx.Done())

	db, err := database.Open(cfg.DataSource(), logger.Named("db"))
	if err != nil {
		logger.Warn("flight database unavailable, retraining disabled", zap.Error(err))
	} else {
		defer db.Close()
		if err := database.NewMigrationManager(db, logger.Named("migrations")).RunMigrations(ctx); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}

		runs := repository.NewTrainingRunRepository(db)
		pipeline := training.NewPipeline(
			repository.NewFlightRepository(db),
			store,
			training.WithRunStore(runs),
			training.WithLogger(logger.Named("training")),
			training.WithTestSize(cfg.TestSize),
		)
		deps.Retrainer = service.NewRetrainer(pipeline, predictor, logger.Named("retrain"), metrics)
		deps.Runs = runs

		if cfg.RetrainSchedule != "" {
			scheduler, err := service.NewScheduler(cfg.RetrainSchedule, deps.Retrainer, logger.Named("scheduler"))
			if err != nil {
				logger.Fatal("invalid retrain schedule", zap.Error(err))
			}
			scheduler.Start()
			defer scheduler.Stop()
		}
	}

	if cfg.WatchArtifacts {
		watcher := service.NewWatcher(cfg.ArtifactDir, func() error {
			_, err := predictor.Reload()
			return err
		}, service.DefaultDebounce, logger.Named("watcher"))
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("artifact watcher stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           api.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Port), zap.String("mode", predictor.State().Mode()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
