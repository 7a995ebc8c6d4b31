package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron"
	"go.uber.org/zap"

	"github.com/jengzang/flight-delay-backend-go/internal/telemetry"
	"github.com/jengzang/flight-delay-backend-go/internal/training"
)

// ErrRetrainRunning is returned when a retrain is requested while one is in
// progress
var ErrRetrainRunning = errors.New("retrain already running")

// Trainer runs the training pipeline once
type Trainer interface {
	Run(ctx context.Context) (*training.Result, error)
}

// Retrainer runs at most one training at a time and reloads the serving
// state after a successful run
type Retrainer struct {
	trainer   Trainer
	predictor *Predictor
	logger    *zap.Logger
	metrics   *telemetry.Metrics
	running   atomic.Bool
}

// NewRetrainer creates a retrainer
func NewRetrainer(trainer Trainer, predictor *Predictor, logger *zap.Logger, metrics *telemetry.Metrics) *Retrainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrainer{trainer: trainer, predictor: predictor, logger: logger, metrics: metrics}
}

// Running reports whether a retrain is in progress
func (r *Retrainer) Running() bool {
	return r.running.Load()
}

// Retrain trains synchronously and reloads the state
func (r *Retrainer) Retrain(ctx context.Context) (*training.Result, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRetrainRunning
	}
	defer r.running.Store(false)
	return r.retrain(ctx)
}

// Start trains in the background. It returns ErrRetrainRunning when a run is
// already in progress.
func (r *Retrainer) Start(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrRetrainRunning
	}
	go func() {
		defer r.running.Store(false)
		_, _ = r.retrain(context.WithoutCancel(ctx))
	}()
	return nil
}

func (r *Retrainer) retrain(ctx context.Context) (*training.Result, error) {
	r.logger.Info("retrain started")
	result, err := r.trainer.Run(ctx)
	r.metrics.ObserveRetrain(err)
	if err != nil {
		r.logger.Error("retrain failed", zap.Error(err))
		return nil, fmt.Errorf("retrain: %w", err)
	}

	if _, err := r.predictor.Reload(); err != nil {
		r.logger.Warn("reload after retrain reported errors", zap.Error(err))
	}
	r.logger.Info("retrain finished", zap.String("run_id", result.Run.ID), zap.Float64("rmse", result.Metrics.RMSE))
	return result, nil
}

// Scheduler triggers retraining on a cron schedule. Schedules use six fields
// with seconds ("0 0 3 * * *") or descriptors ("@daily", "@every 6h").
type Scheduler struct {
	cron      *cron.Cron
	retrainer *Retrainer
	logger    *zap.Logger
}

// NewScheduler parses spec and registers the retrain job
func NewScheduler(spec string, retrainer *Retrainer, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{cron: cron.New(), retrainer: retrainer, logger: logger}

	err := s.cron.AddFunc(spec, func() {
		if _, err := retrainer.Retrain(context.Background()); errors.Is(err, ErrRetrainRunning) {
			logger.Info("scheduled retrain skipped, previous run still active")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid retrain schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the schedule in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("retrain scheduled", zap.Time("next", e.Next))
	}
}

// Stop halts the schedule. A running retrain is not interrupted.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
