package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jengzang/flight-delay-backend-go/internal/artifact"
	"github.com/jengzang/flight-delay-backend-go/internal/config"
	"github.com/jengzang/flight-delay-backend-go/internal/database"
	"github.com/jengzang/flight-delay-backend-go/internal/gbm"
	"github.com/jengzang/flight-delay-backend-go/internal/logging"
	"github.com/jengzang/flight-delay-backend-go/internal/repository"
	"github.com/jengzang/flight-delay-backend-go/internal/training"
)

func main() {
	cfg := config.Load()

	dbPath := flag.String("db", cfg.DataSource(), "SQLite path or postgres:// URL of the flight database")
	outputDir := flag.String("output-dir", cfg.ArtifactDir, "Directory for model artifacts")
	testSize := flag.Float64("test-size", cfg.TestSize, "Fraction of the newest rows held out for evaluation")
	noSave := flag.Bool("no-save", false, "Train and evaluate without writing artifacts")
	report := flag.Bool("report", false, "Write an xlsx training report next to the artifacts")
	quiet := flag.Bool("quiet", false, "Only log warnings and errors")
	trees := flag.Int("trees", 0, "Override the number of boosting rounds")
	seed := flag.Uint64("seed", 0, "Override the random seed")
	flag.Parse()

	level := cfg.LogLevel
	if *quiet {
		level = "warn"
	}
	logger := logging.Must(level, cfg.LogFormat)
	defer logger.Sync()

	if err := run(logger, *dbPath, *outputDir, *testSize, !*noSave, *report, *trees, *seed); err != nil {
		logger.Error("training failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, dbPath, outputDir string, testSize float64, save, report bool, trees int, seed uint64) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(dbPath, logger.Named("db"))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.NewMigrationManager(db, logger.Named("migrations")).RunMigrations(ctx); err != nil {
		return err
	}

	params := gbm.DefaultParams()
	if trees > 0 {
		params.NumTrees = trees
	}
	if seed > 0 {
		params.Seed = seed
	}

	pipeline := training.NewPipeline(
		repository.NewFlightRepository(db),
		artifact.NewStore(outputDir),
		training.WithRunStore(repository.NewTrainingRunRepository(db)),
		training.WithLogger(logger.Named("training")),
		training.WithParams(params),
		training.WithTestSize(testSize),
		training.WithSave(save),
		training.WithReport(report),
	)

	result, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(result, outputDir, save)
	return nil
}

func printSummary(r *training.Result, outputDir string, saved bool) {
	p := message.NewPrinter(language.English)
	m := r.Metrics

	p.Printf("\nTraining run %s\n", r.Run.ID)
	p.Printf("  rows loaded:   %d (%d dropped without delay minutes)\n", r.Run.RowsLoaded, r.Run.RowsDropped)
	p.Printf("  train / test:  %d / %d\n", m.TrainRows, m.TestRows)
	p.Printf("  trees:         %d (best iteration %d)\n", r.Model.NumTrees(), m.BestIteration)
	p.Printf("\n  RMSE           %.2f min\n", m.RMSE)
	p.Printf("  MAE            %.2f min\n", m.MAE)
	p.Printf("  R2             %.4f\n", m.R2)
	p.Printf("  MedAE          %.2f min\n", m.MedianAbsoluteError)
	p.Printf("  MAPE           %.1f%%\n", m.MAPE)
	if m.Baseline != nil {
		p.Printf("  linear RMSE    %.2f min\n", m.Baseline.RMSE)
	}

	if len(r.Importance) > 0 {
		p.Printf("\n  top features:\n")
		for i, imp := range r.Importance[:min(5, len(r.Importance))] {
			p.Printf("    %d. %-16s %.3f\n", i+1, imp.Feature, imp.Score)
		}
	}

	if saved {
		fmt.Printf("\nArtifacts written to %s\n", outputDir)
	}
}
