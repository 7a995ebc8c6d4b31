package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/flight-delay-backend-go/internal/database"
	"github.com/jengzang/flight-delay-backend-go/internal/models"
)

// ErrRunNotFound is returned when no training run has the requested id
var ErrRunNotFound = errors.New("training run not found")

// TrainingRunRepository handles database operations for training runs
type TrainingRunRepository struct {
	db *database.DB
}

// NewTrainingRunRepository creates a new training run repository
func NewTrainingRunRepository(db *database.DB) *TrainingRunRepository {
	return &TrainingRunRepository{db: db}
}

// Create inserts a new run
func (r *TrainingRunRepository) Create(ctx context.Context, run *models.TrainingRun) error {
	query := r.db.Rebind(`
		INSERT INTO training_runs (
			id, status, rows_loaded, rows_dropped, train_rows, test_rows,
			rmse, mae, r2, mape, error_message, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Status,
		run.RowsLoaded,
		run.RowsDropped,
		run.TrainRows,
		run.TestRows,
		run.RMSE,
		run.MAE,
		run.R2,
		run.MAPE,
		run.ErrorMessage,
		formatTime(run.StartedAt),
		formatTimePtr(run.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create training run: %w", err)
	}
	return nil
}

// Update stores the current state of a run
func (r *TrainingRunRepository) Update(ctx context.Context, run *models.TrainingRun) error {
	query := r.db.Rebind(`
		UPDATE training_runs
		SET status = ?, rows_loaded = ?, rows_dropped = ?, train_rows = ?, test_rows = ?,
			rmse = ?, mae = ?, r2 = ?, mape = ?, error_message = ?, completed_at = ?
		WHERE id = ?
	`)

	result, err := r.db.ExecContext(ctx, query,
		run.Status,
		run.RowsLoaded,
		run.RowsDropped,
		run.TrainRows,
		run.TestRows,
		run.RMSE,
		run.MAE,
		run.R2,
		run.MAPE,
		run.ErrorMessage,
		formatTimePtr(run.CompletedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update training run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}
	return nil
}

const runColumns = `
	id, status, rows_loaded, rows_dropped, train_rows, test_rows,
	rmse, mae, r2, mape, error_message, started_at, completed_at
`

// GetByID retrieves a run by id
func (r *TrainingRunRepository) GetByID(ctx context.Context, id string) (*models.TrainingRun, error) {
	query := r.db.Rebind("SELECT " + runColumns + " FROM training_runs WHERE id = ?")

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get training run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs first
func (r *TrainingRunRepository) List(ctx context.Context, limit int) ([]*models.TrainingRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := r.db.Rebind("SELECT " + runColumns + " FROM training_runs ORDER BY started_at DESC LIMIT ?")

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list training runs: %w", err)
	}
	defer rows.Close()

	runs := []*models.TrainingRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan training run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*models.TrainingRun, error) {
	var (
		run       models.TrainingRun
		started   string
		completed sql.NullString
	)

	err := s.Scan(
		&run.ID,
		&run.Status,
		&run.RowsLoaded,
		&run.RowsDropped,
		&run.TrainRows,
		&run.TestRows,
		&run.RMSE,
		&run.MAE,
		&run.R2,
		&run.MAPE,
		&run.ErrorMessage,
		&started,
		&completed,
	)
	if err != nil {
		return nil, err
	}

	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("invalid started_at %q: %w", started, err)
	}
	if completed.Valid && completed.String != "" {
		t, err := time.Parse(time.RFC3339Nano, completed.String)
		if err != nil {
			return nil, fmt.Errorf("invalid completed_at %q: %w", completed.String, err)
		}
		run.CompletedAt = &t
	}
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
