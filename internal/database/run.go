package database

import (
	"database/sql"
	"fmt"
	"time"

	"rflink/internal/models"
)

type RunRepository interface {
	Start(run *models.Run) error
	Finish(runID string, finishedAt time.Time, cycles, failures uint64) error
	Get(runID string) (*models.Run, error)
}

type runRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) RunRepository {
	return &runRepository{db: db}
}

// Start records the beginning of a run
func (r *runRepository) Start(run *models.Run) error {
	_, err := r.db.Exec(`INSERT INTO runs (run_id, server_addr, started_at) VALUES (?, ?, ?)`,
		run.ID, run.ServerAddr, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Finish stores the end time and totals of a run
func (r *runRepository) Finish(runID string, finishedAt time.Time, cycles, failures uint64) error {
	res, err := r.db.Exec(`UPDATE runs SET finished_at = ?, cycles = ?, failures = ? WHERE run_id = ?`,
		finishedAt, cycles, failures, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// Get loads a run by ID
func (r *runRepository) Get(runID string) (*models.Run, error) {
	var run models.Run
	var finishedAt sql.NullTime

	err := r.db.QueryRow(`SELECT run_id, server_addr, started_at, finished_at, cycles, failures
		FROM runs WHERE run_id = ?`, runID,
	).Scan(&run.ID, &run.ServerAddr, &run.StartedAt, &finishedAt, &run.Cycles, &run.Failures)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	return &run, nil
}
