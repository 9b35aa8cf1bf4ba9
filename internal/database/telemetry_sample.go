package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"rflink/internal/models"
)

type TelemetrySampleRepository interface {
	InsertBatch(samples []*models.TelemetrySample) error
	CountByRun(runID string) (int, error)
	Latest(runID string) (*models.TelemetrySample, error)
}

type telemetrySampleRepository struct {
	db *sql.DB
}

func NewTelemetrySampleRepository(db *sql.DB) TelemetrySampleRepository {
	return &telemetrySampleRepository{db: db}
}

// InsertBatch inserts one or more telemetry samples in a single transaction.
// The headline values get their own columns; the full KeyTable state and the
// channel vector are kept as JSON.
func (r *telemetrySampleRepository) InsertBatch(samples []*models.TelemetrySample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO telemetry_samples (
		run_id, cycle, timestamp,
		airspeed_mps, altitude_asl_mtr, altitude_agl_mtr,
		roll_deg, inclination_deg, azimuth_deg,
		position_x_mtr, position_y_mtr,
		touching_ground, engine_running,
		channels, telemetry
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		channels, err := json.Marshal(s.Channels)
		if err != nil {
			return fmt.Errorf("failed to encode channels: %w", err)
		}
		telemetry, err := json.Marshal(s.State.Values())
		if err != nil {
			return fmt.Errorf("failed to encode telemetry: %w", err)
		}

		if _, err := stmt.Exec(
			s.RunID, s.Cycle, s.Timestamp,
			s.State.AirspeedMPS, s.State.AltitudeASLMTR, s.State.AltitudeAGLMTR,
			s.State.RollDEG, s.State.InclinationDEG, s.State.AzimuthDEG,
			s.State.AircraftPositionXMTR, s.State.AircraftPositionYMTR,
			s.State.TouchingGround(), s.State.EngineRunning(),
			string(channels), string(telemetry),
		); err != nil {
			return fmt.Errorf("failed to insert sample: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CountByRun returns how many samples were stored for a run
func (r *telemetrySampleRepository) CountByRun(runID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM telemetry_samples WHERE run_id = ?", runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}
	return count, nil
}

// Latest returns the sample with the highest cycle number for a run
func (r *telemetrySampleRepository) Latest(runID string) (*models.TelemetrySample, error) {
	var s models.TelemetrySample
	var channels, telemetry string

	err := r.db.QueryRow(`SELECT run_id, cycle, timestamp, channels, telemetry
		FROM telemetry_samples WHERE run_id = ? ORDER BY cycle DESC LIMIT 1`, runID,
	).Scan(&s.RunID, &s.Cycle, &s.Timestamp, &channels, &telemetry)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no samples for run %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest sample: %w", err)
	}

	if err := json.Unmarshal([]byte(channels), &s.Channels); err != nil {
		return nil, fmt.Errorf("failed to decode channels: %w", err)
	}

	var values map[string]float64
	if err := json.Unmarshal([]byte(telemetry), &values); err != nil {
		return nil, fmt.Errorf("failed to decode telemetry: %w", err)
	}
	for tag, v := range values {
		if entry, ok := models.LookupKey(tag); ok {
			*entry.Field(&s.State) = v
		}
	}

	return &s, nil
}
