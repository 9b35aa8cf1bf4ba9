package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Repository defines the storage operations used by the daemon
type Repository interface {
	RunRepository() RunRepository
	TelemetrySampleRepository() TelemetrySampleRepository
	Close() error
}

// DB implements the Repository interface using SQLite
type DB struct {
	db *sql.DB
}

// New creates and initializes a new database connection
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := optimizeSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to optimize database: %w", err)
	}

	database := &DB{db: db}

	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// optimizeSQLite tunes SQLite for a steady stream of small batched writes
func optimizeSQLite(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// RunRepository returns the repository for run records
func (d *DB) RunRepository() RunRepository {
	return NewRunRepository(d.db)
}

// TelemetrySampleRepository returns the repository for telemetry samples
func (d *DB) TelemetrySampleRepository() TelemetrySampleRepository {
	return NewTelemetrySampleRepository(d.db)
}

// initSchema creates the database schema if it doesn't exist
func (d *DB) initSchema() error {
	runsSchema := `CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		server_addr TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		cycles INTEGER NOT NULL DEFAULT 0,
		failures INTEGER NOT NULL DEFAULT 0
	);`

	samplesSchema := `CREATE TABLE IF NOT EXISTS telemetry_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		cycle INTEGER NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		airspeed_mps REAL,
		altitude_asl_mtr REAL,
		altitude_agl_mtr REAL,
		roll_deg REAL,
		inclination_deg REAL,
		azimuth_deg REAL,
		position_x_mtr REAL,
		position_y_mtr REAL,
		touching_ground INTEGER,
		engine_running INTEGER,
		channels TEXT NOT NULL,
		telemetry TEXT NOT NULL,
		UNIQUE(run_id, cycle)
	);`

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_telemetry_samples_run ON telemetry_samples(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_telemetry_samples_timestamp ON telemetry_samples(timestamp)`,
	}

	if _, err := d.db.Exec(runsSchema); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	if _, err := d.db.Exec(samplesSchema); err != nil {
		return fmt.Errorf("failed to create telemetry_samples table: %w", err)
	}

	for _, idx := range indexes {
		if _, err := d.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
