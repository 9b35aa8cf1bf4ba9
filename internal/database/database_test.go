package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"rflink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	dbPath := filepath.Join(t.TempDir(), "rflink_test.db")

	db, err := New(dbPath)
	require.NoError(t, err)
	require.NotNil(t, db)

	return db
}

func cleanupTestDB(t *testing.T, db *DB) {
	if db != nil {
		err := db.Close()
		assert.NoError(t, err)
	}
}

func testSample(runID string, cycle uint64) *models.TelemetrySample {
	return &models.TelemetrySample{
		RunID:     runID,
		Cycle:     cycle,
		Timestamp: time.Now(),
		Channels:  models.NewChannelVector(models.ControlInput{Throttle: 0.25}),
		State: models.TelemetryState{
			AirspeedMPS:       float64(cycle),
			AltitudeAGLMTR:    10,
			AnEngineIsRunning: 1,
		},
	}
}

func TestNew(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	assert.NotNil(t, db)
}

func TestNew_BadPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	assert.Error(t, err)
}

func TestNew_ReopenKeepsSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	db, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = New(dbPath)
	require.NoError(t, err)
	defer cleanupTestDB(t, db)

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestRunRepository_StartFinishGet(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.RunRepository()
	started := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)

	require.NoError(t, repo.Start(&models.Run{
		ID:         "run-1",
		ServerAddr: "127.0.0.1:18083",
		StartedAt:  started,
	}))

	run, err := repo.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:18083", run.ServerAddr)
	assert.True(t, run.FinishedAt.IsZero())

	finished := started.Add(time.Minute)
	require.NoError(t, repo.Finish("run-1", finished, 120, 3))

	run, err = repo.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(120), run.Cycles)
	assert.Equal(t, uint64(3), run.Failures)
	assert.True(t, finished.Equal(run.FinishedAt))
}

func TestRunRepository_FinishUnknown(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	err := db.RunRepository().Finish("nope", time.Now(), 0, 0)
	assert.Error(t, err)

	_, err = db.RunRepository().Get("nope")
	assert.Error(t, err)
}

func TestTelemetrySampleRepository_InsertBatch(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.TelemetrySampleRepository()

	err := repo.InsertBatch([]*models.TelemetrySample{
		testSample("run-a", 1),
		testSample("run-a", 2),
		testSample("run-b", 1),
	})
	require.NoError(t, err)

	count, err := repo.CountByRun("run-a")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestTelemetrySampleRepository_InsertBatch_Empty(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	err := db.TelemetrySampleRepository().InsertBatch([]*models.TelemetrySample{})
	assert.NoError(t, err)
}

func TestTelemetrySampleRepository_InsertBatch_Duplicates(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.TelemetrySampleRepository()
	sample := testSample("run-a", 7)

	// Same cycle twice is ignored, not an error
	require.NoError(t, repo.InsertBatch([]*models.TelemetrySample{sample, sample}))

	count, err := repo.CountByRun("run-a")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTelemetrySampleRepository_Latest(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.TelemetrySampleRepository()
	require.NoError(t, repo.InsertBatch([]*models.TelemetrySample{
		testSample("run-a", 1),
		testSample("run-a", 5),
		testSample("run-a", 3),
	}))

	latest, err := repo.Latest("run-a")
	require.NoError(t, err)

	assert.Equal(t, uint64(5), latest.Cycle)
	assert.Equal(t, 5.0, latest.State.AirspeedMPS)
	assert.Equal(t, 10.0, latest.State.AltitudeAGLMTR)
	assert.True(t, latest.State.EngineRunning())
	assert.Equal(t, 0.25, latest.Channels[models.ChannelThrottle])
	assert.Equal(t, models.ChannelCenter, latest.Channels[11])

	_, err = repo.Latest("run-missing")
	assert.Error(t, err)
}
