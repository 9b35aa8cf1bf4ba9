package tasks

import (
	"context"
	"log/slog"
	"time"

	"rflink/internal/database"
	"rflink/internal/models"
)

// TelemetryRecorder collects telemetry samples and commits them to the database in batches
type TelemetryRecorder struct {
	repo          database.TelemetrySampleRepository
	sampleChan    <-chan *models.TelemetrySample
	batchSize     int           // maximum number of samples in a batch before committing to database
	flushInterval time.Duration // time to flush batch even if not full
}

// Default batch size is 100 samples and flush interval is 1 second
func NewTelemetryRecorder(repo database.TelemetrySampleRepository, sampleChan <-chan *models.TelemetrySample) *TelemetryRecorder {
	return NewTelemetryRecorderWithConfig(repo, sampleChan, 100, 1*time.Second)
}

// NewTelemetryRecorderWithConfig creates a recorder with custom batch settings
func NewTelemetryRecorderWithConfig(repo database.TelemetrySampleRepository, sampleChan <-chan *models.TelemetrySample, batchSize int, flushInterval time.Duration) *TelemetryRecorder {
	return &TelemetryRecorder{
		repo:          repo,
		sampleChan:    sampleChan,
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Start collects samples until the context is cancelled or the channel is closed.
// A batch is written when it is full or when the flush interval elapses.
func (r *TelemetryRecorder) Start(ctx context.Context) error {
	batch := make([]*models.TelemetrySample, 0, r.batchSize)

	flushBatch := func() {
		if len(batch) == 0 {
			return
		}
		if err := r.repo.InsertBatch(batch); err != nil {
			slog.Error("Error inserting batch of telemetry samples", "batch_size", len(batch), "error", err)
		} else {
			slog.Debug("Inserted batch of telemetry samples", "batch_size", len(batch))
		}
		batch = batch[:0]
	}

	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushBatch()
			return ctx.Err()

		case <-ticker.C:
			flushBatch()

		case sample, ok := <-r.sampleChan:
			if !ok {
				flushBatch()
				return nil
			}
			if sample == nil {
				continue
			}

			batch = append(batch, sample)
			if len(batch) >= r.batchSize {
				flushBatch()
			}
		}
	}
}
