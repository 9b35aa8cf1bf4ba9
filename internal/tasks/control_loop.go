package tasks

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"rflink/internal/models"
)

// Controller is the simulator session driven by the control loop
type Controller interface {
	Update(ctx context.Context, in models.ControlInput) error
	Telemetry() models.TelemetryState
}

// ControlLoop runs one control cycle per scheduler run and publishes every
// successful cycle as a telemetry sample
type ControlLoop struct {
	controller Controller
	source     InputSource
	samples    chan<- *models.TelemetrySample // may be nil
	runID      string
	interval   time.Duration

	cycles  atomic.Uint64
	dropped atomic.Uint64
	failing bool
}

// NewControlLoop creates the control loop task. An interval of zero runs
// cycles back to back.
func NewControlLoop(controller Controller, source InputSource, samples chan<- *models.TelemetrySample, runID string, interval time.Duration) *ControlLoop {
	return &ControlLoop{
		controller: controller,
		source:     source,
		samples:    samples,
		runID:      runID,
		interval:   interval,
	}
}

func (l *ControlLoop) Name() string {
	return "control_loop"
}

func (l *ControlLoop) Interval() time.Duration {
	return l.interval
}

// Cycles returns the number of successful cycles
func (l *ControlLoop) Cycles() uint64 {
	return l.cycles.Load()
}

// Dropped returns the number of samples the recorder had no room for
func (l *ControlLoop) Dropped() uint64 {
	return l.dropped.Load()
}

// Run performs one cycle. A failed cycle is not fatal; the next run retries.
func (l *ControlLoop) Run(ctx context.Context) error {
	in := l.source.Next()

	if err := l.controller.Update(ctx, in); err != nil {
		if !l.failing {
			slog.Warn("Control cycle failed, retrying every cycle", "error", err)
			l.failing = true
		}
		return err
	}

	if l.failing {
		slog.Info("Control cycle recovered", "cycle", l.cycles.Load()+1)
		l.failing = false
	}

	cycle := l.cycles.Add(1)
	if cycle == 1 {
		slog.Info("First telemetry received", "run_id", l.runID)
	}

	if l.samples == nil {
		return nil
	}

	sample := &models.TelemetrySample{
		RunID:     l.runID,
		Cycle:     cycle,
		Timestamp: time.Now(),
		Channels:  models.NewChannelVector(in),
		State:     l.controller.Telemetry(),
	}

	// Never stall the control loop on the recorder
	select {
	case l.samples <- sample:
	default:
		l.dropped.Add(1)
	}

	return nil
}
