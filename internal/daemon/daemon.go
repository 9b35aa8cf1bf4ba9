package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"rflink/internal/api"
	"rflink/internal/database"
	"rflink/internal/models"
	"rflink/internal/realflight"
	"rflink/internal/scheduler"
	"rflink/internal/tasks"
)

// Daemon drives the simulator control loop and everything around it
type Daemon struct {
	ctx       context.Context
	cancel    context.CancelFunc
	cfg       Config
	runID     string
	startedAt time.Time

	pool      *realflight.Pool
	session   *realflight.Session
	scheduler *scheduler.Scheduler
	loop      *tasks.ControlLoop

	database     database.Repository // nil when recording is disabled
	sampleChan   chan *models.TelemetrySample
	recorder     *tasks.TelemetryRecorder
	recorderDone chan struct{}
	recording    bool

	httpServer   *http.Server
	httpListener net.Listener
}

// Config holds daemon configuration
type Config struct {
	ServerAddr   string        // Simulator address (e.g., "127.0.0.1:18083")
	DBPath       string        // Path to SQLite database, empty disables recording
	BatchSize    int           // Number of samples to batch before writing
	BatchTimeout int           // seconds - flush batch after this time even if not full
	HTTPAddr     string        // Status API listen address, empty disables it
	LoopInterval time.Duration // Pause between control cycles, zero runs them back to back
	ThrottleStep float64       // Throttle increase per cycle for the ramp input
	Pool         realflight.PoolConfig
	Session      realflight.SessionConfig
}

// New creates a new daemon instance
func New(cfg Config) (*Daemon, error) {
	if cfg.ServerAddr == "" {
		return nil, fmt.Errorf("ServerAddr is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	runID := uuid.NewString()

	d := &Daemon{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		runID:  runID,
	}

	if cfg.DBPath != "" {
		db, err := database.New(cfg.DBPath)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		d.database = db

		batchSize := 100
		if cfg.BatchSize > 0 {
			batchSize = cfg.BatchSize
		}
		batchTimeout := 1 * time.Second
		if cfg.BatchTimeout > 0 {
			batchTimeout = time.Duration(cfg.BatchTimeout) * time.Second
		}

		d.sampleChan = make(chan *models.TelemetrySample, 1000)
		d.recorder = tasks.NewTelemetryRecorderWithConfig(db.TelemetrySampleRepository(), d.sampleChan, batchSize, batchTimeout)
		d.recorderDone = make(chan struct{})
	}

	poolCfg := cfg.Pool
	poolCfg.Addr = cfg.ServerAddr
	d.pool = realflight.NewPool(poolCfg)
	d.session = realflight.NewSession(d.pool, cfg.Session)

	d.loop = tasks.NewControlLoop(d.session, tasks.NewThrottleRamp(cfg.ThrottleStep), d.sampleChan, runID, cfg.LoopInterval)
	d.scheduler = scheduler.New(ctx)
	d.scheduler.AddTask(d.loop)

	if cfg.HTTPAddr != "" {
		d.httpServer = &http.Server{
			Handler:           api.New(runID, d.session, d.pool),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return d, nil
}

// RunID identifies this run in the database and status API
func (d *Daemon) RunID() string {
	return d.runID
}

// Session returns the simulator session
func (d *Daemon) Session() *realflight.Session {
	return d.session
}

// Pool returns the connection pool
func (d *Daemon) Pool() *realflight.Pool {
	return d.pool
}

// HTTPAddr returns the address the status API listens on, or "" when disabled
func (d *Daemon) HTTPAddr() string {
	if d.httpListener == nil {
		return ""
	}
	return d.httpListener.Addr().String()
}

func (d *Daemon) Start() error {
	slog.Info("Starting daemon", "run_id", d.runID, "server_addr", d.cfg.ServerAddr)
	d.startedAt = time.Now()

	if d.httpServer != nil {
		ln, err := net.Listen("tcp", d.cfg.HTTPAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", d.cfg.HTTPAddr, err)
		}
		d.httpListener = ln

		go func() {
			if err := d.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Status API stopped", "error", err)
			}
		}()
		slog.Info("Status API listening", "addr", ln.Addr().String())
	}

	if d.database != nil {
		run := &models.Run{
			ID:         d.runID,
			ServerAddr: d.cfg.ServerAddr,
			StartedAt:  d.startedAt,
		}
		if err := d.database.RunRepository().Start(run); err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}

		// The recorder stops when the sample channel is closed so that
		// samples still buffered at shutdown are written
		d.recording = true
		go func() {
			_ = d.recorder.Start(context.Background())
			close(d.recorderDone)
		}()
	}

	d.scheduler.Start()

	slog.Info("Daemon started successfully")
	return nil
}

// Stop gracefully stops the daemon
func (d *Daemon) Stop() error {
	slog.Info("Stopping daemon")
	d.cancel()
	d.scheduler.Stop()

	if d.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := d.httpServer.Shutdown(ctx); err != nil {
			slog.Error("Error stopping status API", "error", err)
		}
		cancel()
	}

	if err := d.pool.Close(); err != nil {
		slog.Error("Error closing connection pool", "error", err)
	}

	stats := d.session.Stats()

	if d.database != nil {
		close(d.sampleChan)
		if d.recording {
			<-d.recorderDone
		}

		if err := d.database.RunRepository().Finish(d.runID, time.Now(), stats.Cycles, stats.Failures); err != nil {
			slog.Error("Error recording run totals", "error", err)
		}

		if err := d.database.Close(); err != nil {
			slog.Error("Error closing database", "error", err)
		}
	}

	slog.Info("Daemon stopped",
		"run_id", d.runID,
		"cycles", stats.Cycles,
		"failures", stats.Failures,
		"dropped_samples", d.loop.Dropped(),
	)
	return nil
}
