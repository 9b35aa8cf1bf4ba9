package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rflink/internal/config"
	"rflink/internal/daemon"
	"rflink/internal/realflight"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "rflink",
	Short: "RealFlight controller link",
	Long: `rflink drives a RealFlight simulator through its controller interface.

It injects itself as the aircraft's controller, sends channel values every
cycle and decodes the aircraft state that comes back.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (YAML)")
}

// loadConfig reads configuration and installs the default logger
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		os.Setenv("RFLINK_CONFIG_PATH", cfgFile)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	initLogger(cfg)
	return cfg, nil
}

func initLogger(cfg *config.Config) {
	var logLevel slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// daemonConfig maps the loaded configuration onto the daemon
func daemonConfig(cfg *config.Config) daemon.Config {
	return daemon.Config{
		ServerAddr:   cfg.ServerAddr,
		DBPath:       cfg.DBPath,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		HTTPAddr:     cfg.HTTPAddr,
		LoopInterval: config.Millis(cfg.Loop.IntervalMs),
		ThrottleStep: cfg.Loop.ThrottleStep,
		Pool:         poolConfig(cfg),
		Session:      sessionConfig(cfg),
	}
}

func poolConfig(cfg *config.Config) realflight.PoolConfig {
	return realflight.PoolConfig{
		Addr:           cfg.ServerAddr,
		Size:           cfg.Pool.Size,
		DialTimeout:    config.Millis(cfg.Pool.DialTimeoutMs),
		IOTimeout:      config.Millis(cfg.Pool.IOTimeoutMs),
		RefillInterval: config.Millis(cfg.Pool.RefillIntervalMs),
	}
}

func sessionConfig(cfg *config.Config) realflight.SessionConfig {
	return realflight.SessionConfig{
		HandshakeTimeout: config.Millis(cfg.Session.HandshakeTimeoutMs),
		ExchangeTimeout:  config.Millis(cfg.Session.ExchangeTimeoutMs),
		ReplyCapacity:    cfg.Session.ReplyCapacity,
	}
}
