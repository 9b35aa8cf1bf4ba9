package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for rflink
type Config struct {
	ServerAddr   string
	DBPath       string // empty disables telemetry recording
	BatchSize    int
	BatchTimeout int // seconds
	HTTPAddr     string
	Pool         PoolConfig
	Session      SessionConfig
	Loop         LoopConfig
	Log          LogConfig
}

// PoolConfig holds connection pool settings
type PoolConfig struct {
	Size             int
	DialTimeoutMs    int
	IOTimeoutMs      int
	RefillIntervalMs int
}

// SessionConfig holds exchange bounds
type SessionConfig struct {
	HandshakeTimeoutMs int
	ExchangeTimeoutMs  int
	ReplyCapacity      int
}

// LoopConfig holds control loop settings
type LoopConfig struct {
	IntervalMs   int // 0 runs cycles back to back
	ThrottleStep float64
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from an optional .env file, config file and environment variables
func Load() (*Config, error) {
	// A missing .env is normal; variables may come from the real environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetDefault("server_addr", "127.0.0.1:18083")
	v.SetDefault("db_path", "rflink.db")
	v.SetDefault("batch_size", 100)
	v.SetDefault("batch_timeout", 1)
	v.SetDefault("http_addr", "")
	v.SetDefault("pool.size", 3)
	v.SetDefault("pool.dial_timeout_ms", 1000)
	v.SetDefault("pool.io_timeout_ms", 1000)
	v.SetDefault("pool.refill_interval_ms", 50)
	v.SetDefault("session.handshake_timeout_ms", 1000)
	v.SetDefault("session.exchange_timeout_ms", 1000)
	v.SetDefault("session.reply_capacity", 32*1024)
	v.SetDefault("loop.interval_ms", 0)
	v.SetDefault("loop.throttle_step", 0.03)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/rflink")
	v.AddConfigPath(".")

	if configPath := os.Getenv("RFLINK_CONFIG_PATH"); configPath != "" {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file: defaults + env vars
	}

	v.SetEnvPrefix("RFLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		ServerAddr:   v.GetString("server_addr"),
		DBPath:       v.GetString("db_path"),
		BatchSize:    v.GetInt("batch_size"),
		BatchTimeout: v.GetInt("batch_timeout"),
		HTTPAddr:     v.GetString("http_addr"),
		Pool: PoolConfig{
			Size:             v.GetInt("pool.size"),
			DialTimeoutMs:    v.GetInt("pool.dial_timeout_ms"),
			IOTimeoutMs:      v.GetInt("pool.io_timeout_ms"),
			RefillIntervalMs: v.GetInt("pool.refill_interval_ms"),
		},
		Session: SessionConfig{
			HandshakeTimeoutMs: v.GetInt("session.handshake_timeout_ms"),
			ExchangeTimeoutMs:  v.GetInt("session.exchange_timeout_ms"),
			ReplyCapacity:      v.GetInt("session.reply_capacity"),
		},
		Loop: LoopConfig{
			IntervalMs:   v.GetInt("loop.interval_ms"),
			ThrottleStep: v.GetFloat64("loop.throttle_step"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Millis converts a millisecond setting to a duration
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// validate validates the configuration values
func validate(cfg *Config) error {
	if cfg.ServerAddr == "" {
		return fmt.Errorf("server_addr is required")
	}

	if cfg.Pool.Size <= 0 {
		return fmt.Errorf("pool.size must be greater than 0")
	}

	if cfg.Pool.DialTimeoutMs <= 0 || cfg.Pool.IOTimeoutMs <= 0 || cfg.Pool.RefillIntervalMs <= 0 {
		return fmt.Errorf("pool timeouts and refill interval must be greater than 0")
	}

	if cfg.Session.HandshakeTimeoutMs <= 0 || cfg.Session.ExchangeTimeoutMs <= 0 {
		return fmt.Errorf("session timeouts must be greater than 0")
	}

	if cfg.Session.ReplyCapacity < 1024 {
		return fmt.Errorf("session.reply_capacity must be at least 1024")
	}

	if cfg.Loop.IntervalMs < 0 {
		return fmt.Errorf("loop.interval_ms must not be negative")
	}

	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be greater than 0")
	}

	if cfg.BatchTimeout <= 0 {
		return fmt.Errorf("batch_timeout must be greater than 0")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Log.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[strings.ToLower(cfg.Log.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", cfg.Log.Format)
	}

	return nil
}
