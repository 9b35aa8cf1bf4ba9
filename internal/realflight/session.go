package realflight

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"rflink/internal/models"
)

// SessionState is the controller lifecycle state
type SessionState int

const (
	// StateUninitialized means the controller interface has not been injected yet
	StateUninitialized SessionState = iota
	// StateActive means data exchanges are accepted
	StateActive
)

func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// SessionConfig holds the exchange bounds for a Session
type SessionConfig struct {
	HandshakeTimeout time.Duration
	ExchangeTimeout  time.Duration
	ReplyCapacity    int
}

// SessionStats counts exchanges made by a Session
type SessionStats struct {
	Cycles    uint64 `json:"cycles"`
	Failures  uint64 `json:"failures"`
	Truncated uint64 `json:"truncated"`
}

// Session drives the simulator's controller interface for one control loop.
// Update is meant for a single sequential caller; State, Telemetry and Stats
// may be read from any goroutine.
type Session struct {
	framer           *Framer
	handshakeTimeout time.Duration
	exchangeTimeout  time.Duration

	mu        sync.RWMutex
	state     SessionState
	telemetry models.TelemetryState
	stats     SessionStats
}

// NewSession creates a session exchanging through pool
func NewSession(pool *Pool, cfg SessionConfig) *Session {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.ExchangeTimeout <= 0 {
		cfg.ExchangeTimeout = DefaultExchangeTimeout
	}

	return &Session{
		framer:           NewFramer(pool, cfg.ReplyCapacity),
		handshakeTimeout: cfg.HandshakeTimeout,
		exchangeTimeout:  cfg.ExchangeTimeout,
	}
}

// Update runs one control cycle. The first successful call injects the
// controller interface; until that succeeds every call only retries the
// handshake. Once active, the input is sent and the reply decoded into the
// session telemetry. A failed cycle leaves the telemetry untouched.
func (s *Session) Update(ctx context.Context, in models.ControlInput) error {
	if s.State() == StateUninitialized {
		if err := s.handshake(ctx); err != nil {
			s.countFailure()
			return err
		}
	}

	return s.exchange(ctx, in)
}

// State returns the lifecycle state
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Telemetry returns a copy of the last decoded aircraft state
func (s *Session) Telemetry() models.TelemetryState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.telemetry
}

// Stats returns the exchange counters
func (s *Session) Stats() SessionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// handshake injects the controller interface. Any reply counts as success.
func (s *Session) handshake(ctx context.Context) error {
	body := NewBody().Field("a", "1").Field("b", "2")

	if _, err := s.framer.Do(ctx, ActionInjectController, body, s.handshakeTimeout); err != nil {
		slog.Warn("Controller interface injection failed", "addr", s.framer.pool.Addr(), "error", err)
		return fmt.Errorf("%w: %w", ErrHandshake, err)
	}

	s.mu.Lock()
	s.state = StateActive
	s.mu.Unlock()

	slog.Info("Controller interface injected", "addr", s.framer.pool.Addr())
	return nil
}

// exchange sends the channel values and decodes the reply
func (s *Session) exchange(ctx context.Context, in models.ControlInput) error {
	reply, err := s.framer.Do(ctx, ActionExchangeData, ControlBody(models.NewChannelVector(in)), s.exchangeTimeout)
	if err != nil {
		s.countFailure()
		return fmt.Errorf("exchange failed: %w", err)
	}

	s.mu.Lock()
	if reply.Truncated {
		DecodePartial(reply.Data, &s.telemetry)
		s.stats.Truncated++
	} else {
		Decode(reply.Data, &s.telemetry)
	}
	s.stats.Cycles++
	s.mu.Unlock()

	if reply.Truncated {
		slog.Warn("Reply truncated, fields past the cap keep their previous values",
			"capacity", s.framer.replyCapacity,
		)
	}

	return nil
}

func (s *Session) countFailure() {
	s.mu.Lock()
	s.stats.Failures++
	s.mu.Unlock()
}

// ControlBody builds the ExchangeData body for a channel vector
func ControlBody(channels models.ChannelVector) *Body {
	body := NewBody().
		Open("pControlInputs").
		Int("m-selectedChannels", models.SelectedChannelsMask).
		Open("m-channelValues-0to1")
	for _, v := range channels {
		body.Float("item", v)
	}
	return body.
		Close("m-channelValues-0to1").
		Close("pControlInputs")
}
