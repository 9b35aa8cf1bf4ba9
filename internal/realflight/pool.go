package realflight

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
)

// PoolConfig configures a connection pool
type PoolConfig struct {
	Addr           string        // Simulator address, e.g. "127.0.0.1:18083"
	Size           int           // Maximum number of idle connections kept warm
	DialTimeout    time.Duration // Bound on opening one connection
	IOTimeout      time.Duration // Per-operation send/receive bound applied by the framer
	RefillInterval time.Duration // Periodic refill wake-up, in addition to wake on acquire
}

// PoolStats is a snapshot of pool counters
type PoolStats struct {
	Idle         int    `json:"idle"`
	Size         int    `json:"size"`
	Dials        uint64 `json:"dials"`
	DialFailures uint64 `json:"dial_failures"`
	Hits         uint64 `json:"hits"`
	Misses       uint64 `json:"misses"`
	StaleDrops   uint64 `json:"stale_drops"`
}

// Pool keeps a bounded set of freshly dialed, never used TCP connections to
// one simulator endpoint. The simulator accepts only one request per
// connection, so connections are handed out once and never returned.
type Pool struct {
	cfg         PoolConfig
	dialer      net.Dialer
	dialContext func(ctx context.Context, network, addr string) (net.Conn, error)

	mu     sync.Mutex
	idle   *queue.Queue // of net.Conn
	closed bool

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	dials        atomic.Uint64
	dialFailures atomic.Uint64
	hits         atomic.Uint64
	misses       atomic.Uint64
	staleDrops   atomic.Uint64
}

// NewPool creates a pool and starts its background refill goroutine
func NewPool(cfg PoolConfig) *Pool {
	return newPool(cfg, nil)
}

// newPool is NewPool with a replaceable dial function; nil uses the dialer
func newPool(cfg PoolConfig, dialContext func(ctx context.Context, network, addr string) (net.Conn, error)) *Pool {
	if cfg.Size <= 0 {
		cfg.Size = DefaultPoolSize
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultIOTimeout
	}
	if cfg.IOTimeout <= 0 {
		cfg.IOTimeout = DefaultIOTimeout
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = DefaultRefillInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		cfg:    cfg,
		dialer: net.Dialer{Timeout: cfg.DialTimeout},
		idle:   queue.New(),
		wake:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
	}
	p.dialContext = dialContext
	if p.dialContext == nil {
		p.dialContext = p.dialer.DialContext
	}

	p.wg.Add(1)
	go p.maintain()

	return p
}

// Addr returns the simulator address the pool dials
func (p *Pool) Addr() string {
	return p.cfg.Addr
}

// IOTimeout returns the per-operation send/receive bound
func (p *Pool) IOTimeout() time.Duration {
	return p.cfg.IOTimeout
}

// Acquire hands out one connection. It takes an idle one when available and
// otherwise dials synchronously; it never waits for the refill goroutine.
// Only taking an idle connection wakes the refill, a miss leaves it to the ticker.
// The caller owns the returned connection and must close it after one exchange.
func (p *Pool) Acquire(ctx context.Context) (net.Conn, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}
		if p.idle.Length() == 0 {
			p.mu.Unlock()
			break
		}
		conn := p.idle.Remove().(net.Conn)
		p.mu.Unlock()
		p.signal()

		if peerClosed(conn) {
			p.staleDrops.Add(1)
			conn.Close()
			continue
		}

		p.hits.Add(1)
		return conn, nil
	}

	p.misses.Add(1)
	conn, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		conn.Close()
		return nil, ErrPoolClosed
	}
	return conn, nil
}

// Idle returns the number of connections waiting in the pool
func (p *Pool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idle.Length()
}

// Stats returns a snapshot of the pool counters
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Idle:         p.Idle(),
		Size:         p.cfg.Size,
		Dials:        p.dials.Load(),
		DialFailures: p.dialFailures.Load(),
		Hits:         p.hits.Load(),
		Misses:       p.misses.Load(),
		StaleDrops:   p.staleDrops.Load(),
	}
}

// Close stops the refill goroutine, waits for it and closes every idle connection
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	drained := 0
	for p.idle.Length() > 0 {
		p.idle.Remove().(net.Conn).Close()
		drained++
	}
	slog.Debug("Connection pool closed", "addr", p.cfg.Addr, "drained", drained)
	return nil
}

// signal wakes the refill goroutine without blocking
func (p *Pool) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// dial opens one connection to the simulator
func (p *Pool) dial(ctx context.Context) (net.Conn, error) {
	p.dials.Add(1)
	conn, err := p.dialContext(ctx, "tcp", p.cfg.Addr)
	if err != nil {
		p.dialFailures.Add(1)
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, p.cfg.Addr, err)
	}
	return conn, nil
}

// maintain keeps the idle queue topped up. It wakes when a connection is
// taken and on every refill tick. After a failed dial, wakes are ignored
// until the next tick so an unreachable simulator is retried at the tick rate.
func (p *Pool) maintain() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.RefillInterval)
	defer ticker.Stop()

	failed := !p.fill()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.wake:
			if failed {
				continue
			}
		case <-ticker.C:
		}
		failed = !p.fill()
	}
}

// fill dials until the queue is full. It reports false when a dial failed.
func (p *Pool) fill() bool {
	for p.ctx.Err() == nil {
		if p.Idle() >= p.cfg.Size {
			return true
		}

		conn, err := p.dial(p.ctx)
		if err != nil {
			if p.ctx.Err() == nil {
				slog.Debug("Pool refill dial failed", "addr", p.cfg.Addr, "error", err)
			}
			return false
		}

		p.mu.Lock()
		if p.closed || p.idle.Length() >= p.cfg.Size {
			p.mu.Unlock()
			conn.Close()
			return true
		}
		p.idle.Add(conn)
		p.mu.Unlock()
	}
	return true
}
