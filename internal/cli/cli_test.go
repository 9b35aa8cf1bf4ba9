package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"rflink/internal/config"
	"rflink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeysCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"keys"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, len(models.KeyTable))
	assert.Contains(t, lines, "m-airspeed-MPS")
}

func TestDaemonConfig(t *testing.T) {
	cfg := &config.Config{
		ServerAddr:   "10.1.1.1:18083",
		DBPath:       "x.db",
		BatchSize:    10,
		BatchTimeout: 2,
		Pool:         config.PoolConfig{Size: 4, DialTimeoutMs: 100, IOTimeoutMs: 200, RefillIntervalMs: 30},
		Session:      config.SessionConfig{HandshakeTimeoutMs: 300, ExchangeTimeoutMs: 400, ReplyCapacity: 2048},
		Loop:         config.LoopConfig{IntervalMs: 20, ThrottleStep: 0.05},
	}

	dc := daemonConfig(cfg)

	assert.Equal(t, "10.1.1.1:18083", dc.ServerAddr)
	assert.Equal(t, 20*time.Millisecond, dc.LoopInterval)
	assert.Equal(t, 0.05, dc.ThrottleStep)
	assert.Equal(t, 4, dc.Pool.Size)
	assert.Equal(t, "10.1.1.1:18083", dc.Pool.Addr)
	assert.Equal(t, 200*time.Millisecond, dc.Pool.IOTimeout)
	assert.Equal(t, 400*time.Millisecond, dc.Session.ExchangeTimeout)
	assert.Equal(t, 2048, dc.Session.ReplyCapacity)
}
