package realflight

import (
	"context"
	"io"
	"net"
	"regexp"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rflink/internal/models"
)

var itemPattern = regexp.MustCompile(`<item>([^<]*)</item>`)

// channelsFromBody parses the channel vector out of an ExchangeData request body
func channelsFromBody(t *testing.T, body string) []float64 {
	t.Helper()
	var out []float64
	for _, m := range itemPattern.FindAllStringSubmatch(body, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func newTestSession(t *testing.T, addr string) *Session {
	t.Helper()
	return NewSession(newTestPool(t, addr, 2), SessionConfig{
		HandshakeTimeout: 300 * time.Millisecond,
		ExchangeTimeout:  300 * time.Millisecond,
	})
}

func TestSessionState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "unknown", SessionState(9).String())
}

func TestSession_HandshakeThenExchange(t *testing.T) {
	sim := newFakeSim(t, replyWith("<m-airspeed-MPS>3</m-airspeed-MPS>"))
	s := newTestSession(t, sim.Addr())

	require.Equal(t, StateUninitialized, s.State())

	in := models.ControlInput{Throttle: 0.0, Aileron: 0.5, Elevator: 0.5, Rudder: 0.5, Flaps: 0.0, Gear: 0.0}
	require.NoError(t, s.Update(context.Background(), in))
	assert.Equal(t, StateActive, s.State())

	handshakes := sim.RequestsFor(ActionInjectController)
	require.Len(t, handshakes, 1)
	assert.Contains(t, handshakes[0].Body, "<InjectUAVControllerInterface><a>1</a><b>2</b></InjectUAVControllerInterface>")

	require.NoError(t, s.Update(context.Background(), in))

	exchanges := sim.RequestsFor(ActionExchangeData)
	require.Len(t, exchanges, 2)
	assert.Contains(t, exchanges[1].Body, "<m-selectedChannels>4095</m-selectedChannels>")
	assert.Equal(t,
		[]float64{0.5, 0.5, 0.0, 0.5, 0.0, 0.0, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
		channelsFromBody(t, exchanges[1].Body),
	)

	// Handshake happens once
	assert.Len(t, sim.RequestsFor(ActionInjectController), 1)
	assert.Equal(t, 3.0, s.Telemetry().AirspeedMPS)
	assert.Equal(t, uint64(2), s.Stats().Cycles)
}

func TestSession_HandshakeRefused(t *testing.T) {
	s := newTestSession(t, closedAddr(t))

	err := s.Update(context.Background(), models.NeutralInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandshake)
	assert.ErrorIs(t, err, ErrConnect)
	assert.Equal(t, StateUninitialized, s.State())

	// The next call tries the handshake again
	err = s.Update(context.Background(), models.NeutralInput())
	assert.ErrorIs(t, err, ErrHandshake)
	assert.Equal(t, StateUninitialized, s.State())
	assert.Equal(t, uint64(2), s.Stats().Failures)
}

func TestSession_HandshakeRetriedAfterFailure(t *testing.T) {
	var handshakes atomic.Int32
	sim := newFakeSim(t, func(conn net.Conn, req simRequest) {
		// Drop the first handshake without answering
		if req.Action == ActionInjectController && handshakes.Add(1) == 1 {
			return
		}
		_, _ = io.WriteString(conn, soapReply(req.Action, "<m-roll-DEG>1</m-roll-DEG>"))
	})
	s := newTestSession(t, sim.Addr())

	err := s.Update(context.Background(), models.NeutralInput())
	assert.ErrorIs(t, err, ErrHandshake)
	assert.Equal(t, StateUninitialized, s.State())
	assert.Empty(t, sim.RequestsFor(ActionExchangeData))

	require.NoError(t, s.Update(context.Background(), models.NeutralInput()))
	assert.Equal(t, StateActive, s.State())
	assert.Len(t, sim.RequestsFor(ActionInjectController), 2)
	assert.Len(t, sim.RequestsFor(ActionExchangeData), 1)
	assert.Equal(t, 1.0, s.Telemetry().RollDEG)
}

func TestSession_DecodesReply(t *testing.T) {
	sim := newFakeSim(t, replyWith("<m-airspeed-MPS>12.3</m-airspeed-MPS>"))
	s := newTestSession(t, sim.Addr())

	require.NoError(t, s.Update(context.Background(), models.NeutralInput()))

	telemetry := s.Telemetry()
	assert.Equal(t, 12.3, telemetry.AirspeedMPS)
	assert.Equal(t, 0.0, telemetry.IsTouchingGround)
}

func TestSession_FailedExchangeKeepsTelemetry(t *testing.T) {
	var exchanges atomic.Int32
	sim := newFakeSim(t, func(conn net.Conn, req simRequest) {
		if req.Action == ActionExchangeData && exchanges.Add(1) > 1 {
			// Stop answering after the first exchange
			return
		}
		_, _ = io.WriteString(conn, soapReply(req.Action, "<m-altitudeAGL-MTR>42</m-altitudeAGL-MTR>"))
	})
	s := newTestSession(t, sim.Addr())

	require.NoError(t, s.Update(context.Background(), models.NeutralInput()))
	require.Equal(t, 42.0, s.Telemetry().AltitudeAGLMTR)

	err := s.Update(context.Background(), models.NeutralInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoReply)

	assert.Equal(t, StateActive, s.State())
	assert.Equal(t, 42.0, s.Telemetry().AltitudeAGLMTR)
	assert.Equal(t, uint64(1), s.Stats().Failures)
}

func TestSession_TruncatedReplyKeepsFieldsPastCut(t *testing.T) {
	inner := "<m-airspeed-MPS>9</m-airspeed-MPS>" + string(make([]byte, 200)) + "<m-altitudeASL-MTR>300</m-altitudeASL-MTR>"
	sim := newFakeSim(t, replyWith(inner))
	s := NewSession(newTestPool(t, sim.Addr(), 1), SessionConfig{ReplyCapacity: 400})

	s.telemetry.AltitudeASLMTR = 120

	require.NoError(t, s.Update(context.Background(), models.NeutralInput()))

	telemetry := s.Telemetry()
	assert.Equal(t, 9.0, telemetry.AirspeedMPS)
	assert.Equal(t, 120.0, telemetry.AltitudeASLMTR)
	assert.Equal(t, uint64(1), s.Stats().Truncated)
}
