package realflight

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// simRequest is one request as seen by the fake simulator
type simRequest struct {
	Action        string
	ContentType   string
	ContentLength int64
	Body          string
}

// simHandler answers one request on its connection. The connection is closed
// after the handler returns.
type simHandler func(conn net.Conn, req simRequest)

// fakeSim is an in-process stand-in for the simulator's controller interface
type fakeSim struct {
	t       *testing.T
	ln      net.Listener
	handler simHandler

	mu       sync.Mutex
	requests []simRequest
	conns    []net.Conn
	accepted int

	wg sync.WaitGroup
}

func newFakeSim(t *testing.T, handler simHandler) *fakeSim {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeSim{t: t, ln: ln, handler: handler}
	s.wg.Add(1)
	go s.serve()

	t.Cleanup(s.Close)
	return s
}

func (s *fakeSim) Addr() string {
	return s.ln.Addr().String()
}

func (s *fakeSim) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.accepted++
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *fakeSim) handle(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	httpReq, err := http.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		// Warm pool connection closed without a request
		return
	}
	body, err := io.ReadAll(httpReq.Body)
	if err != nil {
		return
	}

	req := simRequest{
		Action:        strings.Trim(httpReq.Header.Get("Soapaction"), "'"),
		ContentType:   httpReq.Header.Get("Content-Type"),
		ContentLength: httpReq.ContentLength,
		Body:          string(body),
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.handler != nil {
		s.handler(conn, req)
	}
}

func (s *fakeSim) Requests() []simRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]simRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *fakeSim) RequestsFor(action string) []simRequest {
	var out []simRequest
	for _, r := range s.Requests() {
		if r.Action == action {
			out = append(out, r)
		}
	}
	return out
}

func (s *fakeSim) Accepted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

func (s *fakeSim) Close() {
	s.ln.Close()
	s.mu.Lock()
	for _, c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// soapReply renders a simulator style HTTP response around inner
func soapReply(action, inner string) string {
	envelope := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>" +
		"<SOAP-ENV:Envelope xmlns:SOAP-ENV=\"http://schemas.xmlsoap.org/soap/envelope/\">" +
		"<SOAP-ENV:Body><" + action + "Response>" + inner + "</" + action + "Response>" +
		"</SOAP-ENV:Body></SOAP-ENV:Envelope>"
	return fmt.Sprintf("HTTP/1.1 200 OK\r\nContent-Type: text/xml; charset=\"UTF-8\"\r\nContent-Length: %d\r\n\r\n%s",
		len(envelope), envelope)
}

// replyWith answers every request with a SOAP reply carrying inner
func replyWith(inner string) simHandler {
	return func(conn net.Conn, req simRequest) {
		_, _ = io.WriteString(conn, soapReply(req.Action, inner))
	}
}

// replyAndHold answers but keeps the connection open for hold
func replyAndHold(inner string, hold time.Duration) simHandler {
	return func(conn net.Conn, req simRequest) {
		_, _ = io.WriteString(conn, soapReply(req.Action, inner))
		time.Sleep(hold)
	}
}

// silent reads the request and never answers within hold
func silent(hold time.Duration) simHandler {
	return func(net.Conn, simRequest) {
		time.Sleep(hold)
	}
}

// closedAddr returns an address nobody listens on
func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func newTestPool(t *testing.T, addr string, size int) *Pool {
	t.Helper()
	p := NewPool(PoolConfig{
		Addr:           addr,
		Size:           size,
		DialTimeout:    500 * time.Millisecond,
		IOTimeout:      500 * time.Millisecond,
		RefillInterval: 10 * time.Millisecond,
	})
	t.Cleanup(func() { _ = p.Close() })
	return p
}
