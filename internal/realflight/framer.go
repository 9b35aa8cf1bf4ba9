package realflight

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Wire format constants
const (
	envelopeOpen = "<?xml version='1.0' encoding='UTF-8'?>" +
		"<soap:Envelope xmlns:soap='http://schemas.xmlsoap.org/soap/envelope/' " +
		"xmlns:xsd='http://www.w3.org/2001/XMLSchema' " +
		"xmlns:xsi='http://www.w3.org/2001/XMLSchema-instance'>" +
		"<soap:Body>"
	envelopeClose = "</soap:Body></soap:Envelope>"

	// ReplyCompleteMarker closes the envelope of every simulator reply.
	// Finding it is a best-effort sign that the reply is complete.
	ReplyCompleteMarker = "</SOAP-ENV:Envelope>"

	contentType = "text/xml;charset=utf-8"

	readChunkSize = 4096
)

// Body builds an action body fragment from typed fields.
// Element names are trusted constants; text content is XML-escaped.
type Body struct {
	b strings.Builder
}

// NewBody returns an empty body fragment
func NewBody() *Body {
	return &Body{}
}

// Open writes a start tag
func (b *Body) Open(name string) *Body {
	b.b.WriteByte('<')
	b.b.WriteString(name)
	b.b.WriteByte('>')
	return b
}

// Close writes an end tag
func (b *Body) Close(name string) *Body {
	b.b.WriteString("</")
	b.b.WriteString(name)
	b.b.WriteByte('>')
	return b
}

// Field writes <name>text</name>
func (b *Body) Field(name, text string) *Body {
	b.Open(name)
	_ = xml.EscapeText(&b.b, []byte(text))
	return b.Close(name)
}

// Int writes an integer element
func (b *Body) Int(name string, v int) *Body {
	return b.Field(name, strconv.Itoa(v))
}

// Float writes a decimal real-number element
func (b *Body) Float(name string, v float64) *Body {
	return b.Field(name, strconv.FormatFloat(v, 'f', -1, 64))
}

// String returns the fragment built so far
func (b *Body) String() string {
	if b == nil {
		return ""
	}
	return b.b.String()
}

// Envelope wraps an action body in the fixed protocol envelope
func Envelope(action string, body *Body) string {
	var sb strings.Builder
	sb.WriteString(envelopeOpen)
	sb.WriteString("<" + action + ">")
	sb.WriteString(body.String())
	sb.WriteString("</" + action + ">")
	sb.WriteString(envelopeClose)
	return sb.String()
}

// BuildRequest returns the complete HTTP POST request for an action
func BuildRequest(action string, body *Body) []byte {
	envelope := Envelope(action, body)

	var sb strings.Builder
	sb.WriteString("POST / HTTP/1.1\r\n")
	sb.WriteString("Soapaction: '" + action + "'\r\n")
	sb.WriteString("Content-Length: " + strconv.Itoa(len(envelope)) + "\r\n")
	sb.WriteString("Content-Type: " + contentType + "\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(envelope)
	return []byte(sb.String())
}

// Reply is the raw response to one exchange
type Reply struct {
	Data      []byte
	Complete  bool // the closing envelope marker was seen
	Truncated bool // the reply hit the capacity cap before completing
}

// Framer sends one request per pooled connection and reads the reply
type Framer struct {
	pool          *Pool
	replyCapacity int
}

// NewFramer creates a framer drawing connections from pool. Replies are
// capped at replyCapacity bytes.
func NewFramer(pool *Pool, replyCapacity int) *Framer {
	if replyCapacity <= 0 {
		replyCapacity = DefaultReplyCapacity
	}
	return &Framer{
		pool:          pool,
		replyCapacity: replyCapacity,
	}
}

// Exchange is a request that has been sent and awaits its reply.
// It owns its connection until Finish returns.
type Exchange struct {
	action    string
	conn      net.Conn
	ioTimeout time.Duration
	capacity  int
}

// Start acquires a connection and writes the request for action
func (f *Framer) Start(ctx context.Context, action string, body *Body) (*Exchange, error) {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	ioTimeout := f.pool.IOTimeout()
	if err := conn.SetWriteDeadline(time.Now().Add(ioTimeout)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %s: failed to set write deadline: %w", ErrSend, action, err)
	}

	if _, err := conn.Write(BuildRequest(action, body)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrSend, action, err)
	}

	return &Exchange{
		action:    action,
		conn:      conn,
		ioTimeout: ioTimeout,
		capacity:  f.replyCapacity,
	}, nil
}

// Do runs a full exchange: Start followed by Finish
func (f *Framer) Do(ctx context.Context, action string, body *Body, timeout time.Duration) (*Reply, error) {
	x, err := f.Start(ctx, action, body)
	if err != nil {
		return nil, err
	}
	return x.Finish(timeout)
}

// Finish waits up to timeout for the reply to start, then reads until the
// closing envelope marker is seen, the peer closes, or the capacity is
// reached. The connection is always closed.
func (x *Exchange) Finish(timeout time.Duration) (*Reply, error) {
	defer x.conn.Close()

	reply := &Reply{Data: make([]byte, 0, readChunkSize)}
	chunk := make([]byte, readChunkSize)
	marker := []byte(ReplyCompleteMarker)
	wait := timeout

	var readErr error
	for {
		if err := x.conn.SetReadDeadline(time.Now().Add(wait)); err != nil {
			readErr = err
			break
		}

		n, err := x.conn.Read(chunk)
		if n > 0 {
			// Search from just before the new bytes so a marker split across reads is found
			from := max(0, len(reply.Data)-len(marker)+1)

			room := x.capacity - len(reply.Data)
			reply.Data = append(reply.Data, chunk[:min(n, room)]...)

			if bytes.Contains(reply.Data[from:], marker) {
				reply.Complete = true
				break
			}
			// A reply that exactly fills the buffer is only truncated once
			// more bytes arrive
			if n > room {
				reply.Truncated = true
				break
			}
			wait = x.ioTimeout
		}
		if err != nil {
			readErr = err
			break
		}
	}

	if len(reply.Data) > 0 {
		return reply, nil
	}

	if errors.Is(readErr, os.ErrDeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, x.action, timeout)
	}
	if readErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoReply, x.action, readErr)
	}
	return nil, fmt.Errorf("%w: %s", ErrNoReply, x.action)
}
