package realflight

import "errors"

var (
	// ErrConnect means a connection to the simulator could not be opened
	ErrConnect = errors.New("connect failed")
	// ErrSend means the request could not be written
	ErrSend = errors.New("send failed")
	// ErrTimeout means no reply data arrived within the wait bound
	ErrTimeout = errors.New("timed out waiting for reply")
	// ErrNoReply means the peer closed the connection without sending anything
	ErrNoReply = errors.New("no reply received")
	// ErrHandshake means the controller interface injection did not complete
	ErrHandshake = errors.New("handshake failed")
	// ErrPoolClosed is returned by Acquire after Close
	ErrPoolClosed = errors.New("connection pool closed")
)
