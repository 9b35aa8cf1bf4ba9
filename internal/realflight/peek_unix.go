//go:build unix

package realflight

import (
	"errors"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// peerClosed reports whether the remote end already closed an idle connection.
// It peeks one byte without blocking; EOF or a socket error means the
// connection is dead, EAGAIN means it is still open and silent.
func peerClosed(conn net.Conn) bool {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return false
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return true
	}

	closed := false
	buf := make([]byte, 1)
	err = raw.Read(func(fd uintptr) bool {
		n, _, rerr := unix.Recvfrom(int(fd), buf, unix.MSG_PEEK|unix.MSG_DONTWAIT)
		switch {
		case rerr == nil && n == 0:
			closed = true
		case rerr != nil && !errors.Is(rerr, unix.EAGAIN) && !errors.Is(rerr, unix.EWOULDBLOCK):
			closed = true
		}
		// Never wait for readiness, a single probe is enough
		return true
	})
	if err != nil {
		return true
	}
	return closed
}
