//go:build !unix

package realflight

import "net"

// peerClosed cannot probe sockets on this platform; stale connections
// surface as send or read errors instead.
func peerClosed(net.Conn) bool {
	return false
}
