// Package transport provides the message-oriented channel abstraction
// the protocol layers (pkg/server, pkg/client) depend on, so they never
// touch a concrete websocket or net.Conn directly. This mirrors the
// teacher's pkg/transport package, which hides UDP/TCP behind a small
// Factory/Conn interface so the protocol layers above are transport
// agnostic and trivially testable without real sockets.
package transport

import "errors"

// ErrClosed is returned by Send/Recv once the channel has been closed.
var ErrClosed = errors.New("transport: channel closed")

// Channel is a message-oriented, ordered, connection-scoped byte
// channel: one Send corresponds to exactly one Recv on the peer side.
// This is the "message-oriented byte channel" contract spec.md §4.3/§6
// requires from the transport substrate.
type Channel interface {
	// Send transmits one logical message as a single frame.
	Send(msg []byte) error

	// Recv blocks until the next frame arrives, or returns ErrClosed
	// once the channel is closed.
	Recv() ([]byte, error)

	// Close releases the channel. Safe to call more than once.
	Close() error
}
