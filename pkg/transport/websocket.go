package transport

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketChannel adapts a gorilla/websocket connection to the
// Channel interface, framing each Send/Recv as one binary message.
//
// No example repo in the retrieval pack frames application messages
// over a websocket directly in the teacher's style, so this file is
// new ambient plumbing rather than an adaptation of an existing file;
// it follows the teacher's general shape of wrapping a third-party
// transport behind the project's own narrow interface (see
// pkg/transport/tcp.go's Factory pattern in the teacher repo).
type WebSocketChannel struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

// NewWebSocketChannel wraps an already-established *websocket.Conn.
func NewWebSocketChannel(conn *websocket.Conn) *WebSocketChannel {
	return &WebSocketChannel{conn: conn}
}

// Send writes msg as a single binary websocket frame.
func (c *WebSocketChannel) Send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, msg)
}

// Recv reads the next binary websocket frame.
func (c *WebSocketChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return data, nil
}

// Close closes the underlying connection.
func (c *WebSocketChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

var _ Channel = (*WebSocketChannel)(nil)

// upgrader is the server-side websocket upgrader. Origin checking is
// intentionally permissive: per spec.md §6 this is a test/internal
// deployment behind a self-signed certificate, not a public service.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Upgrade upgrades an incoming HTTP request to a WebSocketChannel.
func Upgrade(w http.ResponseWriter, r *http.Request) (*WebSocketChannel, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: upgrade failed: %w", err)
	}
	return NewWebSocketChannel(conn), nil
}

// DialConfig configures an outbound client connection.
type DialConfig struct {
	URL string

	// TLSConfig is used for wss:// dials. Hostname verification is
	// deliberately left to the caller's tls.Config: per spec.md §6 the
	// server presents a self-signed certificate and hostname
	// verification is off by design for these test deployments.
	TLSConfig *tls.Config

	HandshakeTimeout time.Duration
}

// Dial opens a client-side WebSocketChannel.
func Dial(cfg DialConfig) (*WebSocketChannel, error) {
	dialer := websocket.Dialer{
		TLSClientConfig:  cfg.TLSConfig,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}
	if dialer.HandshakeTimeout == 0 {
		dialer.HandshakeTimeout = 10 * time.Second
	}

	conn, _, err := dialer.Dial(cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial failed: %w", err)
	}
	return NewWebSocketChannel(conn), nil
}
