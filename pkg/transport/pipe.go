package transport

import "sync"

// Pipe is an in-memory, message-oriented channel pair, used in tests in
// place of a real websocket connection. This follows the teacher's
// pkg/transport/pipe.go "virtual network pair" pattern (NewPipe /
// Conn0 / Conn1), adapted from a packet-oriented net.Conn pipe to this
// project's message-oriented Channel interface.
type Pipe struct {
	mu     sync.Mutex
	closed bool

	toA chan []byte
	toB chan []byte
}

// pipeEnd is one endpoint of a Pipe.
type pipeEnd struct {
	pipe *Pipe
	recv chan []byte
	send chan []byte
}

// NewPipePair returns two connected Channels; messages sent on one are
// received on the other, in order.
func NewPipePair() (Channel, Channel) {
	p := &Pipe{
		toA: make(chan []byte, 64),
		toB: make(chan []byte, 64),
	}
	a := &pipeEnd{pipe: p, recv: p.toA, send: p.toB}
	b := &pipeEnd{pipe: p, recv: p.toB, send: p.toA}
	return a, b
}

func (e *pipeEnd) Send(msg []byte) error {
	e.pipe.mu.Lock()
	closed := e.pipe.closed
	e.pipe.mu.Unlock()
	if closed {
		return ErrClosed
	}

	cp := make([]byte, len(msg))
	copy(cp, msg)

	select {
	case e.send <- cp:
		return nil
	default:
		// Unbounded-enough for tests: block until there's room, unless
		// the pipe closes first.
		e.send <- cp
		return nil
	}
}

func (e *pipeEnd) Recv() ([]byte, error) {
	msg, ok := <-e.recv
	if !ok {
		return nil, ErrClosed
	}
	return msg, nil
}

func (e *pipeEnd) Close() error {
	e.pipe.mu.Lock()
	defer e.pipe.mu.Unlock()
	if e.pipe.closed {
		return nil
	}
	e.pipe.closed = true
	close(e.pipe.toA)
	close(e.pipe.toB)
	return nil
}

var _ Channel = (*pipeEnd)(nil)
