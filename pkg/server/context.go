// Package server implements the session orchestrator of spec.md §4.4:
// the per-connection ClientSession state machine, the shared
// ServerContext session table, and the two barrier synchronization
// points (all keys verified, all ballots accepted) every connection
// waits on before advancing.
//
// This follows the teacher's pkg/session/manager.go (a single
// lock-guarded table of sessions, looked up and mutated under one
// mutex) and pkg/securechannel/manager.go (one goroutine per
// connection, state transitions applied under the shared lock, with
// any blocking notification done via condition-variable broadcast
// rather than busy-polling wherever possible).
package server

import (
	"sync"
	"time"

	"github.com/pion/logging"

	"github.com/openvote/ovn/pkg/curve"
)

// ErrFull is returned by Register once NumParticipants sessions have
// already been admitted.
var ErrFull = errFull{}

type errFull struct{}

func (errFull) Error() string { return "server: session table full" }

// ServerContext is the single shared resource every per-connection
// goroutine touches (spec.md §5: "the sessions table is the only
// shared resource; a single mutex is held per transition"). All other
// per-connection state lives in that connection's own ClientSession
// and goroutine stack.
type ServerContext struct {
	mu   sync.Mutex
	cond *sync.Cond

	NumParticipants int
	Question        string

	// BarrierTimeout bounds how long WaitKeyBarrier/WaitBallotBarrier
	// will block before giving up. Zero (the default) disables the
	// timeout and waits indefinitely, matching spec.md §9's "no
	// barrier timeout is mandated by this spec; implementers may add
	// one."
	BarrierTimeout time.Duration

	sessions []*ClientSession // index == user_id, append-only, login order

	logger logging.LeveledLogger
}

// NewServerContext creates a session table for a run of n participants
// voting on question. logger may be nil, which disables logging
// entirely (the teacher's own LoggerFactory convention).
func NewServerContext(n int, question string, logger logging.LeveledLogger) *ServerContext {
	ctx := &ServerContext{
		NumParticipants: n,
		Question:        question,
		logger:          logger,
	}
	ctx.cond = sync.NewCond(&ctx.mu)
	return ctx
}

// Register assigns the next dense user_id in login arrival order
// (spec.md §3's "user_id assigned in login order") and appends a fresh
// session to the table.
func (ctx *ServerContext) Register(publicKey curve.Point) (*ClientSession, error) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if len(ctx.sessions) >= ctx.NumParticipants {
		return nil, ErrFull
	}

	sess := &ClientSession{
		UserID:    len(ctx.sessions),
		PublicKey: publicKey,
		Phase:     PhaseAwaitingKeyZKP,
	}
	ctx.sessions = append(ctx.sessions, sess)
	ctx.cond.Broadcast()
	return sess, nil
}

// transition runs fn under the context lock, then wakes every barrier
// waiter since fn may have just satisfied one.
func (ctx *ServerContext) transition(fn func()) {
	ctx.mu.Lock()
	fn()
	ctx.cond.Broadcast()
	ctx.mu.Unlock()
}

// PublicKeys returns the ordered public keys of every registered
// participant, for the SEND_QUESTION payload.
func (ctx *ServerContext) PublicKeys() []curve.Point {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	out := make([]curve.Point, len(ctx.sessions))
	for i, s := range ctx.sessions {
		out[i] = s.PublicKey
	}
	return out
}

// MaskedBallots returns the ordered masked ballots of every registered
// participant, for the FINAL_BALLOTS payload.
func (ctx *ServerContext) MaskedBallots() []curve.Point {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	out := make([]curve.Point, len(ctx.sessions))
	for i, s := range ctx.sessions {
		out[i] = s.maskedBallot
	}
	return out
}

// WaitKeyBarrier blocks until NumParticipants sessions are registered
// and every one of them has a verified Schnorr key proof (barrier 1 of
// spec.md §4.4). Returns false only if BarrierTimeout is set and
// elapses first.
func (ctx *ServerContext) WaitKeyBarrier() bool {
	return ctx.waitUntil(func() bool {
		if len(ctx.sessions) != ctx.NumParticipants {
			return false
		}
		for _, s := range ctx.sessions {
			if !s.keyVerified {
				return false
			}
		}
		return true
	})
}

// WaitBallotBarrier blocks until every registered participant's ballot
// has been accepted (barrier 2). A participant whose ballot was
// rejected never sets ballotAccepted, so this barrier stalls
// permanently for that run unless BarrierTimeout is set — the intended
// behavior of spec.md §8 scenario 6.
func (ctx *ServerContext) WaitBallotBarrier() bool {
	return ctx.waitUntil(func() bool {
		if len(ctx.sessions) != ctx.NumParticipants {
			return false
		}
		for _, s := range ctx.sessions {
			if !s.ballotAccepted {
				return false
			}
		}
		return true
	})
}

// waitUntil blocks until cond() is true. With no BarrierTimeout
// configured it parks on the condition variable (the preferred
// mechanism per spec.md §4.4); with a timeout configured, a condition
// variable has no timed-wait primitive in the standard library, so it
// falls back to the bounded poll-with-sleep spec.md §4.4 explicitly
// allows ("poll with sleep (100ms) is acceptable").
func (ctx *ServerContext) waitUntil(cond func() bool) bool {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if ctx.BarrierTimeout <= 0 {
		for !cond() {
			ctx.cond.Wait()
		}
		return true
	}

	deadline := time.Now().Add(ctx.BarrierTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			return false
		}
		ctx.mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		ctx.mu.Lock()
	}
	return true
}
