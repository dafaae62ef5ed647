package server

import (
	"math/big"

	"github.com/openvote/ovn/pkg/curve"
	"github.com/openvote/ovn/pkg/zkp"
)

// Phase names the server-side protocol state of spec.md §4.4 for
// logging and diagnostics. The barrier conditions in ServerContext are
// evaluated from the boolean flags below, not from Phase ordering:
// BALLOT_VERIFIED and BALLOT_REJECTED are siblings, not successive
// steps, so a linear "phase >= X" comparison would treat a rejected
// ballot as satisfying the barrier it must never satisfy.
type Phase int

const (
	PhaseNew Phase = iota
	PhaseAwaitingKeyZKP
	PhaseKeyVerified
	PhaseQuestionSent
	PhaseChallengeSent
	PhaseBallotVerified
	PhaseBallotRejected
	PhaseTallyBroadcast
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseNew:
		return "NEW"
	case PhaseAwaitingKeyZKP:
		return "AWAITING_KEY_ZKP"
	case PhaseKeyVerified:
		return "KEY_VERIFIED"
	case PhaseQuestionSent:
		return "QUESTION_SENT"
	case PhaseChallengeSent:
		return "CHALLENGE_SENT"
	case PhaseBallotVerified:
		return "BALLOT_VERIFIED"
	case PhaseBallotRejected:
		return "BALLOT_REJECTED"
	case PhaseTallyBroadcast:
		return "TALLY_BROADCAST"
	case PhaseClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ClientSession is the server-side record for one participant's
// connection, per spec.md §3's ClientSession fields. Every mutation
// happens under the owning ServerContext's lock.
type ClientSession struct {
	UserID    int
	PublicKey curve.Point
	Phase     Phase

	keyVerified bool

	ballotMask       curve.Point
	ballotCommitment zkp.BallotCommitment
	ballotChallenge  *big.Int
	maskedBallot     curve.Point

	ballotAccepted bool
	ballotRejected bool
}
