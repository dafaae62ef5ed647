// Package client implements the participant side of the Open Vote
// Network handshake: the linear six-step choreography of spec.md
// §4.4.3 (login, key proof, receive the question, prove the ballot is
// valid, receive the final tally). It plays the role the teacher's
// examples/controller/controller.go plays for a Matter commissioner —
// a single driver function that walks one peer through its whole
// protocol run over an already-established Channel.
package client

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/pion/logging"

	"github.com/openvote/ovn/pkg/ballot"
	"github.com/openvote/ovn/pkg/curve"
	"github.com/openvote/ovn/pkg/transcript"
	"github.com/openvote/ovn/pkg/transport"
	"github.com/openvote/ovn/pkg/zkp"
)

// ErrKeyProofRejected is returned if the server rejects this
// participant's own Schnorr key proof (spec.md §7: fatal, non-retryable).
var ErrKeyProofRejected = errors.New("client: server rejected key proof")

// ErrBallotRejected is returned if the server rejects this
// participant's own ballot-validity proof.
var ErrBallotRejected = errors.New("client: server rejected ballot proof")

// ErrNoTally is returned when FINAL_BALLOTS decodes but no yes-count in
// [0, N] reproduces the aggregate tally point.
var ErrNoTally = errors.New("client: could not recover tally from final ballots")

// Result is what a successful run yields.
type Result struct {
	UserID   int
	Question string
	Tally    int
}

// Config bundles the per-run client dependencies.
type Config struct {
	Channel transport.Channel

	// Vote is this participant's own ballot, 0 (no) or 1 (yes).
	Vote int

	LoggerFactory logging.LoggerFactory
}

// Run drives one complete participant session to completion: it
// samples this participant's secret key, logs in, proves knowledge of
// the key, receives the question, proves its ballot is well-formed,
// and recovers the final tally once every participant has voted.
func Run(cfg Config) (*Result, error) {
	var log logging.LeveledLogger
	if cfg.LoggerFactory != nil {
		log = cfg.LoggerFactory.NewLogger("client")
	}
	ch := cfg.Channel

	if cfg.Vote != 0 && cfg.Vote != 1 {
		return nil, zkp.ErrInvalidVote
	}

	x, err := curve.RandomScalar()
	if err != nil {
		return nil, fmt.Errorf("client: sample secret key: %w", err)
	}
	publicKey := curve.Generator().ScalarMul(x)

	userID, err := login(ch, publicKey)
	if err != nil {
		return nil, fmt.Errorf("client: login: %w", err)
	}
	if log != nil {
		log.Infof("assigned user_id %d", userID)
	}

	if err := proveKey(ch, x, userID); err != nil {
		return nil, err
	}

	question, publicKeys, err := receiveQuestion(ch)
	if err != nil {
		return nil, fmt.Errorf("client: receive question: %w", err)
	}

	mask := ballot.Mask(publicKeys, userID)
	if err := proveBallot(ch, cfg.Vote, x, mask); err != nil {
		return nil, err
	}

	ballots, err := receiveFinalBallots(ch)
	if err != nil {
		return nil, fmt.Errorf("client: receive final ballots: %w", err)
	}
	tally := ballot.RecoverFromBallots(ballots)
	if tally == ballot.NoTally {
		return nil, ErrNoTally
	}

	return &Result{UserID: userID, Question: question, Tally: tally}, nil
}

func send(ch transport.Channel, sender *int, msg transcript.Message) error {
	data, err := transcript.Encode(sender, msg)
	if err != nil {
		return err
	}
	return ch.Send(data)
}

func recv(ch transport.Channel) (*int, transcript.Message, error) {
	data, err := ch.Recv()
	if err != nil {
		return nil, nil, err
	}
	return transcript.Decode(data)
}

func login(ch transport.Channel, publicKey curve.Point) (int, error) {
	if err := send(ch, nil, transcript.UserLogin{PublicKey: transcript.PointToWire(publicKey)}); err != nil {
		return 0, err
	}
	_, msg, err := recv(ch)
	if err != nil {
		return 0, err
	}
	sid, ok := msg.(transcript.SetUserID)
	if !ok {
		return 0, fmt.Errorf("expected SET_USER_ID, got %s", msg.MsgID())
	}
	return sid.UserID, nil
}

func proveKey(ch transport.Channel, x *big.Int, userID int) error {
	proof, err := zkp.SchnorrSign(x, userID)
	if err != nil {
		return fmt.Errorf("client: sign key proof: %w", err)
	}

	msg := transcript.ZKPForPubKey{
		Signature: transcript.PointToWire(proof.R),
		Exponent:  proof.S,
	}
	if err := send(ch, &userID, msg); err != nil {
		return err
	}

	_, reply, err := recv(ch)
	if err != nil {
		return err
	}
	acc, ok := reply.(transcript.ZKPForPubKeyAcc)
	if !ok {
		return fmt.Errorf("expected ZKP_FOR_PUB_KEY_ACC, got %s", reply.MsgID())
	}
	if !acc.Acceptance {
		return ErrKeyProofRejected
	}
	return nil
}

func receiveQuestion(ch transport.Channel) (string, []curve.Point, error) {
	_, msg, err := recv(ch)
	if err != nil {
		return "", nil, err
	}
	q, ok := msg.(transcript.SendQuestion)
	if !ok {
		return "", nil, fmt.Errorf("expected SEND_QUESTION, got %s", msg.MsgID())
	}
	publicKeys, err := transcript.WireToPoints(q.PublicKeys)
	if err != nil {
		return "", nil, err
	}
	return q.TheQuestion, publicKeys, nil
}

func proveBallot(ch transport.Channel, vote int, x *big.Int, mask curve.Point) error {
	commitment, maskedBallot, secret, err := zkp.ProveBallotFirstPhase(vote, x, mask)
	if err != nil {
		return fmt.Errorf("client: ballot first phase: %w", err)
	}

	first := transcript.MaskedBallotMsg{
		MaskedBallot: transcript.PointToWire(maskedBallot),
		Proof: transcript.BallotProofWire{
			X:  transcript.PointToWire(commitment.X),
			Y:  transcript.PointToWire(commitment.Y),
			A1: transcript.PointToWire(commitment.A1),
			A2: transcript.PointToWire(commitment.A2),
			B1: transcript.PointToWire(commitment.B1),
			B2: transcript.PointToWire(commitment.B2),
		},
	}
	if err := send(ch, nil, first); err != nil {
		return err
	}

	_, msg, err := recv(ch)
	if err != nil {
		return err
	}
	chal, ok := msg.(transcript.BallotChallenge)
	if !ok {
		return fmt.Errorf("expected BALLOT_CHALLENGE, got %s", msg.MsgID())
	}

	resp, err := zkp.ProveBallotSecondPhase(vote, x, secret, chal.Challenge)
	if err != nil {
		return fmt.Errorf("client: ballot second phase: %w", err)
	}
	second := transcript.BallotZKPMsg{
		Proof: transcript.BallotResponseWire{D1: resp.D1, D2: resp.D2, R1: resp.R1, R2: resp.R2},
	}
	if err := send(ch, nil, second); err != nil {
		return err
	}

	_, reply, err := recv(ch)
	if err != nil {
		return err
	}
	acc, ok := reply.(transcript.ZKPForBallotAcc)
	if !ok {
		return fmt.Errorf("expected ZKP_FOR_BALLOT_ACC, got %s", reply.MsgID())
	}
	if !acc.Acceptance {
		return ErrBallotRejected
	}
	return nil
}

func receiveFinalBallots(ch transport.Channel) ([]curve.Point, error) {
	_, msg, err := recv(ch)
	if err != nil {
		return nil, err
	}
	fb, ok := msg.(transcript.FinalBallots)
	if !ok {
		return nil, fmt.Errorf("expected FINAL_BALLOTS, got %s", msg.MsgID())
	}
	return transcript.WireToPoints(fb.Ballots)
}
