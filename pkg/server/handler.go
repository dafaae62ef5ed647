package server

import (
	"fmt"

	"github.com/openvote/ovn/pkg/ballot"
	"github.com/openvote/ovn/pkg/curve"
	"github.com/openvote/ovn/pkg/transcript"
	"github.com/openvote/ovn/pkg/transport"
	"github.com/openvote/ovn/pkg/zkp"
)

// HandleConnection drives one participant's entire session over ch,
// from USER_LOGIN through FINAL_BALLOTS (or an early abort). It is
// meant to run in its own goroutine per incoming connection — the
// teacher's pkg/securechannel/manager.go runs one handler per secure
// channel the same way — and the only state it shares with any other
// goroutine is ctx, always touched under ctx's own lock.
func HandleConnection(ctx *ServerContext, ch transport.Channel) error {
	defer ch.Close()

	sess, err := recvLogin(ctx, ch)
	if err != nil {
		return fmt.Errorf("server: login: %w", err)
	}

	if err := verifyKeyZKP(ctx, ch, sess); err != nil {
		ctx.logf(sess, "key proof rejected: %v", err)
		return err
	}

	if !ctx.WaitKeyBarrier() {
		return fmt.Errorf("server: key barrier timed out (session %d)", sess.UserID)
	}

	if err := sendQuestion(ctx, ch, sess); err != nil {
		return fmt.Errorf("server: send question: %w", err)
	}

	if err := runBallotPhase(ctx, ch, sess); err != nil {
		ctx.logf(sess, "ballot phase error: %v", err)
		return err
	}

	// If this or any other participant's ballot was rejected, the
	// barrier below never unblocks: this call parks here indefinitely,
	// or, when ctx.BarrierTimeout is set, returns nil once it elapses and
	// the deferred Close ends the connection. Per spec.md §7, a ballot
	// ZKP failure "stalls the second barrier" rather than aborting the run.
	if !ctx.WaitBallotBarrier() {
		return nil
	}

	if err := sendFinalBallots(ctx, ch, sess); err != nil {
		return fmt.Errorf("server: send final ballots: %w", err)
	}
	return nil
}

func (ctx *ServerContext) logf(sess *ClientSession, format string, args ...any) {
	if ctx.logger == nil {
		return
	}
	ctx.logger.Warnf("session %d: "+format, append([]any{sess.UserID}, args...)...)
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

func recvLogin(ctx *ServerContext, ch transport.Channel) (*ClientSession, error) {
	_, msg, err := recv(ch)
	if err != nil {
		return nil, err
	}
	login, ok := msg.(transcript.UserLogin)
	if !ok {
		return nil, fmt.Errorf("expected USER_LOGIN, got %s", msg.MsgID())
	}

	pk, err := login.PublicKey.ToPoint()
	if err != nil {
		return nil, err
	}

	sess, err := ctx.Register(pk)
	if err != nil {
		return nil, err
	}

	if err := send(ch, nil, transcript.SetUserID{UserID: sess.UserID}); err != nil {
		return nil, err
	}
	return sess, nil
}

func verifyKeyZKP(ctx *ServerContext, ch transport.Channel, sess *ClientSession) error {
	_, msg, err := recv(ch)
	if err != nil {
		return err
	}
	zm, ok := msg.(transcript.ZKPForPubKey)
	if !ok {
		return fmt.Errorf("expected ZKP_FOR_PUB_KEY, got %s", msg.MsgID())
	}

	r, err := zm.Signature.ToPoint()
	if err != nil {
		return err
	}
	proof := zkp.SchnorrProof{R: r, S: zm.Exponent}
	accepted := zkp.SchnorrVerify(sess.UserID, proof, sess.PublicKey)

	ctx.transition(func() {
		if accepted {
			sess.keyVerified = true
			sess.Phase = PhaseKeyVerified
		}
	})

	if err := send(ch, nil, transcript.ZKPForPubKeyAcc{Acceptance: accepted}); err != nil {
		return err
	}
	if !accepted {
		return zkp.ErrVerificationFailed
	}
	return nil
}

func sendQuestion(ctx *ServerContext, ch transport.Channel, sess *ClientSession) error {
	publicKeys := ctx.PublicKeys()
	mask := ballot.Mask(publicKeys, sess.UserID)

	ctx.transition(func() {
		sess.ballotMask = mask
		sess.Phase = PhaseQuestionSent
	})

	return send(ch, nil, transcript.SendQuestion{
		TheQuestion: ctx.Question,
		PublicKeys:  transcript.PointsToWire(publicKeys),
	})
}

func runBallotPhase(ctx *ServerContext, ch transport.Channel, sess *ClientSession) error {
	_, msg, err := recv(ch)
	if err != nil {
		return err
	}
	mb, ok := msg.(transcript.MaskedBallotMsg)
	if !ok {
		return fmt.Errorf("expected MASKED_BALLOT, got %s", msg.MsgID())
	}

	maskedBallot, err := mb.MaskedBallot.ToPoint()
	if err != nil {
		return err
	}
	commitment, err := wireToCommitment(mb.Proof)
	if err != nil {
		return err
	}

	challenge, err := curve.RandomScalar()
	if err != nil {
		return err
	}

	ctx.transition(func() {
		sess.maskedBallot = maskedBallot
		sess.ballotCommitment = commitment
		sess.ballotChallenge = challenge
		sess.Phase = PhaseChallengeSent
	})

	if err := send(ch, nil, transcript.BallotChallenge{Challenge: challenge}); err != nil {
		return err
	}

	_, msg, err = recv(ch)
	if err != nil {
		return err
	}
	bz, ok := msg.(transcript.BallotZKPMsg)
	if !ok {
		return fmt.Errorf("expected BALLOT_ZKP, got %s", msg.MsgID())
	}

	resp := zkp.BallotResponse{
		D1: bz.Proof.D1, D2: bz.Proof.D2,
		R1: bz.Proof.R1, R2: bz.Proof.R2,
	}
	accepted := zkp.VerifyBallot(sess.ballotMask, commitment, challenge, resp)

	ctx.transition(func() {
		if accepted {
			sess.ballotAccepted = true
			sess.Phase = PhaseBallotVerified
		} else {
			sess.ballotRejected = true
			sess.Phase = PhaseBallotRejected
		}
	})

	return send(ch, nil, transcript.ZKPForBallotAcc{Acceptance: accepted})
}

func sendFinalBallots(ctx *ServerContext, ch transport.Channel, sess *ClientSession) error {
	ballots := ctx.MaskedBallots()
	ctx.transition(func() { sess.Phase = PhaseTallyBroadcast })
	return send(ch, nil, transcript.FinalBallots{Ballots: transcript.PointsToWire(ballots)})
}

func wireToCommitment(w transcript.BallotProofWire) (zkp.BallotCommitment, error) {
	var c zkp.BallotCommitment
	var err error
	if c.X, err = w.X.ToPoint(); err != nil {
		return c, err
	}
	if c.Y, err = w.Y.ToPoint(); err != nil {
		return c, err
	}
	if c.A1, err = w.A1.ToPoint(); err != nil {
		return c, err
	}
	if c.A2, err = w.A2.ToPoint(); err != nil {
		return c, err
	}
	if c.B1, err = w.B1.ToPoint(); err != nil {
		return c, err
	}
	if c.B2, err = w.B2.ToPoint(); err != nil {
		return c, err
	}
	return c, nil
}
