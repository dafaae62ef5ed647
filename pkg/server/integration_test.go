package server_test

import (
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/openvote/ovn/pkg/ballot"
	"github.com/openvote/ovn/pkg/client"
	"github.com/openvote/ovn/pkg/curve"
	"github.com/openvote/ovn/pkg/server"
	"github.com/openvote/ovn/pkg/transcript"
	"github.com/openvote/ovn/pkg/transport"
	"github.com/openvote/ovn/pkg/zkp"
)

// runElection drives n honest participants casting votes[i] each,
// against one shared ServerContext connected via in-memory pipes
// (spec.md §8's literal scenarios never touch a real socket).
func runElection(t *testing.T, votes []int) []*client.Result {
	t.Helper()
	n := len(votes)
	ctx := server.NewServerContext(n, "do you approve?", nil)

	results := make([]*client.Result, n)
	var wg sync.WaitGroup
	wg.Add(2 * n)

	for i := 0; i < n; i++ {
		serverEnd, clientEnd := transport.NewPipePair()

		go func() {
			defer wg.Done()
			if err := server.HandleConnection(ctx, serverEnd); err != nil {
				t.Errorf("server connection %d: %v", i, err)
			}
		}()

		i := i
		go func() {
			defer wg.Done()
			res, err := client.Run(client.Config{Channel: clientEnd, Vote: votes[i]})
			if err != nil {
				t.Errorf("client %d: %v", i, err)
				return
			}
			results[i] = res
		}()
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("election did not finish within timeout")
	}

	return results
}

func TestElectionScenarios(t *testing.T) {
	cases := []struct {
		name  string
		votes []int
		want  int
	}{
		{"n3-mixed", []int{1, 1, 0}, 2},
		{"n3-allno", []int{0, 0, 0}, 0},
		{"n5-mixed", []int{1, 0, 1, 0, 1}, 3},
		{"n2-degenerate", []int{1, 0}, 1},
		{"n3-allyes-endpoints-degenerate", []int{1, 1, 1}, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			results := runElection(t, tc.votes)
			for i, r := range results {
				if r == nil {
					t.Fatalf("participant %d: no result", i)
				}
				if r.Tally != tc.want {
					t.Fatalf("participant %d: tally = %d, want %d", i, r.Tally, tc.want)
				}
				if r.UserID != i {
					t.Fatalf("participant %d: user_id = %d, want %d", i, r.UserID, i)
				}
			}
		})
	}
}

// TestMalformedBallotStallsSecondBarrier reproduces spec.md §8 scenario
// 6: one participant sends a corrupted ballot-validity proof. The
// server must reject that ballot and never broadcast FINAL_BALLOTS to
// anyone, including the honest participants, since barrier 2 requires
// every participant's ballot to be accepted.
func TestMalformedBallotStallsSecondBarrier(t *testing.T) {
	n := 3
	ctx := server.NewServerContext(n, "do you approve?", nil)
	ctx.BarrierTimeout = 200 * time.Millisecond

	var wg sync.WaitGroup
	wg.Add(2 * n)

	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		serverEnd, clientEnd := transport.NewPipePair()

		go func() {
			defer wg.Done()
			_ = server.HandleConnection(ctx, serverEnd)
		}()

		i := i
		go func() {
			defer wg.Done()
			if i == 1 {
				errs <- runCheatingClient(clientEnd)
				return
			}
			_, err := client.Run(client.Config{Channel: clientEnd, Vote: 1})
			errs <- err
		}()
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scenario did not finish within timeout")
	}
	close(errs)

	sawBallotRejection := false
	sawStall := false
	for err := range errs {
		if err == client.ErrBallotRejected {
			sawBallotRejection = true
		}
		// Honest participants never reach FINAL_BALLOTS before the
		// server's own barrier timeout tears their connection down,
		// so client.Run surfaces a receive error rather than a result.
		if err != nil && err != client.ErrBallotRejected {
			sawStall = true
		}
	}
	if !sawBallotRejection {
		t.Fatal("expected the forged participant to see its ballot rejected")
	}
	if !sawStall {
		t.Fatal("expected honest participants to never receive FINAL_BALLOTS")
	}
}

// runCheatingClient performs the same six-step choreography as
// client.Run but submits a second-phase ballot response with a
// corrupted r1, which the server's VerifyBallot must reject.
func runCheatingClient(ch transport.Channel) error {
	x, err := curve.RandomScalar()
	if err != nil {
		return err
	}
	publicKey := curve.Generator().ScalarMul(x)

	if err := send(ch, transcript.UserLogin{PublicKey: transcript.PointToWire(publicKey)}); err != nil {
		return err
	}
	_, msg, err := recv(ch)
	if err != nil {
		return err
	}
	userID := msg.(transcript.SetUserID).UserID

	proof, err := zkp.SchnorrSign(x, userID)
	if err != nil {
		return err
	}
	if err := send(ch, transcript.ZKPForPubKey{Signature: transcript.PointToWire(proof.R), Exponent: proof.S}); err != nil {
		return err
	}
	if _, _, err := recv(ch); err != nil {
		return err
	}

	_, msg, err = recv(ch)
	if err != nil {
		return err
	}
	q := msg.(transcript.SendQuestion)
	publicKeys, err := transcript.WireToPoints(q.PublicKeys)
	if err != nil {
		return err
	}
	mask := ballot.Mask(publicKeys, userID)

	commitment, maskedBallot, secret, err := zkp.ProveBallotFirstPhase(1, x, mask)
	if err != nil {
		return err
	}
	first := transcript.MaskedBallotMsg{
		MaskedBallot: transcript.PointToWire(maskedBallot),
		Proof: transcript.BallotProofWire{
			X: transcript.PointToWire(commitment.X), Y: transcript.PointToWire(commitment.Y),
			A1: transcript.PointToWire(commitment.A1), A2: transcript.PointToWire(commitment.A2),
			B1: transcript.PointToWire(commitment.B1), B2: transcript.PointToWire(commitment.B2),
		},
	}
	if err := send(ch, first); err != nil {
		return err
	}

	_, msg, err = recv(ch)
	if err != nil {
		return err
	}
	chal := msg.(transcript.BallotChallenge)

	resp, err := zkp.ProveBallotSecondPhase(1, x, secret, chal.Challenge)
	if err != nil {
		return err
	}
	resp.R1 = new(big.Int).Add(resp.R1, big.NewInt(1)) // corrupt the response

	if err := send(ch, transcript.BallotZKPMsg{
		Proof: transcript.BallotResponseWire{D1: resp.D1, D2: resp.D2, R1: resp.R1, R2: resp.R2},
	}); err != nil {
		return err
	}

	_, reply, err := recv(ch)
	if err != nil {
		return err
	}
	acc := reply.(transcript.ZKPForBallotAcc)
	if !acc.Acceptance {
		return client.ErrBallotRejected
	}
	return nil
}

func send(ch transport.Channel, m transcript.Message) error {
	data, err := transcript.Encode(nil, m)
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
