package zkp

import (
	"errors"
	"math/big"

	"github.com/openvote/ovn/pkg/curve"
)

// ErrInvalidVote is returned when asked to prove a vote outside {0, 1}.
var ErrInvalidVote = errors.New("zkp: vote must be 0 or 1")

// BallotCommitment is the first-phase transcript of the 1-of-2
// disjunctive Chaum–Pedersen ballot-validity proof (spec.md §4.2.2),
// sent from prover to verifier before the challenge is known.
type BallotCommitment struct {
	X, Y   curve.Point // x = PK_i, y = B_i
	A1, A2 curve.Point
	B1, B2 curve.Point
}

// BallotResponse is the second-phase transcript, sent after the
// verifier's challenge c.
type BallotResponse struct {
	D1, D2 *big.Int
	R1, R2 *big.Int
}

// BallotSecret is the prover's first-phase state, persisted between
// commitment and response. It must never be reused across proofs.
type BallotSecret struct {
	w, r, d *big.Int
}

// ProveBallotFirstPhase computes the masked ballot B_i = Y·x + G·v and
// the first-phase commitment for the disjunctive proof that v ∈ {0,1}.
// Returns the commitment to send, the masked ballot itself, and the
// secret state to retain until the challenge arrives.
func ProveBallotFirstPhase(v int, x *big.Int, y curve.Point) (BallotCommitment, curve.Point, *BallotSecret, error) {
	if v != 0 && v != 1 {
		return BallotCommitment{}, curve.Point{}, nil, ErrInvalidVote
	}

	w, err := curve.RandomScalar()
	if err != nil {
		return BallotCommitment{}, curve.Point{}, nil, err
	}
	r, err := curve.RandomScalar()
	if err != nil {
		return BallotCommitment{}, curve.Point{}, nil, err
	}
	d, err := curve.RandomScalar()
	if err != nil {
		return BallotCommitment{}, curve.Point{}, nil, err
	}

	g := curve.Generator()
	xPt := g.ScalarMul(x)
	yPt := y.ScalarMul(x).Add(g.ScalarMul(big.NewInt(int64(v))))

	a1 := g.ScalarMul(r).Add(xPt.ScalarMul(d))
	a2 := g.ScalarMul(w)

	vMinus1 := curve.Mod(big.NewInt(int64(v - 1)))
	b1 := y.ScalarMul(r).Add(yPt.Add(g.ScalarMul(vMinus1)).ScalarMul(d))
	b2 := y.ScalarMul(w)

	commitment := BallotCommitment{X: xPt, Y: yPt}
	if v == 1 {
		commitment.A1, commitment.A2 = a1, a2
		commitment.B1, commitment.B2 = b1, b2
	} else {
		// v == 0: the "real" simulator slot swaps sides.
		commitment.A1, commitment.A2 = a2, a1
		commitment.B1, commitment.B2 = b2, b1
	}

	return commitment, yPt, &BallotSecret{w: w, r: r, d: d}, nil
}

// ProveBallotSecondPhase computes the second-phase response given the
// verifier's challenge c and the persisted first-phase secret.
func ProveBallotSecondPhase(v int, x *big.Int, secret *BallotSecret, c *big.Int) (BallotResponse, error) {
	if v != 0 && v != 1 {
		return BallotResponse{}, ErrInvalidVote
	}

	d2 := curve.SubMod(c, secret.d)
	r2 := curve.SubMod(secret.w, curve.MulMod(x, d2))

	if v == 1 {
		return BallotResponse{D1: secret.d, D2: d2, R1: secret.r, R2: r2}, nil
	}
	return BallotResponse{D1: d2, D2: secret.d, R1: r2, R2: secret.r}, nil
}

// VerifyBallot checks the full ballot-validity transcript: first-phase
// commitment, challenge, and second-phase response, against the
// participant's ballot mask Y.
func VerifyBallot(y curve.Point, commitment BallotCommitment, c *big.Int, resp BallotResponse) bool {
	if curve.AddMod(resp.D1, resp.D2).Cmp(curve.Mod(c)) != 0 {
		return false
	}

	g := curve.Generator()
	x := commitment.X
	yPt := commitment.Y

	// a1 == G*r1 + x*d1
	lhsA1 := commitment.A1
	rhsA1 := g.ScalarMul(resp.R1).Add(x.ScalarMul(resp.D1))
	if !lhsA1.Equal(rhsA1) {
		return false
	}

	// b1 == Y*r1 + y*d1
	lhsB1 := commitment.B1
	rhsB1 := y.ScalarMul(resp.R1).Add(yPt.ScalarMul(resp.D1))
	if !lhsB1.Equal(rhsB1) {
		return false
	}

	// a2 == G*r2 + x*d2
	lhsA2 := commitment.A2
	rhsA2 := g.ScalarMul(resp.R2).Add(x.ScalarMul(resp.D2))
	if !lhsA2.Equal(rhsA2) {
		return false
	}

	// b2 == Y*r2 + (y + G*(-1 mod n))*d2
	negOne := curve.Mod(big.NewInt(-1))
	lhsB2 := commitment.B2
	rhsB2 := y.ScalarMul(resp.R2).Add(yPt.Add(g.ScalarMul(negOne)).ScalarMul(resp.D2))
	return lhsB2.Equal(rhsB2)
}
