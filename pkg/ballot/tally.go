package ballot

import (
	"math/big"

	"github.com/openvote/ovn/pkg/curve"
)

// NoTally is the sentinel returned by Recover when no yes-count in
// [0, N] reproduces the aggregate tally point (indicating a
// cheating participant whose ballot ZKP slipped past verification —
// this should be impossible against a correct verifier).
const NoTally = -1

// Sum aggregates a sequence of masked ballots into the tally point
// T = sum(B_i) = G·(sum of v_i).
func Sum(ballots []curve.Point) curve.Point {
	t := curve.Identity()
	for _, b := range ballots {
		t = t.Add(b)
	}
	return t
}

// Recover performs the bounded discrete-log search for the unique
// t in [0, N] such that G·t == T, returning NoTally if none matches.
func Recover(tally curve.Point, n int) int {
	g := curve.Generator()
	acc := curve.Identity()
	if acc.Equal(tally) {
		return 0
	}
	for t := 1; t <= n; t++ {
		acc = acc.Add(g)
		if acc.Equal(tally) {
			return t
		}
	}
	return NoTally
}

// RecoverFromBallots is a convenience wrapper combining Sum and Recover.
func RecoverFromBallots(ballots []curve.Point) int {
	return Recover(Sum(ballots), len(ballots))
}

// CheckMaskCancellation verifies the key invariant
// sum_i(x_i · Y_i) == identity for a set of secret scalars and their
// corresponding masks. Exposed for property-based tests.
func CheckMaskCancellation(secrets []*big.Int, masks []curve.Point) bool {
	acc := curve.Identity()
	for i, x := range secrets {
		acc = acc.Add(masks[i].ScalarMul(x))
	}
	return acc.IsIdentity()
}
