// Package ballot implements the Open Vote Network ballot-mask formula,
// masked-ballot construction, and tally recovery from spec.md §3/§4.2.3.
package ballot

import (
	"math/big"

	"github.com/openvote/ovn/pkg/curve"
)

// Mask computes Y_i for participant i given the full ordered sequence
// of public keys, per spec.md §3:
//
//	Y_i = (sum of PK_j for j<i) - (sum of PK_j for j>i)
//
// Both partial sums may be the identity (for i at either end of the
// sequence); the expression degenerates accordingly, which the
// underlying curve.Point arithmetic already handles since Identity()
// is the additive zero.
func Mask(publicKeys []curve.Point, i int) curve.Point {
	before := curve.Identity()
	for j := 0; j < i; j++ {
		before = before.Add(publicKeys[j])
	}

	after := curve.Identity()
	for j := i + 1; j < len(publicKeys); j++ {
		after = after.Add(publicKeys[j])
	}

	return before.Add(after.Negate())
}

// Masks computes Y_i for every participant in one pass.
func Masks(publicKeys []curve.Point) []curve.Point {
	masks := make([]curve.Point, len(publicKeys))
	for i := range publicKeys {
		masks[i] = Mask(publicKeys, i)
	}
	return masks
}

// MaskedBallot computes B_i = Y_i·x_i + G·v_i for a single participant,
// where x is the participant's secret scalar and v is their vote (0 or 1).
func MaskedBallot(y curve.Point, x *big.Int, v int) curve.Point {
	return y.ScalarMul(x).Add(curve.Generator().ScalarMul(big.NewInt(int64(v))))
}
