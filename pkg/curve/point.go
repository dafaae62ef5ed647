// Package curve implements the group arithmetic the Open Vote Network
// protocol runs on: NIST P-256, exposed as an affine point type with
// addition, scalar multiplication, and strict (de)serialization.
//
// The standard library's crypto/elliptic only exposes base-point
// multiplication and curve-parameter validation; it has no general
// point-addition primitive suitable for the disjunctive ballot proof's
// non-base-point multiplications (Y_i·x_i, Y_i·r, etc). This package
// therefore implements the affine Weierstrass group law directly
// against the curve's a, b, p parameters, the way the teacher's P-256
// support is built directly against crypto/elliptic's raw parameters
// rather than a higher-level curve library.
package curve

import (
	"crypto/elliptic"
	"errors"
	"math/big"
)

// p256 is the process-wide NIST P-256 constant. It is initialized once
// and never mutated.
var p256 = elliptic.P256()

// ErrNotOnCurve is returned when deserializing a coordinate pair that
// does not lie on P-256.
var ErrNotOnCurve = errors.New("curve: point is not on P-256")

// ErrUnexpectedIdentity is returned when deserializing the point at
// infinity in a context that requires a non-identity point.
var ErrUnexpectedIdentity = errors.New("curve: unexpected point at infinity")

// Point is an affine (x, y) pair on P-256, or the identity (point at
// infinity), represented with x == y == nil.
type Point struct {
	x, y *big.Int
}

// Identity returns the group identity element (point at infinity).
func Identity() Point {
	return Point{}
}

// Generator returns the standard P-256 base point G.
func Generator() Point {
	p := p256.Params()
	return Point{x: new(big.Int).Set(p.Gx), y: new(big.Int).Set(p.Gy)}
}

// Order returns the prime order n of the P-256 group.
func Order() *big.Int {
	return new(big.Int).Set(p256.Params().N)
}

// FromCoords builds a Point from two big.Int coordinates, rejecting
// anything off-curve. Use this for untrusted wire input.
func FromCoords(x, y *big.Int) (Point, error) {
	if x.Sign() == 0 && y.Sign() == 0 {
		// (0,0) is never a valid affine P-256 point and is used on the
		// wire to denote the identity explicitly if ever needed; callers
		// that expect a non-identity point get ErrUnexpectedIdentity.
		return Point{}, ErrUnexpectedIdentity
	}
	if !p256.IsOnCurve(x, y) {
		return Point{}, ErrNotOnCurve
	}
	return Point{x: new(big.Int).Set(x), y: new(big.Int).Set(y)}, nil
}

// IsIdentity reports whether p is the point at infinity.
func (p Point) IsIdentity() bool {
	return p.x == nil || p.y == nil
}

// Coords returns the affine coordinates of p. Both are nil for the
// identity.
func (p Point) Coords() (x, y *big.Int) {
	if p.IsIdentity() {
		return nil, nil
	}
	return new(big.Int).Set(p.x), new(big.Int).Set(p.y)
}

// Serialize returns the point as an ordered pair of nonnegative
// integers, per spec.md §3. The identity serializes as (0, 0).
func (p Point) Serialize() (x, y *big.Int) {
	if p.IsIdentity() {
		return big.NewInt(0), big.NewInt(0)
	}
	return p.Coords()
}

// Deserialize parses a serialized coordinate pair. (0, 0) decodes to
// the identity; any other off-curve pair is an error.
func Deserialize(x, y *big.Int) (Point, error) {
	if x.Sign() == 0 && y.Sign() == 0 {
		return Identity(), nil
	}
	if !p256.IsOnCurve(x, y) {
		return Point{}, ErrNotOnCurve
	}
	return Point{x: new(big.Int).Set(x), y: new(big.Int).Set(y)}, nil
}

// Equal reports value equality of the affine coordinates (or both
// being the identity).
func (p Point) Equal(q Point) bool {
	if p.IsIdentity() || q.IsIdentity() {
		return p.IsIdentity() && q.IsIdentity()
	}
	return p.x.Cmp(q.x) == 0 && p.y.Cmp(q.y) == 0
}

// Add computes the group sum p + q using the standard affine
// Weierstrass addition/doubling law for curves of the form
// y^2 = x^3 - 3x + b (mod P), which is how NIST P-256 is parameterized.
func (p Point) Add(q Point) Point {
	if p.IsIdentity() {
		return q
	}
	if q.IsIdentity() {
		return p
	}

	params := p256.Params()
	mod := params.P

	if p.x.Cmp(q.x) == 0 {
		if p.y.Cmp(q.y) != 0 || p.y.Sign() == 0 {
			// p == -q: sum is the identity.
			return Identity()
		}
		return p.double()
	}

	// lambda = (qy - py) / (qx - px) mod P
	num := new(big.Int).Sub(q.y, p.y)
	num.Mod(num, mod)
	den := new(big.Int).Sub(q.x, p.x)
	den.Mod(den, mod)
	den.ModInverse(den, mod)
	lambda := new(big.Int).Mul(num, den)
	lambda.Mod(lambda, mod)

	return affineFromLambda(lambda, p.x, p.y, q.x, mod)
}

// double computes p + p via the tangent-line doubling formula for
// a = -3 curves (true of P-256).
func (p Point) double() Point {
	params := p256.Params()
	mod := params.P

	// lambda = (3*px^2 - 3) / (2*py) mod P
	num := new(big.Int).Mul(p.x, p.x)
	num.Mul(num, big.NewInt(3))
	num.Sub(num, big.NewInt(3))
	num.Mod(num, mod)

	den := new(big.Int).Lsh(p.y, 1)
	den.Mod(den, mod)
	den.ModInverse(den, mod)

	lambda := new(big.Int).Mul(num, den)
	lambda.Mod(lambda, mod)

	return affineFromLambda(lambda, p.x, p.y, p.x, mod)
}

// affineFromLambda finishes an addition/doubling given the computed
// slope lambda and the two input x-coordinates (qx == px for doubling).
func affineFromLambda(lambda, px, py, qx *big.Int, mod *big.Int) Point {
	rx := new(big.Int).Mul(lambda, lambda)
	rx.Sub(rx, px)
	rx.Sub(rx, qx)
	rx.Mod(rx, mod)

	ry := new(big.Int).Sub(px, rx)
	ry.Mul(ry, lambda)
	ry.Sub(ry, py)
	ry.Mod(ry, mod)

	return Point{x: rx, y: ry}
}

// Negate returns -p (the additive inverse).
func (p Point) Negate() Point {
	if p.IsIdentity() {
		return Identity()
	}
	params := p256.Params()
	ny := new(big.Int).Neg(p.y)
	ny.Mod(ny, params.P)
	return Point{x: new(big.Int).Set(p.x), y: ny}
}

// ScalarMul computes p·k for an arbitrary integer k (reduced mod the
// group order n before multiplication; k == 0 yields the identity).
// For p == Generator(), this defers to the constant-time
// crypto/elliptic base-point multiplication; for arbitrary points it
// uses a double-and-add loop driven by the same arithmetic as Add.
func (p Point) ScalarMul(k *big.Int) Point {
	n := Order()
	kk := new(big.Int).Mod(k, n)
	if kk.Sign() == 0 {
		return Identity()
	}

	if p.x != nil && p.y != nil && p.x.Cmp(Generator().x) == 0 && p.y.Cmp(Generator().y) == 0 {
		x, y := p256.ScalarBaseMult(kk.Bytes())
		return Point{x: x, y: y}
	}

	result := Identity()
	addend := p
	for i := kk.BitLen() - 1; i >= 0; i-- {
		result = result.double2()
		if kk.Bit(i) == 1 {
			result = result.Add(addend)
		}
	}
	return result
}

// double2 doubles the identity safely (Add already special-cases it,
// this just keeps ScalarMul's loop uniform).
func (p Point) double2() Point {
	if p.IsIdentity() {
		return Identity()
	}
	return p.double()
}
