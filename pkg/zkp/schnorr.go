// Package zkp implements the two zero-knowledge proofs the Open Vote
// Network protocol needs: a Schnorr proof of knowledge of a secret key,
// and a 1-out-of-2 disjunctive Chaum–Pedersen proof that a masked
// ballot commits to 0 or 1. Both are built directly on pkg/curve.
//
// The challenge-binding hash in Sign/Verify hashes the minimal
// big-endian encoding of the participant index, with i=0 encoded as a
// single zero byte (not an empty byte string). This resolves the
// `bytes(int)` ambiguity noted in spec.md §9: the reference
// implementation's Python `bytes(int)` constructor produces
// zero-filled strings of length i, which is almost certainly
// unintended. This package deliberately does not reproduce that
// behavior and is not wire-compatible with it.
package zkp

import (
	"errors"
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/openvote/ovn/pkg/curve"
)

// ErrVerificationFailed reports a rejected Schnorr proof. SchnorrVerify
// itself returns a bool; callers (the server's key-proof handler) return
// this error when it is false.
var ErrVerificationFailed = errors.New("zkp: schnorr verification failed")

// idBytes returns the minimal big-endian encoding of a non-negative
// participant index, with 0 represented as a single zero byte.
func idBytes(i int) []byte {
	if i == 0 {
		return []byte{0x00}
	}
	return big.NewInt(int64(i)).Bytes()
}

// schnorrChallenge computes e = SHA3-256(idBytes(i)) mod n.
func schnorrChallenge(i int) *big.Int {
	digest := sha3.Sum256(idBytes(i))
	e := new(big.Int).SetBytes(digest[:])
	return curve.Mod(e)
}

// SchnorrProof is a non-interactive proof of knowledge of x given
// PK = G·x, bound to participant index i.
type SchnorrProof struct {
	R curve.Point
	S *big.Int
}

// SchnorrSign produces a Schnorr proof of knowledge of x, bound to
// participant identity i.
func SchnorrSign(x *big.Int, i int) (SchnorrProof, error) {
	k, err := curve.RandomScalar()
	if err != nil {
		return SchnorrProof{}, err
	}

	r := curve.Generator().ScalarMul(k)
	e := schnorrChallenge(i)

	// s = (k - x*e) mod n
	s := curve.SubMod(k, curve.MulMod(x, e))

	return SchnorrProof{R: r, S: s}, nil
}

// SchnorrVerify checks a Schnorr proof against the claimed public key.
func SchnorrVerify(i int, proof SchnorrProof, pk curve.Point) bool {
	e := schnorrChallenge(i)

	// Accept iff R == G*s + PK*e.
	rhs := curve.Generator().ScalarMul(proof.S).Add(pk.ScalarMul(e))
	return proof.R.Equal(rhs)
}
