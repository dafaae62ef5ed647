package curve

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// ErrRNG is returned when the CSPRNG fails to produce a scalar.
var ErrRNG = errors.New("curve: failed to sample random scalar")

// RandomScalar samples a uniform scalar in [1, n-1] using a
// cryptographically secure RNG, per spec.md §9 (the reference
// implementation's use of a non-CSPRNG generator is a defect this
// repository does not reproduce).
func RandomScalar() (*big.Int, error) {
	n := Order()
	nMinus1 := new(big.Int).Sub(n, big.NewInt(1))
	for {
		k, err := rand.Int(rand.Reader, nMinus1)
		if err != nil {
			return nil, ErrRNG
		}
		// k is in [0, n-2]; shift to [1, n-1].
		k.Add(k, big.NewInt(1))
		if k.Sign() > 0 && k.Cmp(n) < 0 {
			return k, nil
		}
	}
}

// Mod reduces k modulo the group order n.
func Mod(k *big.Int) *big.Int {
	return new(big.Int).Mod(k, Order())
}

// AddMod returns (a + b) mod n.
func AddMod(a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return Mod(r)
}

// SubMod returns (a - b) mod n.
func SubMod(a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	return Mod(r)
}

// MulMod returns (a * b) mod n.
func MulMod(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return Mod(r)
}
