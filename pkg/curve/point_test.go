package curve

import (
	"math/big"
	"testing"
)

func TestIdentityIsAdditiveZero(t *testing.T) {
	g := Generator()
	if !Identity().Add(g).Equal(g) {
		t.Fatal("zero() + P != P")
	}
	if !g.Add(Identity()).Equal(g) {
		t.Fatal("P + zero() != P")
	}
	if !g.ScalarMul(big.NewInt(0)).Equal(Identity()) {
		t.Fatal("P * 0 != identity")
	}
}

func TestScalarMulMatchesRepeatedAdd(t *testing.T) {
	g := Generator()
	sum := Identity()
	for i := 0; i < 7; i++ {
		sum = sum.Add(g)
	}
	if !sum.Equal(g.ScalarMul(big.NewInt(7))) {
		t.Fatal("G*7 != G+G+...+G (7 times)")
	}
}

func TestCurveLawHomomorphism(t *testing.T) {
	g := Generator()
	a := big.NewInt(123456789)
	b := big.NewInt(987654321)

	lhs := g.ScalarMul(AddMod(a, b))
	rhs := g.ScalarMul(a).Add(g.ScalarMul(b))
	if !lhs.Equal(rhs) {
		t.Fatal("G*(a+b mod n) != G*a + G*b")
	}
}

func TestOrderTimesGeneratorIsIdentity(t *testing.T) {
	g := Generator()
	if !g.ScalarMul(Order()).Equal(Identity()) {
		t.Fatal("G*n != identity")
	}
}

func TestNegateCancels(t *testing.T) {
	g := Generator()
	sum := g.Add(g.Negate())
	if !sum.Equal(Identity()) {
		t.Fatal("P + (-P) != identity")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	g := Generator().ScalarMul(big.NewInt(42))
	x, y := g.Serialize()
	got, err := Deserialize(x, y)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if !got.Equal(g) {
		t.Fatal("round trip mismatch")
	}
}

func TestIdentitySerializesAsZeroZero(t *testing.T) {
	x, y := Identity().Serialize()
	if x.Sign() != 0 || y.Sign() != 0 {
		t.Fatalf("identity serialized as (%v, %v), want (0, 0)", x, y)
	}
	got, err := Deserialize(big.NewInt(0), big.NewInt(0))
	if err != nil {
		t.Fatalf("Deserialize(0,0) failed: %v", err)
	}
	if !got.IsIdentity() {
		t.Fatal("Deserialize(0,0) did not yield identity")
	}
}

func TestDeserializeRejectsOffCurve(t *testing.T) {
	_, err := Deserialize(big.NewInt(1), big.NewInt(2))
	if err != ErrNotOnCurve {
		t.Fatalf("expected ErrNotOnCurve, got %v", err)
	}
}

func TestFromCoordsRejectsOrigin(t *testing.T) {
	_, err := FromCoords(big.NewInt(0), big.NewInt(0))
	if err != ErrUnexpectedIdentity {
		t.Fatalf("expected ErrUnexpectedIdentity, got %v", err)
	}
}

func TestRandomScalarInRange(t *testing.T) {
	n := Order()
	for i := 0; i < 20; i++ {
		k, err := RandomScalar()
		if err != nil {
			t.Fatalf("RandomScalar failed: %v", err)
		}
		if k.Sign() <= 0 || k.Cmp(n) >= 0 {
			t.Fatalf("scalar %v out of range [1, n-1]", k)
		}
	}
}
