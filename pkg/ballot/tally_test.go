package ballot

import (
	"math/big"
	"testing"

	"github.com/openvote/ovn/pkg/curve"
)

func genKeys(t *testing.T, n int) ([]*big.Int, []curve.Point) {
	t.Helper()
	secrets := make([]*big.Int, n)
	pubkeys := make([]curve.Point, n)
	for i := 0; i < n; i++ {
		x, err := curve.RandomScalar()
		if err != nil {
			t.Fatal(err)
		}
		secrets[i] = x
		pubkeys[i] = curve.Generator().ScalarMul(x)
	}
	return secrets, pubkeys
}

func TestMaskCancellation(t *testing.T) {
	for _, n := range []int{2, 3, 5} {
		secrets, pubkeys := genKeys(t, n)
		masks := Masks(pubkeys)
		if !CheckMaskCancellation(secrets, masks) {
			t.Fatalf("n=%d: sum(x_i * Y_i) != identity", n)
		}
	}
}

func runTally(t *testing.T, votes []int) int {
	t.Helper()
	n := len(votes)
	secrets, pubkeys := genKeys(t, n)
	masks := Masks(pubkeys)

	ballots := make([]curve.Point, n)
	for i := 0; i < n; i++ {
		ballots[i] = MaskedBallot(masks[i], secrets[i], votes[i])
	}
	return RecoverFromBallots(ballots)
}

func TestTallyScenarios(t *testing.T) {
	cases := []struct {
		name  string
		votes []int
		want  int
	}{
		{"n3_mixed", []int{1, 1, 0}, 2},
		{"n3_allno", []int{0, 0, 0}, 0},
		{"n5_mixed", []int{1, 0, 1, 0, 1}, 3},
		{"n2_degenerate", []int{1, 0}, 1},
		{"n3_allyes", []int{1, 1, 1}, 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := runTally(t, c.votes)
			if got != c.want {
				t.Fatalf("tally = %d, want %d", got, c.want)
			}
		})
	}
}

func TestRecoverReturnsNoTallyWhenUnreachable(t *testing.T) {
	// A tally point that is not a small multiple of G within [0, N]
	// should fail to recover.
	off := curve.Generator().ScalarMul(big.NewInt(1_000_000))
	if got := Recover(off, 3); got != NoTally {
		t.Fatalf("Recover = %d, want NoTally", got)
	}
}

func TestMaskEndpointsDegenerate(t *testing.T) {
	_, pubkeys := genKeys(t, 3)
	masks := Masks(pubkeys)

	// Y_0 has an empty "before" sum (identity).
	wantY0 := pubkeys[1].Add(pubkeys[2]).Negate()
	if !masks[0].Equal(wantY0) {
		t.Fatal("Y_0 did not degenerate correctly at the left endpoint")
	}

	// Y_{n-1} has an empty "after" sum (identity).
	wantYLast := pubkeys[0].Add(pubkeys[1])
	if !masks[2].Equal(wantYLast) {
		t.Fatal("Y_{n-1} did not degenerate correctly at the right endpoint")
	}
}
