package ranksel_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/succinct/pkg/bitvec"
	"github.com/calvinalkan/succinct/pkg/ranksel"
)

func bitsFromInts(values ...int) *bitvec.BitVec {
	bv := bitvec.New(len(values))
	for i, v := range values {
		bv.Set(i, v != 0)
	}
	return bv
}

// Test_Rank9_Scenario_S2 matches the spec example and rank9.rs's own doc
// example: bits 1,0,1,1,0,1,0,1.
func Test_Rank9_Scenario_S2(t *testing.T) {
	t.Parallel()

	bv := bitsFromInts(1, 0, 1, 1, 0, 1, 0, 1)
	r := ranksel.NewRank9(bv)

	want := []int{0, 1, 1, 2, 3, 3, 4, 4, 5}
	for pos, w := range want {
		assert.Equal(t, w, r.Rank(pos), "rank(%d)", pos)
	}
	assert.Equal(t, 5, r.NumOnes())
}

func Test_Rank9_Rank_At_Len_Returns_NumOnes(t *testing.T) {
	t.Parallel()

	bv := bitsFromInts(1, 0, 1, 1, 0, 1, 0, 1)
	r := ranksel.NewRank9(bv)

	assert.Equal(t, r.NumOnes(), r.Rank(bv.Len()))
	assert.Equal(t, r.NumOnes(), r.Rank(bv.Len()+100))
}

func Test_Rank9_RankZero_Complements_Rank(t *testing.T) {
	t.Parallel()

	bv := bitsFromInts(1, 0, 1, 1, 0, 1, 0, 1)
	r := ranksel.NewRank9(bv)

	for pos := 0; pos <= bv.Len(); pos++ {
		assert.Equal(t, pos, r.Rank(pos)+r.RankZero(pos), "pos=%d", pos)
	}
}

// Test_Rank9_Matches_Linear_Scan is a property test over randomly
// generated bit vectors spanning several block boundaries (each Rank9
// block covers 512 bits).
func Test_Rank9_Matches_Linear_Scan(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		length := rng.Intn(4000) + 1
		bv := bitvec.New(length)
		for i := 0; i < length; i++ {
			if rng.Intn(3) == 0 {
				bv.Set(i, true)
			}
		}

		r := ranksel.NewRank9(bv)
		want := 0
		for pos := 0; pos < length; pos++ {
			require.Equal(t, want, r.Rank(pos), "trial=%d pos=%d", trial, pos)
			if bv.Get(pos) {
				want++
			}
		}
		require.Equal(t, want, r.NumOnes(), "trial=%d", trial)
	}
}

func Test_Rank9_Last_Word_All_Ones_Matches_CountOnes(t *testing.T) {
	t.Parallel()

	bv := bitvec.New(10 * 64)
	bv.Fill(true)

	r := ranksel.NewRank9(bv)
	assert.Equal(t, bv.CountOnes(), r.Rank(r.Len()))
}
