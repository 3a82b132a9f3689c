package word_test

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/succinct/internal/word"
)

func Test_DivCeil(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, word.DivCeil(5, 2))
	assert.Equal(t, 4, word.DivCeil(10, 3))
	assert.Equal(t, 0, word.DivCeil(0, 7))
	assert.Equal(t, 1, word.DivCeil(1, 7))
}

func Test_NextPow2(t *testing.T) {
	t.Parallel()

	cases := map[uint64]uint64{
		0: 1, 1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 1023: 1024, 1024: 1024,
	}
	for in, want := range cases {
		assert.Equal(t, want, word.NextPow2(in), "NextPow2(%d)", in)
	}
}

func Test_SelectInWord_MatchesLinearScan(t *testing.T) {
	t.Parallel()

	words := []uint64{
		0b1010_1101, // spec S2/S3 example bits, little-endian bit 0 first
		0,
		^uint64(0),
		0x8000_0000_0000_0001,
		0x0000_0000_FFFF_0000,
	}

	for _, w := range words {
		n := bits.OnesCount64(w)
		for rank := 0; rank < n; rank++ {
			want := linearSelectInWord(w, rank)
			got := word.SelectInWord(w, rank)
			require.Equal(t, want, got, "word=%064b rank=%d", w, rank)
		}
	}
}

func linearSelectInWord(w uint64, rank int) int {
	for i := 0; i < 64; i++ {
		if w&(1<<uint(i)) != 0 {
			if rank == 0 {
				return i
			}
			rank--
		}
	}
	return -1
}
