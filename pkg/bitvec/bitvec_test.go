package bitvec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/succinct/pkg/bitvec"
)

func Test_BitVec_New_Is_Zero_Filled(t *testing.T) {
	t.Parallel()

	b := bitvec.New(130)
	require.Equal(t, 130, b.Len())
	for i := 0; i < b.Len(); i++ {
		assert.False(t, b.Get(i), "bit %d", i)
	}
	assert.Equal(t, 0, b.CountOnes())
}

func Test_BitVec_Set_Get_Roundtrip(t *testing.T) {
	t.Parallel()

	b := bitvec.New(200)
	set := []int{0, 1, 63, 64, 65, 127, 128, 199}
	for _, i := range set {
		b.Set(i, true)
	}
	for i := 0; i < b.Len(); i++ {
		want := false
		for _, s := range set {
			if s == i {
				want = true
				break
			}
		}
		assert.Equal(t, want, b.Get(i), "bit %d", i)
	}
	assert.Equal(t, len(set), b.CountOnes())
}

func Test_BitVec_Set_False_Clears_Bit(t *testing.T) {
	t.Parallel()

	b := bitvec.New(64)
	b.Set(10, true)
	require.True(t, b.Get(10))

	b.Set(10, false)
	assert.False(t, b.Get(10))
	assert.Equal(t, 0, b.CountOnes())
}

func Test_BitVec_Get_Set_Panic_Out_Of_Range(t *testing.T) {
	t.Parallel()

	b := bitvec.New(10)
	assert.Panics(t, func() { b.Get(10) })
	assert.Panics(t, func() { b.Get(-1) })
	assert.Panics(t, func() { b.Set(10, true) })
}

// Fill must leave bits past Len() zero even when the bit length is not a
// multiple of 64 and bit is true (spec.md property: padding bits are
// always zero).
func Test_BitVec_Fill_True_Leaves_Trailing_Padding_Zero(t *testing.T) {
	t.Parallel()

	for _, length := range []int{1, 5, 63, 64, 65, 127, 128, 129, 200} {
		b := bitvec.New(length)
		b.Fill(true)

		assert.Equal(t, length, b.CountOnes(), "length=%d", length)
		for i := 0; i < length; i++ {
			require.True(t, b.Get(i), "length=%d bit=%d", length, i)
		}

		lastWord := b.Word(b.WordsLen() - 1)
		rem := length % 64
		if rem != 0 {
			paddingMask := ^(uint64(1)<<uint(rem) - 1)
			assert.Zero(t, lastWord&paddingMask, "length=%d: padding bits must stay zero", length)
		}
	}
}

func Test_BitVec_Fill_False_Clears_All(t *testing.T) {
	t.Parallel()

	b := bitvec.New(70)
	b.Fill(true)
	require.Equal(t, 70, b.CountOnes())

	b.Fill(false)
	assert.Equal(t, 0, b.CountOnes())
}

func Test_BitVec_FromWords_Borrows_Without_Copy(t *testing.T) {
	t.Parallel()

	words := []uint64{0b101, 0}
	b := bitvec.FromWords(words, 70)

	require.True(t, b.Get(0))
	assert.False(t, b.Get(1))
	assert.True(t, b.Get(2))

	words[0] = 0
	assert.False(t, b.Get(0), "FromWords must share the backing slice, not copy it")
}

func Test_BitVec_FromWords_Panics_On_Wrong_Word_Count(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { bitvec.FromWords([]uint64{0}, 65) })
}

func Test_BitVec_IterBits_Visits_In_Order_And_Honors_Stop(t *testing.T) {
	t.Parallel()

	b := bitvec.New(8)
	b.Set(1, true)
	b.Set(3, true)
	b.Set(5, true)

	var visited []int
	b.IterBits(func(i int, bit bool) bool {
		if bit {
			visited = append(visited, i)
		}
		return i < 3
	})

	assert.Equal(t, []int{1, 3}, visited)
}

func Test_AtomicBitVec_SetAtomic_GetAtomic_Roundtrip(t *testing.T) {
	t.Parallel()

	b := bitvec.NewAtomic(128)
	b.SetAtomic(5, true, bitvec.OrderSeqCst)
	b.SetAtomic(70, true, bitvec.OrderSeqCst)

	assert.True(t, b.GetAtomic(5, bitvec.OrderSeqCst))
	assert.True(t, b.GetAtomic(70, bitvec.OrderSeqCst))
	assert.False(t, b.GetAtomic(6, bitvec.OrderSeqCst))
	assert.Equal(t, 2, b.CountOnes())
}

func Test_AtomicBitVec_SetAtomic_Concurrent_Different_Bits_Same_Word(t *testing.T) {
	t.Parallel()

	b := bitvec.NewAtomic(64)
	done := make(chan struct{})
	for i := 0; i < 64; i++ {
		i := i
		go func() {
			b.SetAtomic(i, true, bitvec.OrderSeqCst)
			done <- struct{}{}
		}()
	}
	for i := 0; i < 64; i++ {
		<-done
	}
	assert.Equal(t, 64, b.CountOnes())
}

func Test_AtomicBitVec_CompareAndSwapAtomic(t *testing.T) {
	t.Parallel()

	b := bitvec.NewAtomic(64)

	assert.True(t, b.CompareAndSwapAtomic(3, false, true))
	assert.True(t, b.GetAtomic(3, bitvec.OrderSeqCst))

	assert.False(t, b.CompareAndSwapAtomic(3, false, true), "expected old bit no longer matches")
	assert.True(t, b.CompareAndSwapAtomic(3, true, false))
	assert.False(t, b.GetAtomic(3, bitvec.OrderSeqCst))
}

func Test_AtomicBitVec_Snapshot_Matches_BitVec_Semantics(t *testing.T) {
	t.Parallel()

	b := bitvec.NewAtomic(100)
	b.SetAtomic(0, true, bitvec.OrderSeqCst)
	b.SetAtomic(99, true, bitvec.OrderSeqCst)

	snap := b.Snapshot()
	assert.Equal(t, 100, snap.Len())
	assert.True(t, snap.Get(0))
	assert.True(t, snap.Get(99))
	assert.Equal(t, 2, snap.CountOnes())
}

type sequentialPool struct{ calls int }

func (p *sequentialPool) Go(n int, fn func(int)) {
	p.calls++
	for i := 0; i < n; i++ {
		fn(i)
	}
}

func Test_BitVec_FillParallel_Matches_Sequential_Fill(t *testing.T) {
	t.Parallel()

	for _, length := range []int{0, 10, 64, 640, 1000} {
		seq := bitvec.New(length)
		seq.Fill(true)

		par := bitvec.New(length)
		pool := &sequentialPool{}
		par.FillParallel(true, pool, 2)

		assert.Equal(t, seq.Words(), par.Words(), "length=%d", length)
	}
}

func Test_BitVec_FillParallel_Nil_Pool_Falls_Back_To_Sequential(t *testing.T) {
	t.Parallel()

	b := bitvec.New(500)
	b.FillParallel(true, nil, 4)
	assert.Equal(t, 500, b.CountOnes())
}
