package ranksel

import (
	"sync/atomic"

	"github.com/calvinalkan/succinct/pkg/bitvec"
)

// CountBitVec wraps a bitvec.BitVec with a cached popcount maintained
// incrementally as bits are set or cleared, so CountOnes is O(1) instead
// of an O(words) rescan. It is the single-writer counterpart of
// AtomicCountBitVec.
type CountBitVec struct {
	bits    *bitvec.BitVec
	numOnes int
}

// NewCountBitVec wraps bv, computing its initial popcount once.
func NewCountBitVec(bv *bitvec.BitVec) *CountBitVec {
	return &CountBitVec{bits: bv, numOnes: bv.CountOnes()}
}

// Len returns the number of bits.
func (c *CountBitVec) Len() int { return c.bits.Len() }

// CountOnes returns the cached popcount.
func (c *CountBitVec) CountOnes() int { return c.numOnes }

// Word forwards to the underlying bit vector.
func (c *CountBitVec) Word(i int) uint64 { return c.bits.Word(i) }

// WordsLen forwards to the underlying bit vector.
func (c *CountBitVec) WordsLen() int { return c.bits.WordsLen() }

// SelectHintedUnchecked forwards to the underlying bit vector.
func (c *CountBitVec) SelectHintedUnchecked(rank, pos, rankAtPos int) int {
	return c.bits.SelectHintedUnchecked(rank, pos, rankAtPos)
}

// SelectZeroHintedUnchecked forwards to the underlying bit vector.
func (c *CountBitVec) SelectZeroHintedUnchecked(rank, pos, rankAtPos int) int {
	return c.bits.SelectZeroHintedUnchecked(rank, pos, rankAtPos)
}

// Get returns the bit at position i.
func (c *CountBitVec) Get(i int) bool { return c.bits.Get(i) }

// Set writes the bit at position i, updating the cached popcount by the
// signed delta between the old and new bit value.
func (c *CountBitVec) Set(i int, bit bool) {
	old := c.bits.Get(i)
	if old == bit {
		return
	}
	c.bits.Set(i, bit)
	if bit {
		c.numOnes++
	} else {
		c.numOnes--
	}
}

// BitVec returns the underlying bit vector.
func (c *CountBitVec) BitVec() *bitvec.BitVec { return c.bits }

// Select answers a select-one query by linear scan from the start of the
// bit vector, grounded on original_source/src/bitmap.rs's unindexed
// CountingBitmap::select_unchecked (select_unchecked_hinted(rank, 0, 0)).
// This is the baseline select available before a caller layers a
// SimpleSelectConst/QuantumIndex on top for O(1) queries (spec.md's
// "ConvertTo"-style enrichment pattern, pkg/eliasfano.WithIndex).
func (c *CountBitVec) Select(rank int) (int, bool) {
	if rank < 0 || rank >= c.numOnes {
		return 0, false
	}
	return c.bits.SelectHintedUnchecked(rank, 0, 0), true
}

// AtomicCountBitVec is the concurrent counterpart of CountBitVec: every
// SetAtomic call that changes a bit's value atomically adds its signed
// delta (+1 for 0->1, -1 for 1->0) to a running total, matching the CAS
// retry + signed-delta-fetch-add pattern of
// original_source/src/bitmap.rs's CountingBitmap::set_atomic_unchecked.
// Go's atomic.Int64 takes a plain signed delta directly, so unlike the
// original there is no need to reinterpret an isize as a usize to make
// the fetch_add bit-compatible (spec.md section 9's open question).
type AtomicCountBitVec struct {
	bits    *bitvec.AtomicBitVec
	numOnes atomic.Int64
}

// NewAtomicCountBitVec wraps bv, computing its initial popcount once.
// Callers must not mutate bv directly afterward; all writes should go
// through SetAtomic so the cached count stays consistent.
func NewAtomicCountBitVec(bv *bitvec.AtomicBitVec) *AtomicCountBitVec {
	c := &AtomicCountBitVec{bits: bv}
	c.numOnes.Store(int64(bv.CountOnes()))
	return c
}

// Len returns the number of bits.
func (c *AtomicCountBitVec) Len() int { return c.bits.Len() }

// CountOnes returns the cached popcount, loaded atomically. It may be
// momentarily stale relative to an in-flight SetAtomic from another
// goroutine, but is always the result of some consistent sequence of
// completed sets.
func (c *AtomicCountBitVec) CountOnes() int { return int(c.numOnes.Load()) }

// GetAtomic forwards to the underlying atomic bit vector.
func (c *AtomicCountBitVec) GetAtomic(i int, order bitvec.Ordering) bool {
	return c.bits.GetAtomic(i, order)
}

// SetAtomic sets the bit at position i, updating the cached popcount by
// the signed delta between the old and new value via a single atomic
// add, racing safely against concurrent SetAtomic calls on other bits.
func (c *AtomicCountBitVec) SetAtomic(i int, bit bool, order bitvec.Ordering) {
	for {
		old := c.bits.GetAtomic(i, order)
		if old == bit {
			return
		}
		if c.bits.CompareAndSwapAtomic(i, old, bit) {
			if bit {
				c.numOnes.Add(1)
			} else {
				c.numOnes.Add(-1)
			}
			return
		}
	}
}
