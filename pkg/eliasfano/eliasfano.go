// Package eliasfano implements the Elias-Fano representation of a
// monotone (non-decreasing) sequence of n values bounded by u: each
// value is split into u-dependent high and low bits, the low bits packed
// into a CompactArray and the high bits unary-coded into a BitVec that a
// select structure later turns into O(1) access.
package eliasfano

import (
	"errors"
	"fmt"
	"math"

	"github.com/calvinalkan/succinct/pkg/bitvec"
	"github.com/calvinalkan/succinct/pkg/compactarray"
	"github.com/calvinalkan/succinct/pkg/ranksel"
)

// ErrTooManyValues is returned by Push once n values have already been
// pushed.
var ErrTooManyValues = errors.New("eliasfano: too many values")

// ErrNotMonotone is returned by Push when value is smaller than the
// previously pushed value.
var ErrNotMonotone = errors.New("eliasfano: values must be non-decreasing")

// ErrValueTooLarge is returned by Push when value is not smaller than u.
var ErrValueTooLarge = errors.New("eliasfano: value too large")

// ErrIndexOutOfRange is returned by Get when index is outside [0, n).
var ErrIndexOutOfRange = errors.New("eliasfano: index out of range")

// lowBitsWidth computes l, the number of low bits retained per value, as
// floor(log2(u/n)) when u >= n, or 0 when the universe is no larger than
// the sequence (every value then lives entirely in the high bits).
func lowBitsWidth(u, n int) int {
	if n == 0 || u < n {
		return 0
	}
	return int(math.Floor(math.Log2(float64(u) / float64(n))))
}

// EstimateBits returns the expected encoded size in bits of an
// EliasFano holding n values smaller than u, without building it:
// 2n + n*ceil(log2(u/n)). Useful for choosing between EliasFano and a
// plain CompactArray before committing to either.
func EstimateBits(u, n int) int {
	if n == 0 {
		return 0
	}
	return 2*n + n*int(math.Ceil(math.Log2(float64(u)/float64(n))))
}

// Builder constructs an EliasFano sequentially via Push, in non-decreasing
// value order.
type Builder struct {
	u, n, l   int
	lowBits   *compactarray.CompactArray
	highBits  *bitvec.BitVec
	lastValue int
	count     int
}

// NewBuilder creates a builder for a sequence of n values, each smaller
// than u.
func NewBuilder(n, u int) *Builder {
	l := lowBitsWidth(u, n)
	return &Builder{
		u:        u,
		n:        n,
		l:        l,
		lowBits:  compactarray.New(l, n),
		highBits: bitvec.New(n + (u >> uint(l)) + 1),
	}
}

// Push appends value, which must be >= the previous value pushed and
// < u. It returns an error rather than building a corrupt structure if
// either constraint, or the n-value budget, is violated.
func (b *Builder) Push(value int) error {
	if b.count == b.n {
		return ErrTooManyValues
	}
	if value >= b.u {
		return fmt.Errorf("%w: %d >= %d", ErrValueTooLarge, value, b.u)
	}
	if value < b.lastValue {
		return fmt.Errorf("%w: %d < %d", ErrNotMonotone, value, b.lastValue)
	}
	b.PushUnchecked(value)
	return nil
}

// PushUnchecked appends value without validating monotonicity, the
// upper bound, or the n-value budget. The caller must uphold all three;
// violating them corrupts the structure without necessarily panicking.
func (b *Builder) PushUnchecked(value int) {
	low := value & (1<<uint(b.l) - 1)
	b.lowBits.Set(b.count, uint64(low))

	high := (value >> uint(b.l)) + b.count
	b.highBits.Set(high, true)

	b.count++
	b.lastValue = value
}

// Default is the EliasFano flavor returned by Build: an unindexed
// CountBitVec over the high bits (select by linear scan) and a plain
// CompactArray for the low bits, matching sux-rs's DefaultEliasFano.
type Default = EliasFano[*ranksel.CountBitVec, *compactarray.CompactArray]

// Build finalizes the builder into a Default EliasFano.
func (b *Builder) Build() *Default {
	return &EliasFano[*ranksel.CountBitVec, *compactarray.CompactArray]{
		u:        b.u,
		n:        b.n,
		l:        b.l,
		lowBits:  b.lowBits,
		highBits: ranksel.NewCountBitVec(b.highBits),
	}
}

// AtomicBuilder constructs an EliasFano by setting values concurrently at
// caller-chosen indices. Unlike Builder, it performs no validation:
// indices must be distinct, values must be monotone across the final
// index order, and Set must be called exactly n times before Build.
type AtomicBuilder struct {
	u, n, l  int
	lowBits  *compactarray.AtomicCompactArray
	highBits *bitvec.AtomicBitVec
}

// NewAtomicBuilder creates an atomic builder for a sequence of n values,
// each smaller than u.
func NewAtomicBuilder(n, u int) *AtomicBuilder {
	l := lowBitsWidth(u, n)
	return &AtomicBuilder{
		u:        u,
		n:        n,
		l:        l,
		lowBits:  compactarray.NewAtomic(l, n),
		highBits: bitvec.NewAtomic(n + (u >> uint(l)) + 1),
	}
}

// Set writes value at index. The caller is responsible for every
// precondition documented on AtomicBuilder.
func (b *AtomicBuilder) Set(index, value int) {
	low := value & (1<<uint(b.l) - 1)
	b.lowBits.SetAtomic(index, uint64(low))

	high := (value >> uint(b.l)) + index
	b.highBits.SetAtomic(high, true, bitvec.OrderSeqCst)
}

// Build finalizes the atomic builder into a Default EliasFano, snapshotting
// the atomic backing stores into plain ones.
func (b *AtomicBuilder) Build() *Default {
	return &EliasFano[*ranksel.CountBitVec, *compactarray.CompactArray]{
		u:        b.u,
		n:        b.n,
		l:        b.l,
		lowBits:  b.lowBits.Snapshot(),
		highBits: ranksel.NewCountBitVec(b.highBits.Snapshot()),
	}
}

// Selector is satisfied by anything that can answer a select-one query
// over the high-bits unary code: the unindexed CountBitVec (O(numOnes)
// scan) or an index layered on top of it (QuantumIndex, SimpleSelectConst,
// SimpleSelectAdapt) for O(1)-ish queries.
type Selector interface {
	Select(rank int) (int, bool)
}

// LowBits is satisfied by anything that can read back a fixed-width low
// bits entry: a plain CompactArray, or a borrowed/mmap-backed one.
type LowBits interface {
	Get(i int) uint64
}

// EliasFano is a succinct representation of a non-decreasing sequence of
// n values bounded above by u, generic over its high-bits selector H and
// low-bits reader L so a caller can build with an unindexed CountBitVec
// and later rewrap with a faster index without re-encoding the low bits
// (see WithIndex) — the "ConvertTo"-style enrichment pattern from
// elias_fano.rs's doc comment.
type EliasFano[H Selector, L LowBits] struct {
	u, n, l  int
	lowBits  L
	highBits H
}

// Len returns the number of values in the sequence.
func (ef *EliasFano[H, L]) Len() int { return ef.n }

// Get returns the index-th value, or an error if index is out of range.
func (ef *EliasFano[H, L]) Get(index int) (uint64, error) {
	if index < 0 || index >= ef.n {
		return 0, ErrIndexOutOfRange
	}
	return ef.GetUnchecked(index), nil
}

// GetUnchecked returns the index-th value without bounds checking. The
// caller must guarantee 0 <= index < Len().
func (ef *EliasFano[H, L]) GetUnchecked(index int) uint64 {
	highPos, _ := ef.highBits.Select(index)
	highBits := highPos - index
	lowBits := ef.lowBits.Get(index)
	return uint64(highBits)<<uint(ef.l) | lowBits
}

// WithIndex rewraps a Default EliasFano's high bits with a QuantumIndex,
// accelerating Get from an O(numOnes) linear scan to an O(1)-amortized
// indexed select, without touching the low bits or re-encoding anything.
func WithIndex(ef *Default) *EliasFano[*ranksel.QuantumIndex, *compactarray.CompactArray] {
	return &EliasFano[*ranksel.QuantumIndex, *compactarray.CompactArray]{
		u:        ef.u,
		n:        ef.n,
		l:        ef.l,
		lowBits:  ef.lowBits,
		highBits: ranksel.NewQuantumIndex(ef.highBits, 6),
	}
}

// Iter calls yield once per value in order, stopping early if yield
// returns false. It decodes sequentially via repeated Get rather than
// tracking select state across calls; callers needing the fastest
// possible full scan should walk the high-bits BitVec and low-bits
// CompactArray directly instead.
func (ef *EliasFano[H, L]) Iter(yield func(index int, value uint64) bool) {
	for i := 0; i < ef.n; i++ {
		if !yield(i, ef.GetUnchecked(i)) {
			return
		}
	}
}

// WithSimpleSelect rewraps a Default EliasFano's high bits with a
// SimpleSelectConst tuned for the high-bits' characteristic density of
// roughly one set bit per two positions (n ones among n+u/2^l+1 bits).
func WithSimpleSelect(ef *Default) *EliasFano[*ranksel.SimpleSelectConst, *compactarray.CompactArray] {
	return &EliasFano[*ranksel.SimpleSelectConst, *compactarray.CompactArray]{
		u:        ef.u,
		n:        ef.n,
		l:        ef.l,
		lowBits:  ef.lowBits,
		highBits: ranksel.NewSimpleSelectConst(ef.highBits),
	}
}
