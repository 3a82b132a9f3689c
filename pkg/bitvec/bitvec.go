// Package bitvec provides the L0 bit-packed primitive: a fixed-length
// sequence of bits packed into 64-bit machine words, with unchecked
// indexed access, bulk fill, and an atomic variant.
//
// Three backing-store lifetimes share the same [BitVec] type: [New]
// allocates an owned buffer, [FromWords] borrows a caller-supplied slice
// (e.g. one backed by an mmap region from package persist) without
// copying. Both are interchangeable at every call site that only needs
// [BitVec]'s methods.
package bitvec

import (
	"fmt"
	"math/bits"

	"github.com/calvinalkan/succinct/internal/word"
)

// BitVec is a fixed-length sequence of bits packed into ceil(len/64)
// 64-bit words. Bits at positions [len, 64*ceil(len/64)) are always zero;
// every method that can observe a whole trailing word (Fill, CountOnes)
// preserves that invariant.
type BitVec struct {
	words  []uint64
	length int
}

// New allocates a zero-filled BitVec of the given bit length.
func New(length int) *BitVec {
	if length < 0 {
		panic("bitvec: negative length")
	}
	return &BitVec{
		words:  make([]uint64, word.DivCeil(length, word.Bits)),
		length: length,
	}
}

// FromWords wraps an existing word slice as a BitVec of the given bit
// length, without copying. The caller must ensure len(words) ==
// ceil(length/64) and that bits beyond length are already zero; this is
// the zero-copy path used to wrap a memory-mapped, read-only region.
func FromWords(words []uint64, length int) *BitVec {
	want := word.DivCeil(length, word.Bits)
	if len(words) != want {
		panic(fmt.Sprintf("bitvec: FromWords: got %d words, want %d for length %d", len(words), want, length))
	}
	return &BitVec{words: words, length: length}
}

// Len returns the number of bits.
func (b *BitVec) Len() int {
	return b.length
}

// Words returns the raw backing word slice. Callers (Rank9, SimpleSelect,
// ...) use this to scan whole words; it is shared, not copied.
func (b *BitVec) Words() []uint64 {
	return b.words
}

// Word returns the i-th 64-bit word, including any zero padding in the
// final word.
func (b *BitVec) Word(i int) uint64 {
	return b.words[i]
}

// WordsLen returns the number of backing words, ceil(Len()/64).
func (b *BitVec) WordsLen() int {
	return len(b.words)
}

// Get returns the bit at position i, or panics if i is out of bounds.
func (b *BitVec) Get(i int) bool {
	if i < 0 || i >= b.length {
		panic("bitvec: index out of range")
	}
	return b.GetUnchecked(i)
}

// GetUnchecked returns the bit at position i without bounds checking. The
// caller must guarantee 0 <= i < Len().
func (b *BitVec) GetUnchecked(i int) bool {
	return (b.words[i/word.Bits]>>(uint(i)%word.Bits))&1 != 0
}

// Set writes the bit at position i, or panics if i is out of bounds.
func (b *BitVec) Set(i int, bit bool) {
	if i < 0 || i >= b.length {
		panic("bitvec: index out of range")
	}
	b.SetUnchecked(i, bit)
}

// SetUnchecked writes the bit at position i without bounds checking. The
// caller must guarantee 0 <= i < Len().
func (b *BitVec) SetUnchecked(i int, bit bool) {
	wordIdx := i / word.Bits
	mask := uint64(1) << (uint(i) % word.Bits)
	if bit {
		b.words[wordIdx] |= mask
	} else {
		b.words[wordIdx] &^= mask
	}
}

// Fill sets every logical bit to bit, leaving trailing padding bits zero.
//
// Bulk fill policy (spec.md 4.1): compute the full-word fill value, write
// every full word directly, then mask the final partial word so bits
// beyond Len() stay zero regardless of bit.
func (b *BitVec) Fill(bit bool) {
	fullWords := b.length / word.Bits
	full := fillWord(bit)
	for i := 0; i < fullWords; i++ {
		b.words[i] = full
	}
	if rem := b.length % word.Bits; rem > 0 {
		mask := uint64(1)<<uint(rem) - 1
		b.words[fullWords] = full & mask
	}
}

func fillWord(bit bool) uint64 {
	if bit {
		return ^uint64(0)
	}
	return 0
}

// CountOnes returns the number of set bits. Trailing padding is always
// zero, so a plain per-word popcount sum is exact.
func (b *BitVec) CountOnes() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// SelectHintedUnchecked scans forward from bit position pos, which must
// satisfy rankAtPos == number of set bits in [0, pos), counting ones
// until the rank-th (0-based) set bit overall is found. It is the final
// linear-scan step used by select structures layered on top of a bit
// vector once a coarse hint has narrowed the search to a small span
// (spec.md section 4.3, "select hinted").
func (b *BitVec) SelectHintedUnchecked(rank, pos, rankAtPos int) int {
	wordIdx := pos / word.Bits
	bitIdx := uint(pos % word.Bits)
	w := (b.words[wordIdx] >> bitIdx) << bitIdx
	count := rankAtPos
	for {
		ones := bits.OnesCount64(w)
		if count+ones > rank {
			return wordIdx*word.Bits + word.SelectInWord(w, rank-count)
		}
		count += ones
		wordIdx++
		w = b.words[wordIdx]
	}
}

// SelectZeroHintedUnchecked is SelectHintedUnchecked's complement: it
// scans forward from pos counting unset bits until the rank-th (0-based)
// unset bit overall is found.
func (b *BitVec) SelectZeroHintedUnchecked(rank, pos, rankAtPos int) int {
	wordIdx := pos / word.Bits
	bitIdx := uint(pos % word.Bits)
	w := (^b.words[wordIdx] >> bitIdx) << bitIdx
	count := rankAtPos
	for {
		zeros := bits.OnesCount64(w)
		if count+zeros > rank {
			return wordIdx*word.Bits + word.SelectInWord(w, rank-count)
		}
		count += zeros
		wordIdx++
		w = ^b.words[wordIdx]
	}
}

// IterBits calls yield once per bit, in order, stopping early if yield
// returns false. It is the bulk iterator named in spec.md 4.1's contract.
func (b *BitVec) IterBits(yield func(i int, bit bool) bool) {
	for i := 0; i < b.length; i++ {
		if !yield(i, b.GetUnchecked(i)) {
			return
		}
	}
}
