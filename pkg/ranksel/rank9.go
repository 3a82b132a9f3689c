// Package ranksel implements rank and select structures layered over
// pkg/bitvec: Rank9 (rank queries), SimpleSelectConst/SimpleSelectAdapt
// (select queries), and the QuantumIndex/QuantumZeroIndex coarse-sampling
// select indices.
package ranksel

import (
	"math/bits"

	"github.com/calvinalkan/succinct/internal/word"
	"github.com/calvinalkan/succinct/pkg/bitvec"
)

// wordsPerBlock is the number of 64-bit words covered by one Rank9 block
// (512 bits): one 64-bit absolute counter plus seven packed 9-bit
// relative counters, the first relative counter being implicit zero.
const wordsPerBlock = 8

// blockCounters packs one Rank9 block's absolute and relative counters.
// relative holds seven 9-bit fields (for word offsets 1..7 within the
// block; offset 0 is always zero and stored implicitly), addressed with
// the field for offset j stored at bit position 9*(j^7) the same way
// original_source/src/rank_sel/rank9.rs interleaves them, so the eight
// counters needed to rank within a block fit in two 64-bit words total.
type blockCounters struct {
	absolute uint64
	relative uint64
}

func (c *blockCounters) rel(wordOffset int) uint64 {
	return (c.relative >> uint(9*(wordOffset^7))) & 0x1FF
}

func (c *blockCounters) setRel(wordOffset int, v uint64) {
	c.relative |= v << uint(9*(wordOffset^7))
}

// Rank9 answers rank queries (number of set bits before a position) in
// O(1) using 64-bit absolute per-block counters and packed 9-bit relative
// per-word counters, at 25% space overhead over the underlying bit vector
// (one blockCounters value, 16 bytes, per 512 bits).
type Rank9 struct {
	bits   *bitvec.BitVec
	counts []blockCounters
}

// NewRank9 builds a Rank9 index over bits. bits must not be mutated after
// this call; Rank9 caches per-block counts computed from its contents at
// build time.
func NewRank9(bv *bitvec.BitVec) *Rank9 {
	numWords := bv.WordsLen()
	numBlocks := word.DivCeil(numWords, wordsPerBlock)

	counts := make([]blockCounters, 0, numBlocks+1)
	var numOnes uint64

	for i := 0; i < numWords; i += wordsPerBlock {
		block := blockCounters{absolute: numOnes}
		numOnes += uint64(bits.OnesCount64(bv.Word(i)))

		for j := 1; j < wordsPerBlock; j++ {
			relCount := numOnes - block.absolute
			block.setRel(j, relCount)
			if i+j < numWords {
				numOnes += uint64(bits.OnesCount64(bv.Word(i + j)))
			}
		}
		counts = append(counts, block)
	}
	counts = append(counts, blockCounters{absolute: numOnes})

	return &Rank9{bits: bv, counts: counts}
}

// Len returns the number of bits in the underlying bit vector.
func (r *Rank9) Len() int {
	return r.bits.Len()
}

// NumOnes returns the total number of set bits.
func (r *Rank9) NumOnes() int {
	return int(r.counts[len(r.counts)-1].absolute)
}

// BitVec returns the underlying bit vector.
func (r *Rank9) BitVec() *bitvec.BitVec {
	return r.bits
}

// Rank returns the number of set bits in [0, pos). pos may equal Len(),
// in which case it returns NumOnes(); pos beyond Len() also saturates to
// NumOnes(), matching the underlying structure's total.
func (r *Rank9) Rank(pos int) int {
	if pos >= r.bits.Len() {
		return r.NumOnes()
	}
	return r.RankUnchecked(pos)
}

// RankUnchecked returns the number of set bits in [0, pos) without
// bounds checking. The caller must guarantee 0 <= pos < Len().
func (r *Rank9) RankUnchecked(pos int) int {
	wordPos := pos / word.Bits
	block := wordPos / wordsPerBlock
	offset := wordPos % wordsPerBlock
	w := r.bits.Word(wordPos)
	c := &r.counts[block]

	low := w & (uint64(1)<<uint(pos%word.Bits) - 1)
	return int(c.absolute) + int(c.rel(offset)) + bits.OnesCount64(low)
}

// RankZero returns the number of unset bits in [0, pos): pos - Rank(pos).
func (r *Rank9) RankZero(pos int) int {
	if pos > r.bits.Len() {
		pos = r.bits.Len()
	}
	return pos - r.Rank(pos)
}

// CountOnes satisfies the Source interface for select structures layered
// on top of a Rank9 (e.g. SimpleSelectConst over a Rank9, rather than
// directly over a BitVec) by forwarding to NumOnes.
func (r *Rank9) CountOnes() int {
	return r.NumOnes()
}

// Word forwards to the underlying bit vector's i-th word.
func (r *Rank9) Word(i int) uint64 {
	return r.bits.Word(i)
}

// WordsLen forwards to the underlying bit vector's word count.
func (r *Rank9) WordsLen() int {
	return r.bits.WordsLen()
}

// SelectHintedUnchecked forwards to the underlying bit vector, so a
// select structure can be layered directly over a Rank9 (section 4 of
// spec.md's rank/select composition note) without re-reading bits.
func (r *Rank9) SelectHintedUnchecked(rank, pos, rankAtPos int) int {
	return r.bits.SelectHintedUnchecked(rank, pos, rankAtPos)
}

// SelectZeroHintedUnchecked forwards to the underlying bit vector.
func (r *Rank9) SelectZeroHintedUnchecked(rank, pos, rankAtPos int) int {
	return r.bits.SelectZeroHintedUnchecked(rank, pos, rankAtPos)
}
