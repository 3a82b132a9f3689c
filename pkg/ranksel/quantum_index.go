package ranksel

import (
	"math/bits"

	"github.com/calvinalkan/succinct/internal/word"
)

// HintedSource is satisfied by anything QuantumIndex/QuantumZeroIndex can
// sit on top of: a bit vector, a Rank9, or another quantum index being
// chained for a coarser second level.
type HintedSource interface {
	Source
	SelectZeroHintedUnchecked(rank, pos, rankAtPos int) int
}

// quantumSample scans bits (or its complement, when zero is true) and
// records the position of every 2^quantumLog2-th set bit in that stream.
func quantumSample(src Source, zero bool, quantumLog2 int, out []int) {
	numberOf := 0
	nextQuantum := 0
	sampleIdx := 0
	numWords := src.WordsLen()
	quantum := 1 << quantumLog2

	for i := 0; i < numWords; i++ {
		w := src.Word(i)
		if zero {
			w = ^w
		}
		countInWord := bits.OnesCount64(w)
		for numberOf+countInWord > nextQuantum {
			if sampleIdx >= len(out) {
				return
			}
			inWordIndex := word.SelectInWord(w, nextQuantum-numberOf)
			index := i*word.Bits + inWordIndex
			if index >= src.Len() {
				return
			}
			out[sampleIdx] = index
			nextQuantum += quantum
			sampleIdx++
		}
		numberOf += countInWord
	}
}

// QuantumIndex is a coarse select-one index: it stores the position of
// every 2^quantumLog2-th set bit and hands that as a hint to the
// underlying structure's hinted select, which finishes with a bounded
// linear scan. It trades index size for query speed against
// SimpleSelectConst: a larger quantumLog2 means a smaller index and a
// longer final scan.
type QuantumIndex struct {
	bits        HintedSource
	ones        []int
	quantumLog2 int
}

// NewQuantumIndex builds a coarse select-one index over bits, sampling
// every 2^quantumLog2-th one.
func NewQuantumIndex(bits HintedSource, quantumLog2 int) *QuantumIndex {
	numOnes := bits.CountOnes()
	size := word.DivCeilU64(uint64(numOnes), uint64(1)<<uint(quantumLog2))
	q := &QuantumIndex{bits: bits, ones: make([]int, size), quantumLog2: quantumLog2}
	quantumSample(bits, false, quantumLog2, q.ones)
	return q
}

// Select returns the position of the rank-th set bit, or false if rank
// is out of range.
func (q *QuantumIndex) Select(rank int) (int, bool) {
	if rank < 0 || rank >= q.bits.CountOnes() {
		return 0, false
	}
	return q.SelectUnchecked(rank), true
}

// SelectUnchecked returns the position of the rank-th set bit without
// range checking.
func (q *QuantumIndex) SelectUnchecked(rank int) int {
	index := rank >> uint(q.quantumLog2)
	pos := q.ones[index]
	rankAtPos := index << uint(q.quantumLog2)
	return q.bits.SelectHintedUnchecked(rank, pos, rankAtPos)
}

// SelectHintedUnchecked picks whichever hint is closer to rank, the one
// passed in or its own coarse sample, before forwarding to the
// underlying structure. This lets a QuantumIndex itself be wrapped by
// another hinted layer without discarding a better hint already in hand.
func (q *QuantumIndex) SelectHintedUnchecked(rank, pos, rankAtPos int) int {
	index := rank >> uint(q.quantumLog2)
	thisPos := q.ones[index]
	thisRankAtPos := index << uint(q.quantumLog2)
	if rankAtPos > thisRankAtPos {
		return q.bits.SelectHintedUnchecked(rank, pos, rankAtPos)
	}
	return q.bits.SelectHintedUnchecked(rank, thisPos, thisRankAtPos)
}

// Len forwards to the underlying structure, so a QuantumIndex can itself
// be wrapped by another hinted layer (see SelectHintedUnchecked).
func (q *QuantumIndex) Len() int { return q.bits.Len() }

// CountOnes forwards to the underlying structure.
func (q *QuantumIndex) CountOnes() int { return q.bits.CountOnes() }

// Word forwards to the underlying structure.
func (q *QuantumIndex) Word(i int) uint64 { return q.bits.Word(i) }

// WordsLen forwards to the underlying structure.
func (q *QuantumIndex) WordsLen() int { return q.bits.WordsLen() }

// SelectZeroHintedUnchecked forwards to the underlying structure.
func (q *QuantumIndex) SelectZeroHintedUnchecked(rank, pos, rankAtPos int) int {
	return q.bits.SelectZeroHintedUnchecked(rank, pos, rankAtPos)
}

// QuantumZeroIndex is the select-zero counterpart of QuantumIndex: it
// samples the complement bitstream and hints the underlying structure's
// select-zero.
type QuantumZeroIndex struct {
	bits        HintedSource
	zeros       []int
	quantumLog2 int
}

// NewQuantumZeroIndex builds a coarse select-zero index over bits,
// sampling every 2^quantumLog2-th zero.
func NewQuantumZeroIndex(bits HintedSource, quantumLog2 int) *QuantumZeroIndex {
	numZeros := bits.Len() - bits.CountOnes()
	size := word.DivCeilU64(uint64(numZeros), uint64(1)<<uint(quantumLog2))
	q := &QuantumZeroIndex{bits: bits, zeros: make([]int, size), quantumLog2: quantumLog2}
	quantumSample(bits, true, quantumLog2, q.zeros)
	return q
}

// SelectZero returns the position of the rank-th (0-based) unset bit, or
// false if rank is out of range.
func (q *QuantumZeroIndex) SelectZero(rank int) (int, bool) {
	numZeros := q.bits.Len() - q.bits.CountOnes()
	if rank < 0 || rank >= numZeros {
		return 0, false
	}
	return q.SelectZeroUnchecked(rank), true
}

// SelectZeroUnchecked returns the position of the rank-th unset bit
// without range checking.
func (q *QuantumZeroIndex) SelectZeroUnchecked(rank int) int {
	index := rank >> uint(q.quantumLog2)
	pos := q.zeros[index]
	rankAtPos := index << uint(q.quantumLog2)
	return q.bits.SelectZeroHintedUnchecked(rank, pos, rankAtPos)
}

// SelectZeroHintedUnchecked picks whichever hint is closer to rank before
// forwarding to the underlying structure, mirroring
// QuantumIndex.SelectHintedUnchecked for the zero side.
func (q *QuantumZeroIndex) SelectZeroHintedUnchecked(rank, pos, rankAtPos int) int {
	index := rank >> uint(q.quantumLog2)
	thisPos := q.zeros[index]
	thisRankAtPos := index << uint(q.quantumLog2)
	if rankAtPos > thisRankAtPos {
		return q.bits.SelectZeroHintedUnchecked(rank, pos, rankAtPos)
	}
	return q.bits.SelectZeroHintedUnchecked(rank, thisPos, thisRankAtPos)
}

// Len forwards to the underlying structure.
func (q *QuantumZeroIndex) Len() int { return q.bits.Len() }

// CountOnes forwards to the underlying structure.
func (q *QuantumZeroIndex) CountOnes() int { return q.bits.CountOnes() }

// Word forwards to the underlying structure.
func (q *QuantumZeroIndex) Word(i int) uint64 { return q.bits.Word(i) }

// WordsLen forwards to the underlying structure.
func (q *QuantumZeroIndex) WordsLen() int { return q.bits.WordsLen() }

// SelectHintedUnchecked forwards to the underlying structure.
func (q *QuantumZeroIndex) SelectHintedUnchecked(rank, pos, rankAtPos int) int {
	return q.bits.SelectHintedUnchecked(rank, pos, rankAtPos)
}
