package ranksel

import (
	"math"
	"math/bits"

	"github.com/calvinalkan/succinct/internal/word"
	"github.com/calvinalkan/succinct/pkg/compactarray"
)

// maxInlineSpillWidth is the largest bit-position width SimpleSelectAdapt
// will store inline in its compact inventory before routing an entry to
// the spill map instead. 48 bits addresses sequences far longer than any
// practical in-memory bit vector, so the spill path is only taken for
// bit vectors longer than 2^48 bits.
const maxInlineSpillWidth = 48

// SimpleSelectAdapt is the density-adaptive counterpart of
// SimpleSelectConst: instead of a caller-chosen, compile-time-fixed
// inventory granularity, it derives its sampling rate from the bit
// vector's own density at construction time, and stores first-level
// sample positions in a width-minimal pkg/compactarray.CompactArray
// (grounded on sparse_zero_index.rs's `O: VSlice`-backed sample storage)
// rather than a fixed 64-bit-per-entry array. Entries whose bit position
// would need more than maxInlineSpillWidth bits escape into a small
// spill map instead of widening every entry in the array.
type SimpleSelectAdapt struct {
	bits        Source
	inventory   *compactarray.CompactArray
	spill       map[int]uint64
	quantumLog2 int
}

// NewSimpleSelectAdapt builds a density-adaptive select index over bits.
// The quantum (set bits per sample) is 2^(round(log2(Len/CountOnes))+6),
// about 64 times the average gap between set bits; sparser vectors get
// a coarser (larger) quantum, denser ones a finer one, bounded to
// [2^4, 2^16].
func NewSimpleSelectAdapt(src Source) *SimpleSelectAdapt {
	return NewSimpleSelectAdaptQuantum(src, chooseQuantumLog2(src.Len(), src.CountOnes()))
}

func chooseQuantumLog2(length, numOnes int) int {
	if numOnes == 0 {
		return 4
	}
	avgGap := float64(length) / float64(numOnes)
	l := int(math.Round(math.Log2(avgGap))) + 6
	if l < 4 {
		l = 4
	}
	if l > 16 {
		l = 16
	}
	return l
}

// NewSimpleSelectAdaptQuantum builds a density-adaptive select index with
// an explicit quantum, bypassing density-based auto-tuning.
func NewSimpleSelectAdaptQuantum(src Source, quantumLog2 int) *SimpleSelectAdapt {
	numOnes := src.CountOnes()
	quantum := 1 << uint(quantumLog2)
	size := word.DivCeilU64(uint64(numOnes), uint64(quantum))

	inlineWidth := bitsNeeded(src.Len())
	spill := make(map[int]uint64)
	if inlineWidth > maxInlineSpillWidth {
		inlineWidth = maxInlineSpillWidth
	}

	inventory := compactarray.New(inlineWidth, int(size))

	numberOfOnes := 0
	nextQuantum := 0
	sampleIdx := 0
	numWords := src.WordsLen()

	for i := 0; i < numWords; i++ {
		w := src.Word(i)
		onesInWord := bits.OnesCount64(w)
		for numberOfOnes+onesInWord > nextQuantum {
			if sampleIdx >= int(size) {
				break
			}
			inWordIndex := word.SelectInWord(w, nextQuantum-numberOfOnes)
			index := i*word.Bits + inWordIndex
			storeSample(inventory, spill, sampleIdx, uint64(index))
			nextQuantum += quantum
			sampleIdx++
		}
		numberOfOnes += onesInWord
	}

	return &SimpleSelectAdapt{bits: src, inventory: inventory, spill: spill, quantumLog2: quantumLog2}
}

func bitsNeeded(n int) int {
	if n <= 1 {
		return 1
	}
	return bits.Len(uint(n - 1))
}

func storeSample(inv *compactarray.CompactArray, spill map[int]uint64, idx int, value uint64) {
	if inv.Width() < 64 && value >= (uint64(1)<<uint(inv.Width())) {
		spill[idx] = value
		return
	}
	inv.Set(idx, value)
}

func loadSample(inv *compactarray.CompactArray, spill map[int]uint64, idx int) int {
	if v, ok := spill[idx]; ok {
		return int(v)
	}
	return int(inv.Get(idx))
}

// Select returns the position of the rank-th set bit, or false if rank is
// out of range.
func (s *SimpleSelectAdapt) Select(rank int) (int, bool) {
	if rank < 0 || rank >= s.bits.CountOnes() {
		return 0, false
	}
	return s.SelectUnchecked(rank), true
}

// SelectUnchecked returns the position of the rank-th set bit without
// range checking.
func (s *SimpleSelectAdapt) SelectUnchecked(rank int) int {
	index := rank >> uint(s.quantumLog2)
	pos := loadSample(s.inventory, s.spill, index)
	rankAtPos := index << uint(s.quantumLog2)
	return s.bits.SelectHintedUnchecked(rank, pos, rankAtPos)
}
