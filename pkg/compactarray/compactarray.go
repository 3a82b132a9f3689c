// Package compactarray provides a fixed-width, bit-packed integer array:
// n entries of exactly width bits each, stored back to back across 64-bit
// words with no padding between entries (so a single entry may straddle
// two words).
package compactarray

import (
	"fmt"

	"github.com/calvinalkan/succinct/internal/word"
)

// MaxWidth is the largest supported entry width in bits.
const MaxWidth = 64

// CompactArray is a dense array of n fixed-width unsigned integers, each
// width bits wide, packed with no inter-entry padding.
type CompactArray struct {
	words []uint64
	width int
	len   int
}

// New allocates a zero-filled CompactArray holding n entries of width
// bits each. width must be in [0, 64]; width == 0 is the degenerate case
// where every entry reads as 0 and Set panics on any non-zero value.
func New(width, n int) *CompactArray {
	if width < 0 || width > MaxWidth {
		panic(fmt.Sprintf("compactarray: width %d out of range [0,%d]", width, MaxWidth))
	}
	if n < 0 {
		panic("compactarray: negative length")
	}
	totalBits := width * n
	return &CompactArray{
		words: make([]uint64, word.DivCeil(totalBits, word.Bits)),
		width: width,
		len:   n,
	}
}

// Width returns the fixed bit width of each entry.
func (c *CompactArray) Width() int {
	return c.width
}

// Len returns the number of entries.
func (c *CompactArray) Len() int {
	return c.len
}

// Words returns the raw backing word slice.
func (c *CompactArray) Words() []uint64 {
	return c.words
}

func (c *CompactArray) mask() uint64 {
	if c.width == 64 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(c.width) - 1
}

// Get returns the i-th entry, or panics if i is out of bounds.
func (c *CompactArray) Get(i int) uint64 {
	if i < 0 || i >= c.len {
		panic("compactarray: index out of range")
	}
	return c.GetUnchecked(i)
}

// GetUnchecked returns the i-th entry without bounds checking. The caller
// must guarantee 0 <= i < Len().
func (c *CompactArray) GetUnchecked(i int) uint64 {
	if c.width == 0 {
		return 0
	}
	bitPos := i * c.width
	wordIdx := bitPos / word.Bits
	bitIdx := uint(bitPos % word.Bits)

	result := c.words[wordIdx] >> bitIdx
	if bitIdx+uint(c.width) > word.Bits {
		result |= c.words[wordIdx+1] << (word.Bits - bitIdx)
	}
	return result & c.mask()
}

// Set writes the i-th entry, or panics if i is out of bounds or value
// does not fit in width bits.
func (c *CompactArray) Set(i int, value uint64) {
	if i < 0 || i >= c.len {
		panic("compactarray: index out of range")
	}
	if c.width < 64 && value > c.mask() {
		panic(fmt.Sprintf("compactarray: value %d does not fit in %d bits", value, c.width))
	}
	c.SetUnchecked(i, value)
}

// SetUnchecked writes the i-th entry without bounds or range checking.
// The caller must guarantee 0 <= i < Len() and value < 2^Width().
func (c *CompactArray) SetUnchecked(i int, value uint64) {
	if c.width == 0 {
		return
	}
	value &= c.mask()
	bitPos := i * c.width
	wordIdx := bitPos / word.Bits
	bitIdx := uint(bitPos % word.Bits)

	c.words[wordIdx] &^= c.mask() << bitIdx
	c.words[wordIdx] |= value << bitIdx

	if bitIdx+uint(c.width) > word.Bits {
		spill := word.Bits - bitIdx
		c.words[wordIdx+1] &^= c.mask() >> spill
		c.words[wordIdx+1] |= value >> spill
	}
}

// FromWords wraps an existing word slice as a CompactArray of n entries
// of width bits each, without copying. Used to build a zero-copy,
// mmap-backed read-only view.
func FromWords(words []uint64, width, n int) *CompactArray {
	want := word.DivCeil(width*n, word.Bits)
	if len(words) != want {
		panic(fmt.Sprintf("compactarray: FromWords: got %d words, want %d", len(words), want))
	}
	return &CompactArray{words: words, width: width, len: n}
}
