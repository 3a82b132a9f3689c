package bitvec

import "github.com/calvinalkan/succinct/internal/word"

// WorkPool is the data-parallel collaborator contract named in spec.md
// section 1 ("a data-parallel work-stealing pool ... its implementation
// is not in scope for this component"). Callers supply their own pool
// (a goroutine worker pool, an errgroup-backed pool, ...); FillParallel
// falls back to a sequential fill whenever pool is nil or the work is too
// small to amortize the dispatch cost.
type WorkPool interface {
	// Go partitions [0, n) into implementation-chosen chunks and calls fn
	// once per chunk with that chunk's index, returning only once every
	// call has completed.
	Go(n int, fn func(chunkIdx int))
}

// FillParallel is the parallel variant of Fill (spec.md section 4.1). It
// divides the full-word range into chunks of at least minChunkWords words
// each and fills them via pool, then fills the trailing partial word
// sequentially to preserve the zero-padding invariant. With pool == nil,
// or when there are fewer than two chunks worth of full words, it falls
// back to the sequential Fill.
func (b *BitVec) FillParallel(bit bool, pool WorkPool, minChunkWords int) {
	fullWords := b.length / word.Bits
	if pool == nil || minChunkWords <= 0 || fullWords < 2*minChunkWords {
		b.Fill(bit)
		return
	}

	full := fillWord(bit)
	chunks := fullWords / minChunkWords
	chunkSize := fullWords / chunks

	pool.Go(chunks, func(c int) {
		start := c * chunkSize
		end := start + chunkSize
		if c == chunks-1 {
			end = fullWords
		}
		for i := start; i < end; i++ {
			b.words[i] = full
		}
	})

	if rem := b.length % word.Bits; rem > 0 {
		mask := uint64(1)<<uint(rem) - 1
		b.words[fullWords] = full & mask
	}
}
