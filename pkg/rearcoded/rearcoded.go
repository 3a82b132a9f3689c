// Package rearcoded implements RearCodedList, a block front-coded
// dictionary of sorted strings: every k-th string is stored in full,
// the rest store only the VByte-encoded length of the discarded
// shared prefix plus the differing suffix, trading decode locality
// (within a block) for a large reduction in redundant prefix storage.
package rearcoded

import "bytes"

// Stats accumulates size and compression diagnostics while a Builder
// encodes strings, mirroring the bookkeeping rear_coded_list.rs keeps
// for its print_stats report.
type Stats struct {
	MaxBlockBytes int
	SumBlockBytes int

	MaxLCP int
	SumLCP int

	MaxStrLen int
	SumStrLen int

	CodeBytes     int
	SuffixesBytes int

	// Redundancy estimates the bytes spent storing block heads in full:
	// summed over block heads only, each head's shared-prefix length
	// with the previous string minus the VByte bytes its rear length
	// would take. A negative value means front-coding the heads would
	// not have saved anything (e.g. the very first string contributes
	// -1).
	Redundancy int
}

// Builder accumulates strings and produces a RearCodedList. Strings
// must be pushed in non-decreasing lexicographic order for Contains to
// work correctly; Get/GetInplace have no such requirement.
type Builder struct {
	data     []byte
	pointers []int
	k        int
	count    int
	lastStr  []byte
	stats    Stats
}

// NewBuilder creates an empty builder with block size k: every k-th
// string (by insertion order) is stored without compression.
func NewBuilder(k int) *Builder {
	return &Builder{
		data:    make([]byte, 0, 1<<16),
		lastStr: make([]byte, 0, 256),
		k:       k,
	}
}

// Push appends string s to the end of the list.
func (b *Builder) Push(s string) {
	str := []byte(s)
	b.stats.MaxStrLen = max(b.stats.MaxStrLen, len(str))
	b.stats.SumStrLen += len(str)

	var toEncode []byte
	if b.count%b.k == 0 {
		lastPtr := 0
		if len(b.pointers) > 0 {
			lastPtr = b.pointers[len(b.pointers)-1]
		}
		blockBytes := len(b.data) - lastPtr
		b.stats.MaxBlockBytes = max(b.stats.MaxBlockBytes, blockBytes)
		b.stats.SumBlockBytes += blockBytes
		b.pointers = append(b.pointers, len(b.data))

		lcp := longestCommonPrefix(b.lastStr, str)
		rearLength := len(b.lastStr) - lcp
		b.stats.Redundancy += lcp
		b.stats.Redundancy -= encodeIntLen(uint64(rearLength))

		toEncode = str
	} else {
		lcp := longestCommonPrefix(b.lastStr, str)
		b.stats.MaxLCP = max(b.stats.MaxLCP, lcp)
		b.stats.SumLCP += lcp

		rearLength := len(b.lastStr) - lcp
		prevLen := len(b.data)
		b.data = encodeInt(uint64(rearLength), b.data)
		b.stats.CodeBytes += len(b.data) - prevLen

		toEncode = str[lcp:]
	}

	b.data = append(b.data, toEncode...)
	b.data = append(b.data, 0)
	b.stats.SuffixesBytes += len(toEncode) + 1

	b.lastStr = append(b.lastStr[:0], str...)
	b.count++
}

// Extend pushes every string in ss, in order.
func (b *Builder) Extend(ss []string) {
	for _, s := range ss {
		b.Push(s)
	}
}

// Build finalizes the builder into a read-only RearCodedList.
func (b *Builder) Build() *RearCodedList {
	return &RearCodedList{
		data:     b.data,
		pointers: b.pointers,
		k:        b.k,
		len:      b.count,
		stats:    b.stats,
	}
}

// RearCodedList is a read-only, block front-coded dictionary of sorted
// strings.
type RearCodedList struct {
	data     []byte
	pointers []int
	k        int
	len      int
	stats    Stats
}

// Len returns the number of strings in the list.
func (r *RearCodedList) Len() int { return r.len }

// Stats returns the diagnostics accumulated while building the list.
func (r *RearCodedList) Stats() Stats { return r.stats }

// strcpy appends bytes from data to result up to (and consuming) the
// first NUL, returning the extended result and the remaining data.
func strcpy(data []byte, result []byte) ([]byte, []byte) {
	i := 0
	for data[i] != 0 {
		i++
	}
	result = append(result, data[:i]...)
	return result, data[i+1:]
}

// GetInplace decodes the index-th string into result (whose existing
// contents are discarded), reusing its backing array across repeated
// calls to avoid allocating.
func (r *RearCodedList) GetInplace(index int, result []byte) []byte {
	block := index / r.k
	offset := index % r.k

	data := r.data[r.pointers[block]:]
	result, data = strcpy(data, result[:0])

	for i := 0; i < offset; i++ {
		length, tmp := decodeInt(data)
		result = result[:len(result)-int(length)]
		result, data = strcpy(tmp, result)
	}
	return result
}

// Get returns the index-th string.
func (r *RearCodedList) Get(index int) string {
	return string(r.GetInplace(index, nil))
}

// Contains reports whether s is present in the list. The list must
// have been built from lexicographically sorted input for this to be
// meaningful: Contains binary-searches block heads, then scans within
// the candidate block.
//
// Unlike the block-0 asymmetry the original implementation left
// unresolved (a miss landing before the very first block head returned
// false outright, even when the query actually fell inside block 0),
// this implementation always falls through to a linear scan of the
// candidate block, so strings that sort within block 0 but are not its
// head are still found.
func (r *RearCodedList) Contains(s string) bool {
	if len(r.pointers) == 0 {
		return false
	}

	target := []byte(s)
	blockIdx, found := searchBlocks(r.pointers, r.data, target)
	if found {
		return true
	}
	if blockIdx > 0 {
		blockIdx--
	}

	buf := make([]byte, 0, r.stats.MaxStrLen)
	data := r.data[r.pointers[blockIdx]:]
	buf, data = strcpy(data, buf)
	if bytes.Equal(buf, target) {
		return true
	}

	inBlock := r.k - 1
	if remaining := r.len - blockIdx*r.k - 1; remaining < inBlock {
		inBlock = remaining
	}

	for i := 0; i < inBlock; i++ {
		length, tmp := decodeInt(data)
		buf = buf[:len(buf)-int(length)]
		buf, data = strcpy(tmp, buf)

		switch bytes.Compare(target, buf) {
		case -1:
			return false
		case 0:
			return true
		}
	}
	return false
}

// searchBlocks binary-searches the block-head pointers for target,
// comparing target against the NUL-terminated block head string at
// each pointer. It returns the insertion index and whether an exact
// match was found.
func searchBlocks(pointers []int, data []byte, target []byte) (int, bool) {
	lo, hi := 0, len(pointers)
	for lo < hi {
		mid := (lo + hi) / 2
		cmp := strcmpNulTerminated(target, data[pointers[mid]:])
		switch {
		case cmp == 0:
			return mid, true
		case cmp < 0:
			hi = mid
		default:
			lo = mid + 1
		}
	}
	return lo, false
}

// strcmpNulTerminated compares s against a NUL-terminated byte string
// data, as if s itself had an implicit trailing NUL, returning <0, 0,
// >0 per the usual comparator convention.
func strcmpNulTerminated(s []byte, data []byte) int {
	for i, c := range s {
		if data[i] != c {
			if data[i] < c {
				return 1
			}
			return -1
		}
	}
	if data[len(s)] == 0 {
		return 0
	}
	return -1
}

// Iter calls yield once per string in order, stopping early if yield
// returns false.
func (r *RearCodedList) Iter(yield func(index int, s string) bool) {
	r.IterFrom(0, yield)
}

// IterFrom calls yield once per string starting at index start, in
// order, stopping early if yield returns false.
func (r *RearCodedList) IterFrom(start int, yield func(index int, s string) bool) {
	for i := start; i < r.len; i++ {
		if !yield(i, r.Get(i)) {
			return
		}
	}
}

// longestCommonPrefix returns the length of the longest shared prefix
// of a and b.
func longestCommonPrefix(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
