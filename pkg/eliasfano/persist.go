package eliasfano

import (
	"encoding/binary"
	"unsafe"

	"github.com/calvinalkan/succinct/pkg/bitvec"
	"github.com/calvinalkan/succinct/pkg/compactarray"
	"github.com/calvinalkan/succinct/pkg/fs"
	"github.com/calvinalkan/succinct/pkg/persist"
	"github.com/calvinalkan/succinct/pkg/ranksel"
)

// highBitsLen returns the bit length of the high-bits unary code for a
// sequence of n values bounded by u with low-bits width l — the same
// formula NewBuilder uses to size the high-bits BitVec.
func highBitsLen(u, n, l int) int {
	return n + (u >> uint(l)) + 1
}

// Save persists ef to path: a persist.Header (Kind EliasFano, N, U, L,
// NumOnes = high-bits popcount) followed by the low-bits CompactArray's
// words, then the high-bits BitVec's words, each section little-endian.
// Only the Default flavor (unindexed CountBitVec over plain CompactArray
// low bits) is serializable; an indexed flavor (WithIndex,
// WithSimpleSelect) must be rebuilt from a loaded Default after Load,
// mirroring epserde's policy of only serializing concrete, non-derived
// types.
//
// Save is a package function rather than a method because Default is an
// alias for one particular instantiation of the generic EliasFano type,
// and Go does not allow attaching new methods to an instantiated generic
// type (only to the generic type itself, parameterized over H and L).
func Save(ef *Default, fsys fs.FS, path string) error {
	h := persist.Header{
		Kind:    persist.KindEliasFano,
		N:       uint64(ef.n),
		U:       uint64(ef.u),
		L:       uint32(ef.l),
		NumOnes: uint64(ef.highBits.CountOnes()),
	}
	payload := append(encodeWords(ef.lowBits.Words()), encodeWords(ef.highBits.BitVec().Words())...)
	return persist.Save(fsys, path, h, payload)
}

// Load reads a Default EliasFano previously written by Save.
func Load(fsys fs.FS, path string) (*Default, error) {
	h, payload, err := persist.Load(fsys, path)
	if err != nil {
		return nil, err
	}
	if h.Kind != persist.KindEliasFano {
		return nil, persist.ErrIncompatible
	}
	return decodeDefault(h, payload)
}

// LoadMmap memory-maps path read-only and returns a Default EliasFano
// whose low- and high-bits words alias the mapped region directly.
func LoadMmap(path string) (ef *Default, closer func() error, err error) {
	m, err := persist.LoadMmap(path)
	if err != nil {
		return nil, nil, err
	}
	if m.Header.Kind != persist.KindEliasFano {
		_ = m.Close()
		return nil, nil, persist.ErrIncompatible
	}
	ef, err = decodeDefaultView(m.Header, m.Payload)
	if err != nil {
		_ = m.Close()
		return nil, nil, err
	}
	return ef, m.Close, nil
}

func decodeDefault(h persist.Header, payload []byte) (*Default, error) {
	u, n, l := int(h.U), int(h.N), int(h.L)
	lowWordsLen := wordsLenFor(l * n)
	highWordsLen := wordsLenFor(highBitsLen(u, n, l))

	lowWords, payload, err := splitWords(payload, lowWordsLen)
	if err != nil {
		return nil, err
	}
	highWords, _, err := splitWords(payload, highWordsLen)
	if err != nil {
		return nil, err
	}

	lowBits := compactarray.FromWords(lowWords, l, n)
	highBits := bitvec.FromWords(highWords, highBitsLen(u, n, l))
	return &Default{
		u: u, n: n, l: l,
		lowBits:  lowBits,
		highBits: ranksel.NewCountBitVec(highBits),
	}, nil
}

func decodeDefaultView(h persist.Header, payload []byte) (*Default, error) {
	u, n, l := int(h.U), int(h.N), int(h.L)
	lowWordsLen := wordsLenFor(l * n)
	highWordsLen := wordsLenFor(highBitsLen(u, n, l))

	lowWords, payload, err := splitWordsView(payload, lowWordsLen)
	if err != nil {
		return nil, err
	}
	highWords, _, err := splitWordsView(payload, highWordsLen)
	if err != nil {
		return nil, err
	}

	lowBits := compactarray.FromWords(lowWords, l, n)
	highBits := bitvec.FromWords(highWords, highBitsLen(u, n, l))
	return &Default{
		u: u, n: n, l: l,
		lowBits:  lowBits,
		highBits: ranksel.NewCountBitVec(highBits),
	}, nil
}

func wordsLenFor(bitLen int) int {
	if bitLen <= 0 {
		return 0
	}
	return (bitLen + 63) / 64
}

func encodeWords(words []uint64) []byte {
	buf := make([]byte, len(words)*8)
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return buf
}

// splitWords decodes the first n words from payload (copying), returning
// them and the remaining bytes.
func splitWords(payload []byte, n int) (words []uint64, rest []byte, err error) {
	need := n * 8
	if len(payload) < need {
		return nil, nil, persist.ErrCorrupt
	}
	words = make([]uint64, n)
	for i := 0; i < n; i++ {
		words[i] = binary.LittleEndian.Uint64(payload[i*8:])
	}
	return words, payload[need:], nil
}

// splitWordsView reinterprets the first n words of an mmap'd payload as a
// []uint64 in place, with no copy, returning the view and the remaining
// bytes.
func splitWordsView(payload []byte, n int) (words []uint64, rest []byte, err error) {
	need := n * 8
	if len(payload) < need {
		return nil, nil, persist.ErrCorrupt
	}
	if n == 0 {
		return nil, payload[need:], nil
	}
	words = unsafe.Slice((*uint64)(unsafe.Pointer(&payload[0])), n)
	return words, payload[need:], nil
}
