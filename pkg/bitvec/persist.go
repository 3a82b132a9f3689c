package bitvec

import (
	"encoding/binary"
	"unsafe"

	"github.com/calvinalkan/succinct/pkg/fs"
	"github.com/calvinalkan/succinct/pkg/persist"
)

// Save persists b to path: a persist.Header (Kind BitVec, N = Len(),
// NumOnes = CountOnes()) followed by the backing words, little-endian,
// eight bytes each. See package persist for the atomicity and failure
// semantics of the underlying write.
func (b *BitVec) Save(fsys fs.FS, path string) error {
	h := persist.Header{
		Kind:    persist.KindBitVec,
		N:       uint64(b.length),
		NumOnes: uint64(b.CountOnes()),
	}
	return persist.Save(fsys, path, h, encodeWords(b.words))
}

// Load reads a BitVec previously written by Save.
func Load(fsys fs.FS, path string) (*BitVec, error) {
	h, payload, err := persist.Load(fsys, path)
	if err != nil {
		return nil, err
	}
	if h.Kind != persist.KindBitVec {
		return nil, persist.ErrIncompatible
	}
	words, err := decodeWords(payload)
	if err != nil {
		return nil, err
	}
	return FromWords(words, int(h.N)), nil
}

// LoadMmap memory-maps path read-only and returns a BitVec whose backing
// words alias the mapped region directly. The returned closer must be
// closed when the BitVec is no longer needed; using the BitVec after
// Close is undefined.
func LoadMmap(path string) (bv *BitVec, closer func() error, err error) {
	m, err := persist.LoadMmap(path)
	if err != nil {
		return nil, nil, err
	}
	if m.Header.Kind != persist.KindBitVec {
		_ = m.Close()
		return nil, nil, persist.ErrIncompatible
	}
	words, err := wordsViewOf(m.Payload)
	if err != nil {
		_ = m.Close()
		return nil, nil, err
	}
	return FromWords(words, int(m.Header.N)), m.Close, nil
}

// encodeWords serializes words to little-endian bytes.
func encodeWords(words []uint64) []byte {
	buf := make([]byte, len(words)*8)
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return buf
}

// decodeWords deserializes a copy of payload into a fresh []uint64.
func decodeWords(payload []byte) ([]uint64, error) {
	if len(payload)%8 != 0 {
		return nil, persist.ErrCorrupt
	}
	words := make([]uint64, len(payload)/8)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(payload[i*8:])
	}
	return words, nil
}

// wordsViewOf reinterprets an mmap'd payload as a []uint64 in place, with
// no copy: the returned slice aliases the mapped region directly. Valid
// only on little-endian hosts, matching persist's no-cross-endian-loading
// contract (spec.md section 6).
func wordsViewOf(payload []byte) ([]uint64, error) {
	if len(payload)%8 != 0 {
		return nil, persist.ErrCorrupt
	}
	if len(payload) == 0 {
		return nil, nil
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&payload[0])), len(payload)/8), nil
}
