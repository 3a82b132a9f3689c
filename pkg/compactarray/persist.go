package compactarray

import (
	"encoding/binary"
	"unsafe"

	"github.com/calvinalkan/succinct/pkg/fs"
	"github.com/calvinalkan/succinct/pkg/persist"
)

// Save persists c to path: a persist.Header (Kind CompactArray, N =
// Len(), Width = Width()) followed by the backing words, little-endian,
// eight bytes each.
func (c *CompactArray) Save(fsys fs.FS, path string) error {
	h := persist.Header{
		Kind:  persist.KindCompactArray,
		N:     uint64(c.len),
		Width: uint32(c.width),
	}
	return persist.Save(fsys, path, h, encodeWords(c.words))
}

// Load reads a CompactArray previously written by Save.
func Load(fsys fs.FS, path string) (*CompactArray, error) {
	h, payload, err := persist.Load(fsys, path)
	if err != nil {
		return nil, err
	}
	if h.Kind != persist.KindCompactArray {
		return nil, persist.ErrIncompatible
	}
	words, err := decodeWords(payload)
	if err != nil {
		return nil, err
	}
	return FromWords(words, int(h.Width), int(h.N)), nil
}

// LoadMmap memory-maps path read-only and returns a CompactArray whose
// backing words alias the mapped region directly. The returned closer
// must be closed when the CompactArray is no longer needed.
func LoadMmap(path string) (ca *CompactArray, closer func() error, err error) {
	m, err := persist.LoadMmap(path)
	if err != nil {
		return nil, nil, err
	}
	if m.Header.Kind != persist.KindCompactArray {
		_ = m.Close()
		return nil, nil, persist.ErrIncompatible
	}
	words, err := wordsViewOf(m.Payload)
	if err != nil {
		_ = m.Close()
		return nil, nil, err
	}
	return FromWords(words, int(m.Header.Width), int(m.Header.N)), m.Close, nil
}

func encodeWords(words []uint64) []byte {
	buf := make([]byte, len(words)*8)
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return buf
}

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
// no copy: the returned slice aliases the mapped region directly.
func wordsViewOf(payload []byte) ([]uint64, error) {
	if len(payload)%8 != 0 {
		return nil, persist.ErrCorrupt
	}
	if len(payload) == 0 {
		return nil, nil
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&payload[0])), len(payload)/8), nil
}
