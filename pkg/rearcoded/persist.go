package rearcoded

import (
	"encoding/binary"

	"github.com/calvinalkan/succinct/pkg/fs"
	"github.com/calvinalkan/succinct/pkg/persist"
)

// statsFieldCount is the number of int fields in Stats, each persisted
// as a little-endian int64.
const statsFieldCount = 9

// numBlocks returns the number of block-head pointers for n strings
// encoded with block size k, matching how Builder.Push appends to
// pointers on every k-th string.
func numBlocks(n, k int) int {
	if n == 0 {
		return 0
	}
	return (n + k - 1) / k
}

// Save persists r to path: a persist.Header (Kind RearCodedList, N =
// Len(), K = block size) followed by the Stats fields, the block-head
// pointers, then the raw encoded data bytes. Pointer count is not
// stored explicitly; it is recomputed from N and K on Load, the same
// way Builder derives it while encoding.
func (r *RearCodedList) Save(fsys fs.FS, path string) error {
	h := persist.Header{
		Kind: persist.KindRearCodedList,
		N:    uint64(r.len),
		K:    uint32(r.k),
	}
	payload := make([]byte, 0, statsFieldCount*8+len(r.pointers)*8+len(r.data))
	payload = appendStats(payload, r.stats)
	payload = appendInts(payload, r.pointers)
	payload = append(payload, r.data...)
	return persist.Save(fsys, path, h, payload)
}

// Load reads a RearCodedList previously written by Save.
func Load(fsys fs.FS, path string) (*RearCodedList, error) {
	h, payload, err := persist.Load(fsys, path)
	if err != nil {
		return nil, err
	}
	if h.Kind != persist.KindRearCodedList {
		return nil, persist.ErrIncompatible
	}

	n, k := int(h.N), int(h.K)
	stats, payload, err := readStats(payload)
	if err != nil {
		return nil, err
	}
	pointers, payload, err := readInts(payload, numBlocks(n, k))
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(payload))
	copy(data, payload)

	return &RearCodedList{
		data:     data,
		pointers: pointers,
		k:        k,
		len:      n,
		stats:    stats,
	}, nil
}

// LoadMmap memory-maps path read-only and returns a RearCodedList whose
// data bytes alias the mapped region directly; only the pointers slice
// (small, fixed-width ints) is copied out into regular heap memory.
func LoadMmap(path string) (rc *RearCodedList, closer func() error, err error) {
	m, err := persist.LoadMmap(path)
	if err != nil {
		return nil, nil, err
	}
	if m.Header.Kind != persist.KindRearCodedList {
		_ = m.Close()
		return nil, nil, persist.ErrIncompatible
	}

	n, k := int(m.Header.N), int(m.Header.K)
	stats, payload, err := readStats(m.Payload)
	if err != nil {
		_ = m.Close()
		return nil, nil, err
	}
	pointers, payload, err := readInts(payload, numBlocks(n, k))
	if err != nil {
		_ = m.Close()
		return nil, nil, err
	}

	rc = &RearCodedList{
		data:     payload,
		pointers: pointers,
		k:        k,
		len:      n,
		stats:    stats,
	}
	return rc, m.Close, nil
}

func appendStats(buf []byte, s Stats) []byte {
	fields := [statsFieldCount]int{
		s.MaxBlockBytes, s.SumBlockBytes,
		s.MaxLCP, s.SumLCP,
		s.MaxStrLen, s.SumStrLen,
		s.CodeBytes, s.SuffixesBytes,
		s.Redundancy,
	}
	return appendInts(buf, fields[:])
}

func readStats(payload []byte) (Stats, []byte, error) {
	fields, rest, err := readInts(payload, statsFieldCount)
	if err != nil {
		return Stats{}, nil, err
	}
	return Stats{
		MaxBlockBytes: fields[0],
		SumBlockBytes: fields[1],
		MaxLCP:        fields[2],
		SumLCP:        fields[3],
		MaxStrLen:     fields[4],
		SumStrLen:     fields[5],
		CodeBytes:     fields[6],
		SuffixesBytes: fields[7],
		Redundancy:    fields[8],
	}, rest, nil
}

func appendInts(buf []byte, ints []int) []byte {
	for _, v := range ints {
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(v))
		buf = append(buf, tmp[:]...)
	}
	return buf
}

func readInts(payload []byte, n int) ([]int, []byte, error) {
	need := n * 8
	if len(payload) < need {
		return nil, nil, persist.ErrCorrupt
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = int(int64(binary.LittleEndian.Uint64(payload[i*8:])))
	}
	return out, payload[need:], nil
}
