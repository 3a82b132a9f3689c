package persist

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Magic bytes at the start of every persisted image.
const magic = "SXF1"

// Version is the current on-disk format version.
const Version = 1

// HeaderSize is the fixed size in bytes of every header.
const HeaderSize = 128

// Kind identifies which structure a payload decodes to, so Load can
// reject a file handed to the wrong package's loader before touching
// the payload bytes.
type Kind uint32

const (
	KindBitVec Kind = iota + 1
	KindCompactArray
	KindEliasFano
	KindRearCodedList
)

func (k Kind) String() string {
	switch k {
	case KindBitVec:
		return "BitVec"
	case KindCompactArray:
		return "CompactArray"
	case KindEliasFano:
		return "EliasFano"
	case KindRearCodedList:
		return "RearCodedList"
	default:
		return fmt.Sprintf("Kind(%d)", uint32(k))
	}
}

// Header describes the structural parameters of a persisted image. The
// header fields are encoded little-endian, and the raw payload bytes
// (words, counters, pointers) follow the header verbatim. The packages
// in this module write their payload words little-endian; the
// bitvec, compactarray and eliasfano LoadMmap paths reinterpret those
// bytes in host byte order, so their mmap loading is only correct on
// little-endian hosts (cross-endian loading is not supported, mirroring
// spec.md section 6).
//
// Not every field is meaningful for every Kind; each package's
// Save/Load wrapper documents which fields it populates.
type Header struct {
	Kind       Kind
	N          uint64 // element/entry count
	U          uint64 // universe size (EliasFano)
	L          uint32 // low-bits width (EliasFano)
	K          uint32 // block size (RearCodedList)
	Width      uint32 // entry width in bits (CompactArray)
	NumOnes    uint64 // cached popcount, where applicable
	PayloadLen uint64 // length in bytes of the payload following the header
}

// header field byte offsets.
const (
	offMagic      = 0x00 // [4]byte
	offVersion    = 0x04 // uint32
	offKind       = 0x08 // uint32
	offN          = 0x0C // uint64
	offU          = 0x14 // uint64
	offL          = 0x1C // uint32
	offK          = 0x20 // uint32
	offWidth      = 0x24 // uint32
	offNumOnes    = 0x28 // uint64
	offPayloadLen = 0x30 // uint64
	offCRC32C     = 0x38 // uint32
	// remaining bytes through HeaderSize are reserved and must be zero.
)

// encodeHeader serializes h into a HeaderSize-byte buffer, including a
// trailing CRC32C computed over every other field.
func encodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[offMagic:], magic)
	binary.LittleEndian.PutUint32(buf[offVersion:], Version)
	binary.LittleEndian.PutUint32(buf[offKind:], uint32(h.Kind))
	binary.LittleEndian.PutUint64(buf[offN:], h.N)
	binary.LittleEndian.PutUint64(buf[offU:], h.U)
	binary.LittleEndian.PutUint32(buf[offL:], h.L)
	binary.LittleEndian.PutUint32(buf[offK:], h.K)
	binary.LittleEndian.PutUint32(buf[offWidth:], h.Width)
	binary.LittleEndian.PutUint64(buf[offNumOnes:], h.NumOnes)
	binary.LittleEndian.PutUint64(buf[offPayloadLen:], h.PayloadLen)

	crc := computeHeaderCRC(buf)
	binary.LittleEndian.PutUint32(buf[offCRC32C:], crc)
	return buf
}

// decodeHeader validates and parses a HeaderSize-byte buffer.
func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrShortRead
	}
	if string(buf[offMagic:offMagic+4]) != magic {
		return Header{}, fmt.Errorf("%w: bad magic", ErrIncompatible)
	}
	if version := binary.LittleEndian.Uint32(buf[offVersion:]); version != Version {
		return Header{}, fmt.Errorf("%w: version %d", ErrIncompatible, version)
	}
	if !validateHeaderCRC(buf) {
		return Header{}, fmt.Errorf("%w: header checksum mismatch", ErrCorrupt)
	}

	return Header{
		Kind:       Kind(binary.LittleEndian.Uint32(buf[offKind:])),
		N:          binary.LittleEndian.Uint64(buf[offN:]),
		U:          binary.LittleEndian.Uint64(buf[offU:]),
		L:          binary.LittleEndian.Uint32(buf[offL:]),
		K:          binary.LittleEndian.Uint32(buf[offK:]),
		Width:      binary.LittleEndian.Uint32(buf[offWidth:]),
		NumOnes:    binary.LittleEndian.Uint64(buf[offNumOnes:]),
		PayloadLen: binary.LittleEndian.Uint64(buf[offPayloadLen:]),
	}, nil
}

// computeHeaderCRC computes the CRC32-C checksum of buf with the crc
// field itself treated as zero.
func computeHeaderCRC(buf []byte) uint32 {
	tmp := make([]byte, HeaderSize)
	copy(tmp, buf)
	for i := offCRC32C; i < offCRC32C+4; i++ {
		tmp[i] = 0
	}
	return crc32.Checksum(tmp, crc32.MakeTable(crc32.Castagnoli))
}

func validateHeaderCRC(buf []byte) bool {
	stored := binary.LittleEndian.Uint32(buf[offCRC32C:])
	return stored == computeHeaderCRC(buf)
}
