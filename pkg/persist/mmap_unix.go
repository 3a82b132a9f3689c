//go:build unix

package persist

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mapped is a read-only, zero-copy view of a persisted image backed by
// an mmap'd region. The caller must call Close when done to release
// the mapping.
type Mapped struct {
	Header  Header
	Payload []byte

	raw []byte
}

// LoadMmap opens path and maps it read-only, validating the header
// before returning. Payload aliases the mapped region directly — no
// bytes are copied out of the file.
func LoadMmap(path string) (*Mapped, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("persist: open %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("persist: stat %q: %w", path, err)
	}
	size := info.Size()
	if size < HeaderSize {
		return nil, ErrShortRead
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("persist: mmap %q: %w", path, err)
	}

	h, payload, err := decodeImage(data)
	if err != nil {
		_ = unix.Munmap(data)
		return nil, err
	}

	return &Mapped{Header: h, Payload: payload, raw: data}, nil
}

// Close unmaps the underlying region. Payload must not be used after
// Close returns.
func (m *Mapped) Close() error {
	if m.raw == nil {
		return nil
	}
	err := unix.Munmap(m.raw)
	m.raw = nil
	m.Payload = nil
	return err
}
