//go:build !unix

package persist

import "errors"

// ErrMmapUnsupported is returned by LoadMmap on platforms without the
// unix mmap syscalls this package uses for zero-copy loading.
var ErrMmapUnsupported = errors.New("persist: mmap not supported on this platform")

// Mapped is declared here too so callers can reference persist.Mapped
// regardless of platform; on non-unix it is never successfully
// constructed.
type Mapped struct {
	Header  Header
	Payload []byte
}

// LoadMmap always fails on non-unix platforms. Use Load instead.
func LoadMmap(path string) (*Mapped, error) {
	return nil, ErrMmapUnsupported
}

// Close is a no-op satisfying the same shape as the unix Mapped.Close.
func (m *Mapped) Close() error {
	return nil
}
