package persist

import (
	"bytes"
	"fmt"
	"io"

	"github.com/calvinalkan/succinct/pkg/fs"
)

// Save writes header and payload to path as a single image: a
// HeaderSize-byte header (with h.PayloadLen overwritten to
// len(payload)) followed by payload verbatim.
//
// The write goes through fsys's [fs.AtomicWriter]: temp file in the
// same directory, fsync, rename over path, fsync the parent directory.
// A reader opening path concurrently always sees either the previous
// complete image or the new one, never a partial write. Pass
// fs.NewReal() in production; tests pass fs.NewChaos/fs.NewCrash to
// exercise the failure and crash-recovery paths.
func Save(fsys fs.FS, path string, h Header, payload []byte) error {
	h.PayloadLen = uint64(len(payload))

	image := make([]byte, 0, HeaderSize+len(payload))
	image = append(image, encodeHeader(h)...)
	image = append(image, payload...)

	writer := fs.NewAtomicWriter(fsys)
	opts := fs.AtomicWriteOptions{SyncDir: true, Perm: 0o644}
	if err := writer.Write(path, bytes.NewReader(image), opts); err != nil {
		return fmt.Errorf("persist: write %q: %w", path, err)
	}
	return nil
}

// WriteTo writes header and payload to w without going through a file
// at all, for callers composing their own transport (e.g. an
// in-process benchmark harness round-tripping through a buffer).
func WriteTo(w io.Writer, h Header, payload []byte) error {
	h.PayloadLen = uint64(len(payload))
	if _, err := w.Write(encodeHeader(h)); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
