package persist

import (
	"fmt"
	"io"

	"github.com/calvinalkan/succinct/pkg/fs"
)

// Load reads and validates an image written by Save, returning its
// header and payload. The payload shares no memory with the file on
// disk; use LoadMmap for a zero-copy view. Pass fs.NewReal() in
// production; tests pass fs.NewCrash to read back crash-recovered
// states.
func Load(fsys fs.FS, path string) (Header, []byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("persist: open %q: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Header{}, nil, fmt.Errorf("persist: read %q: %w", path, err)
	}
	return decodeImage(data)
}

// decodeImage validates and splits a complete in-memory image into its
// header and payload.
func decodeImage(data []byte) (Header, []byte, error) {
	if len(data) < HeaderSize {
		return Header{}, nil, ErrShortRead
	}

	h, err := decodeHeader(data[:HeaderSize])
	if err != nil {
		return Header{}, nil, err
	}

	payload := data[HeaderSize:]
	if uint64(len(payload)) != h.PayloadLen {
		return Header{}, nil, fmt.Errorf("%w: payload length %d, header declares %d",
			ErrCorrupt, len(payload), h.PayloadLen)
	}

	return h, payload, nil
}
