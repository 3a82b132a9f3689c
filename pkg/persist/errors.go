package persist

import "errors"

// ErrCorrupt indicates the file's header or payload length is
// internally inconsistent (bad CRC, payload length mismatch).
var ErrCorrupt = errors.New("persist: corrupt")

// ErrIncompatible indicates the file's magic or version does not match
// what this build of the library can read. The per-structure loaders
// also return it when the header's Kind is not the one they decode.
var ErrIncompatible = errors.New("persist: incompatible")

// ErrShortRead indicates the file is smaller than a header, so it
// cannot possibly hold a valid image.
var ErrShortRead = errors.New("persist: short read")
