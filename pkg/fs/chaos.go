package fs

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"
)

// ErrChaosInjected is wrapped by any error Chaos manufactures itself,
// as opposed to an error surfaced from the underlying filesystem.
var ErrChaosInjected = errors.New("chaos: injected fault")

// ChaosConfig controls fault injection probabilities. The zero value
// disables all injection; Chaos then behaves like a passthrough to
// the wrapped FS.
type ChaosConfig struct {
	// WriteFailRate is the fraction (0.0 to 1.0) of File.Write and
	// FS.WriteFile calls that fail outright, writing zero bytes and
	// returning an error satisfying errors.Is(err, ErrChaosInjected).
	WriteFailRate float64
}

// Chaos wraps an FS and randomly fails writes, for exercising a
// caller's handling of a write that never reaches disk. It is seeded
// for reproducible runs.
type Chaos struct {
	under FS
	cfg   ChaosConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewChaos returns a Chaos wrapping underlying. seed makes fault
// injection reproducible across runs with the same config.
func NewChaos(underlying FS, seed int64, config *ChaosConfig) *Chaos {
	if config == nil {
		config = &ChaosConfig{}
	}

	return &Chaos{
		under: underlying,
		cfg:   *config,
		rng:   rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1)),
	}
}

func (c *Chaos) shouldFailWrite() bool {
	if c.cfg.WriteFailRate <= 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rng.Float64() < c.cfg.WriteFailRate
}

func (c *Chaos) Open(path string) (File, error) {
	f, err := c.under.Open(path)
	if err != nil {
		return nil, err
	}

	return &chaosFile{f: f, c: c}, nil
}

func (c *Chaos) Create(path string) (File, error) {
	f, err := c.under.Create(path)
	if err != nil {
		return nil, err
	}

	return &chaosFile{f: f, c: c}, nil
}

func (c *Chaos) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	f, err := c.under.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}

	return &chaosFile{f: f, c: c}, nil
}

func (c *Chaos) ReadFile(path string) ([]byte, error) { return c.under.ReadFile(path) }

func (c *Chaos) WriteFile(path string, data []byte, perm os.FileMode) error {
	if c.shouldFailWrite() {
		return fmt.Errorf("write %q: %w", path, ErrChaosInjected)
	}

	return c.under.WriteFile(path, data, perm)
}

func (c *Chaos) ReadDir(path string) ([]os.DirEntry, error) { return c.under.ReadDir(path) }

func (c *Chaos) MkdirAll(path string, perm os.FileMode) error { return c.under.MkdirAll(path, perm) }

func (c *Chaos) Stat(path string) (os.FileInfo, error) { return c.under.Stat(path) }

func (c *Chaos) Exists(path string) (bool, error) { return c.under.Exists(path) }

func (c *Chaos) Remove(path string) error { return c.under.Remove(path) }

func (c *Chaos) RemoveAll(path string) error { return c.under.RemoveAll(path) }

func (c *Chaos) Rename(oldpath, newpath string) error { return c.under.Rename(oldpath, newpath) }

// Compile-time interface check.
var _ FS = (*Chaos)(nil)

// chaosFile wraps an open File, injecting write faults per the owning
// Chaos's config. Every other method passes straight through.
type chaosFile struct {
	f File
	c *Chaos
}

func (cf *chaosFile) Read(b []byte) (int, error) { return cf.f.Read(b) }

func (cf *chaosFile) Write(b []byte) (int, error) {
	if cf.c.shouldFailWrite() {
		return 0, fmt.Errorf("write: %w", ErrChaosInjected)
	}

	return cf.f.Write(b)
}

func (cf *chaosFile) Close() error { return cf.f.Close() }

func (cf *chaosFile) Seek(offset int64, whence int) (int64, error) {
	return cf.f.Seek(offset, whence)
}

func (cf *chaosFile) Fd() uintptr { return cf.f.Fd() }

func (cf *chaosFile) Stat() (os.FileInfo, error) { return cf.f.Stat() }

func (cf *chaosFile) Sync() error { return cf.f.Sync() }

func (cf *chaosFile) Chmod(mode os.FileMode) error { return cf.f.Chmod(mode) }

// Compile-time interface check.
var _ File = (*chaosFile)(nil)
