package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// TempDirer is the subset of *testing.T (and *testing.B) NewCrash
// needs to obtain an isolated scratch directory.
type TempDirer interface {
	TempDir() string
}

// CrashConfig is reserved for future fault tuning. It currently has
// no fields; the zero value is the only supported configuration.
type CrashConfig struct{}

// Crash wraps an FS and simulates a power-loss crash: only file
// content that has reached [File.Sync] survives [Crash.SimulateCrash].
// A file that was created or overwritten but never synced is rolled
// back to whatever it held before (or removed, if it didn't exist
// before).
//
// This exists to exercise exactly the durability guarantee
// [AtomicWriter] relies on: write a temp file, sync it, then rename it
// over the destination. Directory operations other than Rename pass
// straight through to the underlying FS; Crash does not model
// directory-entry crash consistency beyond what Rename needs.
type Crash struct {
	under FS
	dir   string

	mu      sync.Mutex
	durable map[string][]byte    // resolved path -> last fsynced content
	live    map[string]struct{} // resolved path -> ever opened for writing
}

// NewCrash returns a Crash rooted at a fresh scratch directory
// obtained from tb, using underlying for the actual I/O.
func NewCrash(tb TempDirer, underlying FS, config *CrashConfig) (*Crash, error) {
	if config == nil {
		config = &CrashConfig{}
	}

	return &Crash{
		under:   underlying,
		dir:     tb.TempDir(),
		durable: make(map[string][]byte),
		live:    make(map[string]struct{}),
	}, nil
}

func (c *Crash) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(c.dir, path)
}

func (c *Crash) markLive(path string) {
	c.mu.Lock()
	c.live[path] = struct{}{}
	c.mu.Unlock()
}

// commit snapshots path's current on-disk content as durable. Called
// on every Sync, including directory syncs, for which reading back as
// a file fails and is silently ignored: there is nothing of its own
// for a directory to snapshot, and the rename that needed the sync
// already committed in Rename itself.
func (c *Crash) commit(path string) {
	content, err := c.under.ReadFile(path)
	if err != nil {
		return
	}

	c.mu.Lock()
	c.durable[path] = content
	c.mu.Unlock()
}

func (c *Crash) Open(path string) (File, error) {
	resolved := c.resolve(path)

	f, err := c.under.Open(resolved)
	if err != nil {
		return nil, err
	}

	return &crashFile{f: f, c: c, path: resolved}, nil
}

func (c *Crash) Create(path string) (File, error) {
	resolved := c.resolve(path)

	f, err := c.under.Create(resolved)
	if err != nil {
		return nil, err
	}

	c.markLive(resolved)

	return &crashFile{f: f, c: c, path: resolved}, nil
}

func (c *Crash) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	resolved := c.resolve(path)

	f, err := c.under.OpenFile(resolved, flag, perm)
	if err != nil {
		return nil, err
	}

	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE) != 0 {
		c.markLive(resolved)
	}

	return &crashFile{f: f, c: c, path: resolved}, nil
}

func (c *Crash) ReadFile(path string) ([]byte, error) { return c.under.ReadFile(c.resolve(path)) }

// WriteFile has no separate sync step, so it commits immediately: the
// same "not atomic or durable" caveat [FS.WriteFile] documents applies
// here too, and nothing in this module's durable-save path uses it.
func (c *Crash) WriteFile(path string, data []byte, perm os.FileMode) error {
	resolved := c.resolve(path)

	if err := c.under.WriteFile(resolved, data, perm); err != nil {
		return err
	}

	c.mu.Lock()
	c.durable[resolved] = append([]byte(nil), data...)
	c.live[resolved] = struct{}{}
	c.mu.Unlock()

	return nil
}

func (c *Crash) ReadDir(path string) ([]os.DirEntry, error) {
	return c.under.ReadDir(c.resolve(path))
}

func (c *Crash) MkdirAll(path string, perm os.FileMode) error {
	return c.under.MkdirAll(c.resolve(path), perm)
}

func (c *Crash) Stat(path string) (os.FileInfo, error) { return c.under.Stat(c.resolve(path)) }

func (c *Crash) Exists(path string) (bool, error) { return c.under.Exists(c.resolve(path)) }

func (c *Crash) Remove(path string) error {
	resolved := c.resolve(path)

	if err := c.under.Remove(resolved); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.durable, resolved)
	delete(c.live, resolved)
	c.mu.Unlock()

	return nil
}

func (c *Crash) RemoveAll(path string) error { return c.under.RemoveAll(c.resolve(path)) }

// Rename moves durability tracking along with the underlying rename.
// The move itself is treated as immediately durable: pkg/persist's
// atomic writer only depends on the renamed-over file's *content*
// surviving a crash, which is what SimulateCrash checks.
func (c *Crash) Rename(oldpath, newpath string) error {
	oldResolved, newResolved := c.resolve(oldpath), c.resolve(newpath)

	if err := c.under.Rename(oldResolved, newResolved); err != nil {
		return err
	}

	c.mu.Lock()
	if content, ok := c.durable[oldResolved]; ok {
		c.durable[newResolved] = content
		delete(c.durable, oldResolved)
	}
	if _, ok := c.live[oldResolved]; ok {
		c.live[newResolved] = struct{}{}
		delete(c.live, oldResolved)
	}
	c.mu.Unlock()

	return nil
}

// SimulateCrash rolls every file ever opened for writing back to its
// last durably synced content, removing files that were created but
// never synced. Call it after a sequence of writes to assert which of
// them actually survive a power loss.
func (c *Crash) SimulateCrash() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for path := range c.live {
		content, ok := c.durable[path]
		if !ok {
			if err := c.under.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("crash: rollback remove %q: %w", path, err)
			}
			continue
		}

		if err := c.under.WriteFile(path, content, 0o644); err != nil {
			return fmt.Errorf("crash: rollback restore %q: %w", path, err)
		}
	}

	return nil
}

// Compile-time interface check.
var _ FS = (*Crash)(nil)

// crashFile wraps an open File, snapshotting its content into the
// owning Crash's durable set on every Sync.
type crashFile struct {
	f    File
	c    *Crash
	path string
}

func (cf *crashFile) Read(b []byte) (int, error) { return cf.f.Read(b) }

func (cf *crashFile) Write(b []byte) (int, error) { return cf.f.Write(b) }

func (cf *crashFile) Close() error { return cf.f.Close() }

func (cf *crashFile) Seek(offset int64, whence int) (int64, error) {
	return cf.f.Seek(offset, whence)
}

func (cf *crashFile) Fd() uintptr { return cf.f.Fd() }

func (cf *crashFile) Stat() (os.FileInfo, error) { return cf.f.Stat() }

func (cf *crashFile) Sync() error {
	if err := cf.f.Sync(); err != nil {
		return err
	}

	cf.c.commit(cf.path)

	return nil
}

func (cf *crashFile) Chmod(mode os.FileMode) error { return cf.f.Chmod(mode) }

// Compile-time interface check.
var _ File = (*crashFile)(nil)
