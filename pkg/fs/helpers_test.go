package fs_test

import (
	"os"
	"testing"

	"github.com/calvinalkan/succinct/pkg/fs"
)

const testContentHello = "hello"

func mustNewCrash(t *testing.T, config *fs.CrashConfig) *fs.Crash {
	t.Helper()

	crash, err := fs.NewCrash(t, fs.NewReal(), config)
	if err != nil {
		t.Fatalf("fs.NewCrash: %v", err)
	}

	return crash
}

func mustReadFile(t *testing.T, fileSystem fs.FS, path string) string {
	t.Helper()

	data, err := fileSystem.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%q): %v", path, err)
	}

	return string(data)
}

func writeFile(t *testing.T, fileSystem fs.FS, path string, data string, perm os.FileMode, sync bool) {
	t.Helper()

	f, err := fileSystem.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		t.Fatalf("OpenFile(%q): %v", path, err)
	}

	if _, err := f.Write([]byte(data)); err != nil {
		_ = f.Close()
		t.Fatalf("Write(%q): %v", path, err)
	}

	if sync {
		if err := f.Sync(); err != nil {
			_ = f.Close()
			t.Fatalf("Sync(%q): %v", path, err)
		}
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close(%q): %v", path, err)
	}
}
