package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"testing"
)

func TestMemoryFileSystemReadFile(t *testing.T) {
	m := NewMemoryFileSystem()
	m.WriteFile("export/a.gpx", []byte("<gpx/>"))

	data, err := m.ReadFile("export/a.gpx")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "<gpx/>" {
		t.Errorf("ReadFile = %q, expected %q", data, "<gpx/>")
	}

	// Mutating the returned slice must not affect the stored file.
	data[0] = 'X'
	again, _ := m.ReadFile("export/a.gpx")
	if string(again) != "<gpx/>" {
		t.Errorf("stored data mutated: %q", again)
	}

	_, err = m.ReadFile("export/missing.gpx")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestMemoryFileSystemOpen(t *testing.T) {
	m := NewMemoryFileSystem()
	m.WriteFile("export/a.gpx", []byte("hello"))

	f, err := m.Open("export/a.gpx")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("read %q, expected %q", data, "hello")
	}

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Name() != "a.gpx" || info.Size() != 5 {
		t.Errorf("Stat = %s/%d, expected a.gpx/5", info.Name(), info.Size())
	}
}

func TestMemoryFileSystemReadDir(t *testing.T) {
	m := NewMemoryFileSystem()
	m.WriteFile("export/b.gpx", []byte("b"))
	m.WriteFile("export/a.gpx", []byte("a"))
	m.WriteFile("export/nested/c.gpx", []byte("c"))

	entries, err := m.ReadDir("export")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	expected := []string{"a.gpx", "b.gpx", "nested"}
	if len(names) != len(expected) {
		t.Fatalf("ReadDir names = %v, expected %v", names, expected)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("entry %d = %q, expected %q", i, names[i], expected[i])
		}
	}
	if !entries[2].IsDir() {
		t.Error("nested should be a directory")
	}

	_, err = m.ReadDir("nope")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestMemoryFileSystemExists(t *testing.T) {
	m := NewMemoryFileSystem()
	m.WriteFile("export/a.gpx", []byte("a"))
	m.MkdirAll("empty/dir")

	if !m.Exists("export/a.gpx") {
		t.Error("file should exist")
	}
	if !m.Exists("export") {
		t.Error("implied directory should exist")
	}
	if !m.Exists("empty/dir") {
		t.Error("explicit directory should exist")
	}
	if m.Exists("export/b.gpx") {
		t.Error("missing file should not exist")
	}
}

func TestFileSystemInterface(t *testing.T) {
	var _ FileSystem = OSFileSystem{}
	var _ FileSystem = NewMemoryFileSystem()
}
