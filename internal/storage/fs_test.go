package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/roamdeck/internal/checksum"
)

func tempInbox(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempInbox(t)
	content := []byte(`[{"title":"t"}]`)
	if err := s.Write("export.json", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("export.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q, want %q", got, content)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempInbox(t)
	if err := s.Write("2024/06/graph.json", []byte("[]")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "2024", "06", "graph.json")); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestList_OnlyExports(t *testing.T) {
	s := tempInbox(t)
	_ = s.Write("a.json", []byte("[]"))
	_ = s.Write("sub/b.zip", []byte("zip"))
	_ = s.Write("readme.md", []byte("not an export"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(items), items)
	}
	byPath := map[string]string{}
	for _, it := range items {
		byPath[it.Path] = it.Checksum
	}
	if byPath["a.json"] != checksum.Sum([]byte("[]")) {
		t.Errorf("checksum(a.json) = %q", byPath["a.json"])
	}
	if _, ok := byPath["sub/b.zip"]; !ok {
		t.Errorf("sub/b.zip missing from %v", byPath)
	}
}

func TestPath(t *testing.T) {
	s := tempInbox(t)
	got, err := s.Path("x/export.json")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if want := filepath.Join(s.Root(), "x", "export.json"); got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempInbox(t)
	for _, p := range []string{"../../etc/passwd", "../outside.json", "/etc/shadow"} {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected read error for %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected write error for %q", p)
		}
		if _, err := s.Path(p); err == nil {
			t.Errorf("expected path error for %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTemp(t *testing.T) {
	s := tempInbox(t)
	_ = s.Write("atomic.json", []byte("old"))
	if err := s.Write("atomic.json", []byte("new")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.json")
	if string(got) != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}
	matches, _ := filepath.Glob(filepath.Join(s.Root(), tmpPattern))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")
	if _, err := NewFS(dir); err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("inbox not created: %v", err)
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "roamdeck-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}
