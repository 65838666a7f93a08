package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsSubpath(t *testing.T) {
	tests := []struct {
		name   string
		child  string
		parent string
		want   bool
	}{
		{"direct child", "/downloads/file.mp4", "/downloads", true},
		{"nested child", "/downloads/a/b/file.mp4", "/downloads", true},
		{"same path", "/downloads", "/downloads", false},
		{"sibling", "/other/file.mp4", "/downloads", false},
		{"traversal", "/downloads/../etc/passwd", "/downloads", false},
		{"prefix but not child", "/downloads-evil/file.mp4", "/downloads", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSubpath(tt.child, tt.parent); got != tt.want {
				t.Errorf("IsSubpath(%q, %q) = %v, want %v", tt.child, tt.parent, got, tt.want)
			}
		})
	}
}

func TestEnsureSubpath(t *testing.T) {
	dir := t.TempDir()
	if err := EnsureSubpath(filepath.Join(dir, "x.mp4"), dir); err != nil {
		t.Errorf("EnsureSubpath(inside) error = %v", err)
	}
	if err := EnsureSubpath(filepath.Join(dir, "..", "x.mp4"), dir); err == nil {
		t.Error("EnsureSubpath(outside) should fail")
	}
}

func TestMoveAtomic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dest := filepath.Join(dir, "sub", "dest.bin")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := MoveAtomic(src, dest); err != nil {
		t.Fatalf("MoveAtomic() error = %v", err)
	}
	if FileExists(src) {
		t.Error("source should be gone after move")
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "payload" {
		t.Errorf("destination content = %q, err = %v", data, err)
	}
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatalf("CopyFileVerified() error = %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 10 {
		t.Errorf("copied size = %d, want 10", info.Size())
	}
}

func TestCopyFileVerifiedMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFileVerified(filepath.Join(dir, "absent"), filepath.Join(dir, "out")); err == nil {
		t.Error("CopyFileVerified(missing source) should fail")
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	if FileExists(dir) {
		t.Error("FileExists should be false for directories")
	}
	path := filepath.Join(dir, "f")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Error("FileExists should be true for regular files")
	}
}
