package workspace

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/kayz/codeloom/internal/artifact"
)

func TestWriteAllCreatesParents(t *testing.T) {
	root := t.TempDir()

	m := artifact.NewMap()
	m.Set("shop/app/main.py", "print('hi')")
	m.Set("shop/README.md", "# shop")

	n, err := WriteAll(root, m)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 files written, got %d", n)
	}

	data, err := os.ReadFile(filepath.Join(root, "shop", "app", "main.py"))
	if err != nil {
		t.Fatalf("written file missing: %v", err)
	}
	if string(data) != "print('hi')" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestWriteAllRejectsEscapingPaths(t *testing.T) {
	root := t.TempDir()

	m := artifact.NewMap()
	m.Set("../outside.py", "x = 1")

	if _, err := WriteAll(root, m); err == nil {
		t.Fatalf("expected traversal rejection")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(root), "outside.py")); err == nil {
		t.Fatalf("file escaped the output root")
	}
}

func TestBuildZipRoundTrip(t *testing.T) {
	m := artifact.NewMap()
	m.Set("a/b.py", "b = 2")
	m.Set("README.md", "# demo")

	data, err := BuildZip(m)
	if err != nil {
		t.Fatalf("zip failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("invalid archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(zr.File))
	}
	if zr.File[0].Name != "a/b.py" {
		t.Fatalf("entry order lost: %s", zr.File[0].Name)
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	content, _ := io.ReadAll(rc)
	rc.Close()
	if string(content) != "b = 2" {
		t.Fatalf("unexpected entry content: %q", content)
	}
}
