// Package workspace persists artifact maps: writing the generated files
// under an output root and packaging them as ZIP archives. The pipeline
// core only produces in-memory maps; everything here is plumbing around
// its output.
package workspace

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kayz/codeloom/internal/artifact"
)

// WriteAll writes every artifact under root, creating parent directories
// as needed. Paths that would escape root are rejected rather than
// silently skipped. Returns the number of files written.
func WriteAll(root string, artifacts *artifact.Map) (int, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output root: %w", err)
	}

	written := 0
	for _, relPath := range artifacts.Paths() {
		content, _ := artifacts.Get(relPath)

		full, err := securePath(root, relPath)
		if err != nil {
			return written, err
		}
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return written, fmt.Errorf("failed to create parent for %s: %w", relPath, err)
		}
		if err := writeFileAtomic(full, []byte(content), 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", relPath, err)
		}
		written++
	}
	return written, nil
}

// BuildZip packages the artifact map as a ZIP archive, entries in map order.
func BuildZip(artifacts *artifact.Map) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, relPath := range artifacts.Paths() {
		content, _ := artifacts.Get(relPath)
		w, err := zw.Create(relPath)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to add %s: %w", relPath, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to write %s: %w", relPath, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// securePath joins root and relPath, refusing anything that escapes root.
func securePath(root, relPath string) (string, error) {
	if filepath.IsAbs(relPath) {
		return "", fmt.Errorf("absolute artifact path rejected: %s", relPath)
	}
	full := filepath.Join(root, filepath.FromSlash(relPath))
	cleanRoot := filepath.Clean(root)
	if full != cleanRoot && !strings.HasPrefix(full, cleanRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("artifact path escapes output root: %s", relPath)
	}
	return full, nil
}

// writeFileAtomic writes data via a temp file + rename so a crashed
// write never leaves a truncated artifact behind.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".codeloom-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	success = true
	return nil
}
