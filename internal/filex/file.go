// Package filex wraps the local filesystem operations the router needs:
// flat directory listing, cross-device moves and the staged-file rename
// convention.
package filex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Entry describes one regular file found by ListFiles.
type Entry struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ListFiles returns the regular files directly inside dir, in directory
// order. Subdirectories are not descended into.
func ListFiles(dir string) ([]Entry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var out []Entry
	for _, d := range dirents {
		if d.IsDir() {
			continue
		}
		info, err := d.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", d.Name(), err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		out = append(out, Entry{
			Path:    filepath.Join(dir, d.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return out, nil
}

// EnsureDir creates dir (and parents) if needed.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// MoveDir relocates every file from src into dst, renaming each file with
// StagedName so names derived from different cameras cannot collide. A plain
// rename is tried first; when src and dst live on different filesystems
// (device to local disk, the usual case) each file is copied through a
// synced temp file and the source is removed afterwards.
func MoveDir(src, dst string) error {
	if err := EnsureDir(dst); err != nil {
		return err
	}

	files, err := ListFiles(src)
	if err != nil {
		return err
	}

	for _, f := range files {
		target := filepath.Join(dst, StagedName(f.Path, f.ModTime))
		if err := moveFile(f.Path, target); err != nil {
			return fmt.Errorf("move %s: %w", f.Path, err)
		}
	}

	// Leftover subdirectories are not touched; remove src only if empty.
	if empty, err := dirEmpty(src); err == nil && empty {
		_ = os.Remove(src)
	}
	return nil
}

// StagedName derives the staged filename from the file's modification time,
// keeping the original extension. A numeric suffix is appended by moveFile
// when two files share a timestamp.
func StagedName(path string, modTime time.Time) string {
	return modTime.Format("2006-01-02 15-04-05") + filepath.Ext(path)
}

// RemoveDir deletes dir and everything below it.
func RemoveDir(dir string) error {
	return os.RemoveAll(dir)
}

func moveFile(src, dst string) error {
	dst = dedupe(dst)

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyThroughTemp(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// dedupe appends " (n)" before the extension until the name is free.
func dedupe(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path
	}
	ext := filepath.Ext(path)
	stem := path[:len(path)-len(ext)]
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
}

// copyThroughTemp copies src to dst via a synced temp file and an atomic
// rename, so a crash never leaves a half-written file under the final name.
func copyThroughTemp(src, dst string) error {
	tmp := dst + ".tmp"

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(out, in)
	syncErr := out.Sync()
	closeErr := out.Close()

	for _, err := range []error{copyErr, syncErr, closeErr} {
		if err != nil {
			_ = os.Remove(tmp)
			return err
		}
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func dirEmpty(dir string) (bool, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(dirents) == 0, nil
}
