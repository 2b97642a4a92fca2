// Package fsutil holds the file copy helpers shared by pack, deploy and import.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CopyFile copies src to dst, creating parent directories and keeping the
// source mode and modification time. An existing dst is overwritten.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer func() { _ = srcFile.Close() }()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm()|0o200)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}

	if _, err = io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return fmt.Errorf("copy file contents: %w", err)
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("close destination file: %w", err)
	}

	_ = os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime())
	return nil
}

// CopyDir recursively merges src into dst, overwriting files that exist in
// both. Symlinks are skipped. Returns the number of files copied.
func CopyDir(src, dst string) (int, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat source directory: %w", err)
	}
	if !srcInfo.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", src)
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return 0, fmt.Errorf("create destination directory: %w", err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, fmt.Errorf("read source directory: %w", err)
	}

	count := 0
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			continue
		case entry.IsDir():
			n, err := CopyDir(srcPath, dstPath)
			count += n
			if err != nil {
				return count, err
			}
		default:
			if err := CopyFile(srcPath, dstPath); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

// Copy copies a file or a directory tree from src to dst.
func Copy(src, dst string) (int, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return CopyDir(src, dst)
	}
	if err := CopyFile(src, dst); err != nil {
		return 0, err
	}
	return 1, nil
}

// SafeJoin joins a slash-separated relative path onto base and fails if the
// result would leave base.
func SafeJoin(base, rel string) (string, error) {
	rel = strings.ReplaceAll(rel, `\`, "/")
	if rel == "" || strings.HasPrefix(rel, "/") || filepath.IsAbs(filepath.FromSlash(rel)) || filepath.VolumeName(filepath.FromSlash(rel)) != "" {
		return "", fmt.Errorf("invalid relative path %q", rel)
	}
	p := filepath.Join(base, filepath.FromSlash(rel))
	r, err := filepath.Rel(base, p)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes %s", rel, base)
	}
	return p, nil
}

// IsDir reports whether path is an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// RemoveEmptyDirs removes empty directories from dir up to, but not including, stop.
func RemoveEmptyDirs(dir, stop string) {
	for dir != stop && strings.HasPrefix(dir, stop) {
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// CountFiles returns the number of regular files under root.
func CountFiles(root string) int {
	n := 0
	_ = filepath.WalkDir(root, func(_ string, d os.DirEntry, err error) error {
		if err == nil && d.Type().IsRegular() {
			n++
		}
		return nil
	})
	return n
}
