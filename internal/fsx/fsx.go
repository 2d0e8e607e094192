// Package fsx provides filesystem helpers for relocating files across
// directories, including cross-device moves (the staging directory commonly
// lives on a different filesystem than the media tree).
package fsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// Move renames src to dst, falling back to copy+remove when the rename fails
// with EXDEV (src and dst on different filesystems). dst's parent directory
// must exist.
func Move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isEXDEV(err) {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("cross-device move %q -> %q: %w", src, dst, err)
	}
	if err := os.Remove(src); err != nil {
		// The copy succeeded; a stale source is a warning-level condition
		// for callers, not a failed move.
		return &SourceRemovalError{Src: src, Err: err}
	}
	return nil
}

// SourceRemovalError reports that a cross-device move copied the file but
// could not remove the original. The destination is valid.
type SourceRemovalError struct {
	Src string
	Err error
}

func (e *SourceRemovalError) Error() string {
	return fmt.Sprintf("moved but could not remove source %q: %v", e.Src, e.Err)
}

func (e *SourceRemovalError) Unwrap() error { return e.Err }

// IsSourceRemoval reports whether err is a SourceRemovalError.
func IsSourceRemoval(err error) bool {
	var e *SourceRemovalError
	return errors.As(err, &e)
}

// UniqueDest returns dst if nothing exists there, otherwise the first
// " - dupN" variant (inserted before the extension) that is free.
func UniqueDest(dst string) string {
	if _, err := os.Lstat(dst); err != nil {
		return dst
	}
	dir := filepath.Dir(dst)
	base := filepath.Base(dst)
	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]

	for counter := 1; ; counter++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s", stem, counter, ext))
		if _, err := os.Lstat(candidate); err != nil {
			return candidate
		}
	}
}

func isEXDEV(err error) bool {
	if errors.Is(err, syscall.EXDEV) {
		return true
	}
	var le *os.LinkError
	return errors.As(err, &le) && errors.Is(le.Err, syscall.EXDEV)
}

// copyFile copies src to dst preserving the source's permission bits.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
