// Package planner orders the conversion work queue so quick wins surface
// early: small JPEGs encode fastest (cjxl passes their DCT coefficients
// through losslessly), so a long batch shows visible progress within seconds
// instead of grinding through large scans first.
package planner

import (
	"path/filepath"
	"strings"
)

// SmallFileThreshold separates "small" from "large" files. The boundary
// itself counts as small.
const SmallFileThreshold = 1_000_000

// FileEntry is the immutable identity of a candidate file at discovery time.
// The pipeline creates a fresh entry whenever it renames or moves the
// underlying file; entries are never mutated.
type FileEntry struct {
	Path string
	Size int64
	Ext  string // Lowercase, without separator.
}

// NewFileEntry builds a FileEntry from a path and its size at discovery time.
func NewFileEntry(path string, size int64) FileEntry {
	return FileEntry{
		Path: path,
		Size: size,
		Ext:  strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")),
	}
}

// Bucket priority order. Lower converts first.
const (
	bucketSmallJpeg = iota
	bucketLargeJpeg
	bucketSmallOther
	bucketLargeOther
	bucketCount
)

// Prioritize reorders entries into four buckets: small JPEGs, large JPEGs,
// small others, large others, concatenated in that fixed order. The partition
// is stable: entries with equal classification keep their discovery order.
// The result is always an exact permutation of the input.
func Prioritize(entries []FileEntry) []FileEntry {
	buckets := make([][]FileEntry, bucketCount)
	for _, e := range entries {
		b := bucketOf(e)
		buckets[b] = append(buckets[b], e)
	}

	out := make([]FileEntry, 0, len(entries))
	for _, b := range buckets {
		out = append(out, b...)
	}
	return out
}

func bucketOf(e FileEntry) int {
	small := e.Size <= SmallFileThreshold
	switch {
	case isJpegExt(e.Ext) && small:
		return bucketSmallJpeg
	case isJpegExt(e.Ext):
		return bucketLargeJpeg
	case small:
		return bucketSmallOther
	default:
		return bucketLargeOther
	}
}

func isJpegExt(ext string) bool {
	return ext == "jpg" || ext == "jpeg"
}
