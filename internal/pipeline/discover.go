package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultImageExtensions is the recognized image extension allow-list
// (lowercase, without separator). Matching is case-insensitive and exact;
// no MIME sniffing happens at this stage.
var DefaultImageExtensions = []string{
	"jpg", "jpeg", "png", "gif", "apng", "tiff", "tif", "heic", "jp2",
	"webp", "exr", "pam", "pgm", "ppm", "pfm", "pgx",
}

// Discover walks root recursively, collects every file path, and returns
// them sorted lexicographically for deterministic processing order. A
// missing root fails with the underlying path error.
func Discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// FilterImages returns the subsequence of files whose extension matches one
// of exts, ignoring case. Order-preserving; each path appears at most once
// in the result regardless of how many allow-list entries it matches.
func FilterImages(files []string, exts []string) []string {
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = true
	}

	var result []string
	for _, file := range files {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file), "."))
		if ext != "" && allowed[ext] {
			result = append(result, file)
		}
	}
	return result
}
