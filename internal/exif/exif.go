// Package exif wraps exiftool for metadata transfer and title stamping.
// Failures here are warning-level for the pipeline: a converted image with
// incomplete metadata is still a converted image.
package exif

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// CopyAll transfers every metadata tag from src to dst in place
// (EXIF, XMP, IPTC, everything exiftool can map between the two formats).
func CopyAll(ctx context.Context, src, dst string) error {
	return run(ctx,
		"-overwrite_original", "-m",
		"-TagsFromFile", src,
		"-all:all>all:all",
		dst,
	)
}

// SetTitle overwrites the Title tag of path with the file's base name.
func SetTitle(ctx context.Context, path string) error {
	return run(ctx,
		"-overwrite_original", "-m",
		"-Title="+filepath.Base(path),
		path,
	)
}

func run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "exiftool", args...)

	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("exiftool: %w (%s)", err, detail)
		}
		return fmt.Errorf("exiftool: %w", err)
	}
	return nil
}
