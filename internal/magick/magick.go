// Package magick wraps the ImageMagick CLI for corruption probing, true
// format identification, and auto-orienting re-encodes. All invocations use
// argument vectors, never shell strings, so paths with whitespace or quoting
// characters need no escaping.
package magick

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoOutput is returned when a re-encode ran but the expected output file
// does not exist afterward. Distinct from the process itself failing.
var ErrNoOutput = errors.New("magick produced no output file")

// Inspect probes path with strict decode warnings enabled. It reports
// corrupt=true when identify exits with status 1 (decode warning or error).
// Any other abnormal termination is an adapter error, not a corruption
// verdict.
func Inspect(ctx context.Context, path string) (corrupt bool, err error) {
	cmd := exec.CommandContext(ctx, "magick", "identify", "-regard-warnings", path)

	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, fmt.Errorf("magick identify %q: %w (%s)", path, runErr, firstLine(stderr.String()))
}

// Identify returns the sniffed format identifier for path, lowercased
// (e.g. "jpeg", "png"). The on-disk extension plays no part; this is the
// authoritative ground truth for what the file actually contains. For
// multi-frame images only the first frame's format is used.
func Identify(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "magick", "identify", "-format", "%m\\n", path)

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("magick identify -format %q: %w", path, err)
	}
	tag := firstLine(string(out))
	if tag == "" {
		return "", fmt.Errorf("magick identify %q: empty format tag", path)
	}
	return strings.ToLower(tag), nil
}

// Normalize re-encodes path to a sibling ".PNG"-suffixed output,
// auto-orienting per embedded orientation metadata. Used when the final
// encoder does not accept the source format directly. The input file is left
// in place; deletion is the caller's step.
func Normalize(ctx context.Context, path string) (string, error) {
	out := path + ".PNG"
	if err := autoOrient(ctx, path, out); err != nil {
		return "", err
	}
	return out, nil
}

// Recover re-encodes a corrupt image onto a sibling path carrying the same
// extension again (photo.jpg -> photo.jpg.jpg), auto-orienting in the
// process. ImageMagick tolerates many truncation and stream errors that
// strict decoding rejects, so the rewritten copy is usually clean.
func Recover(ctx context.Context, path string) (string, error) {
	out := path + filepath.Ext(path)
	if err := autoOrient(ctx, path, out); err != nil {
		return "", err
	}
	return out, nil
}

// autoOrient runs "magick SRC -auto-orient DST". A process failure and a
// missing output file are reported as two distinct conditions.
func autoOrient(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, "magick", src, "-auto-orient", dst)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("magick %q -> %q: %w (%s)", src, dst, err, firstLine(stderr.String()))
	}
	if _, err := os.Stat(dst); err != nil {
		return fmt.Errorf("magick %q -> %q: %w", src, dst, ErrNoOutput)
	}
	return nil
}

// firstLine trims the output to its first non-empty line.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
