// Package jxl wraps the cjxl reference encoder with a fixed, reproducible
// lossless settings profile.
package jxl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrNoOutput is returned when cjxl ran but the expected .jxl file does not
// exist afterward. Output existence, not the exit status, is the success
// signal for an encode.
var ErrNoOutput = errors.New("cjxl produced no output file")

// Fixed encode profile: mathematically lossless, maximum effort, JPEG data
// passed through losslessly, and no silent fallback to a re-encode when
// reconstruction data cannot be kept.
var encodeArgs = []string{
	"--distance", "0",
	"--effort", "10",
	"--lossless_jpeg", "1",
	"--allow_jpeg_reconstruction", "0",
}

// Result holds the outcome of one cjxl invocation. ExitErr carries a non-zero
// exit status for warning-level logging; it does not mean the encode failed
// as long as OutputPath exists.
type Result struct {
	OutputPath string
	Stderr     string
	ExitErr    error
}

// Encode converts path to a sibling ".jxl"-suffixed output using the fixed
// lossless profile. The returned error is non-nil only when the output file
// is missing afterward; an abnormal exit with output present is reported via
// Result.ExitErr instead.
func Encode(ctx context.Context, path string) (Result, error) {
	out := path + ".jxl"
	args := append([]string{path, out}, encodeArgs...)
	cmd := exec.CommandContext(ctx, "cjxl", args...)

	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	res := Result{
		OutputPath: out,
		Stderr:     strings.TrimSpace(stderr.String()),
		ExitErr:    runErr,
	}

	if _, err := os.Stat(out); err != nil {
		if runErr != nil {
			return res, fmt.Errorf("cjxl %q: %w: %v", path, ErrNoOutput, runErr)
		}
		return res, fmt.Errorf("cjxl %q: %w", path, ErrNoOutput)
	}
	return res, nil
}

// supportedInputs is the set of file extensions the encoder accepts directly
// (lowercase, without separator). Anything else needs an intermediate PNG
// normalization pass first.
var supportedInputs = map[string]bool{
	"exr":  true,
	"gif":  true,
	"jpg":  true,
	"jpeg": true,
	"pam":  true,
	"pgm":  true,
	"ppm":  true,
	"pfm":  true,
	"pgx":  true,
	"png":  true,
	"apng": true,
	"jxl":  true,
}

// IsSupportedInput reports whether a file extension (with or without leading
// dot, any case) is accepted by the encoder without prior normalization.
func IsSupportedInput(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return supportedInputs[ext]
}
