// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for magick, exiftool, and cjxl.
package check

import (
	"errors"
	"os/exec"
	"strings"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrMagickNotFound   = errors.New("magick not found on PATH (install ImageMagick 7+)")
	ErrExiftoolNotFound = errors.New("exiftool not found on PATH")
	ErrCjxlNotFound     = errors.New("cjxl not found on PATH (install libjxl tools)")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the interactive --check flow: prints availability and version
// of magick, exiftool, and cjxl. This is informational only; it does not stop
// on failure. Returns false when any required tool is missing.
func RunCheck(log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkTool(log, "magick", "magick", "--version")
	ok = checkTool(log, "exiftool", "exiftool", "-ver") && ok
	ok = checkTool(log, "cjxl", "cjxl", "--version") && ok
	return ok
}

// checkTool verifies a binary is on PATH and logs the first line of its
// version output.
func checkTool(log Logger, label, bin string, versionArgs ...string) bool {
	if _, err := exec.LookPath(bin); err != nil {
		log.Error("%s not found", label)
		return false
	}
	cmd := exec.Command(bin, versionArgs...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		log.Warn("%s found but version query failed: %v", label, err)
		return true
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("%s: %s", label, firstLine)
	return true
}

// CheckDeps is the pre-pipeline validation: it verifies that magick,
// exiftool, and cjxl are on PATH. Returns a sentinel error on the first
// missing tool.
func CheckDeps() error {
	if _, err := exec.LookPath("magick"); err != nil {
		return ErrMagickNotFound
	}
	if _, err := exec.LookPath("exiftool"); err != nil {
		return ErrExiftoolNotFound
	}
	if _, err := exec.LookPath("cjxl"); err != nil {
		return ErrCjxlNotFound
	}
	return nil
}
