// Package config holds runtime configuration: defaults, CLI flag parsing, and
// validation.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// --- Enum types for validated string fields ---

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// ReporterMode selects the progress rendering surface.
type ReporterMode string

const (
	ReporterConsole ReporterMode = "console" // Plain line-per-event output (default).
	ReporterScreen  ReporterMode = "screen"  // Full-screen status panel.
)

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then mutated by [ParseFlags] before being passed (by pointer) to packages
// that need it.
type Config struct {
	// Paths.
	RootDir string // Positional arg: directory tree to convert.
	WorkDir string // Base for per-job working directories. Default: <tmp>/jxlmaster.

	// Display and logging.
	Reporter  ReporterMode // Default: "console".
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Run --check diagnostics and exit.
}

// DefaultConfig returns a Config with all defaults set. Used as the base
// before [ParseFlags] applies CLI overrides.
func DefaultConfig() Config {
	return Config{
		WorkDir:   filepath.Join(os.TempDir(), "jxlmaster"),
		Reporter:  ReporterConsole,
		Verbose:   false,
		ColorMode: ColorAuto,
		CheckOnly: false,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks that enum fields hold valid values. When not in CheckOnly
// mode, it also requires a non-empty root directory argument.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	switch c.Reporter {
	case ReporterConsole, ReporterScreen:
		// valid
	default:
		return errors.New("invalid reporter (use 'console' or 'screen')")
	}

	if c.WorkDir == "" {
		return errors.New("work directory must not be empty")
	}

	if c.CheckOnly {
		return nil
	}
	if c.RootDir == "" {
		return errors.New("need a media directory argument")
	}
	return nil
}

// ValidatePaths ensures the resolved work directory is not inside (or equal
// to) the resolved root directory. Files are staged under the work directory
// while tools run; staging them inside the tree being converted would let a
// restarted run rediscover half-processed intermediates. Both arguments must
// be absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(rootAbs, workAbs string) error {
	sep := string(filepath.Separator)
	if workAbs == rootAbs || strings.HasPrefix(workAbs+sep, rootAbs+sep) {
		return errors.New("work directory must not be inside the media directory")
	}
	return nil
}
