package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into behavior, display, and utility. Boolean overrides
// (e.g. --no-color) are applied after Parse so Config defaults hold unless set.

import (
	"flag"
	"fmt"
	"os"
)

// ParseFlags parses os.Args into cfg. On --help or --version it prints and
// exits. On error it returns non-nil (e.g. unknown flag, missing positional
// arg). version is shown in --version and help output.
func ParseFlags(cfg *Config, version string) error {
	fs := flag.NewFlagSet("jxlmaster", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs, version) }

	// Override flags: we capture bools then apply to cfg after Parse,
	// so that defaults from DefaultConfig() hold unless the user passes the flag.
	var ov overrideFlags

	defineBehaviorFlags(fs, cfg, &ov)
	defineDisplayFlags(fs, cfg, &ov)
	defineUtilityFlags(fs, &ov)

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	applyOverrideFlags(cfg, &ov)

	if ov.showHelp {
		printUsage(fs, version)
		os.Exit(0)
	}
	if ov.showVersion {
		fmt.Fprintln(os.Stdout, "jxlmaster v"+version)
		os.Exit(0)
	}

	return parsePositionalArgs(fs, cfg)
}

// overrideFlags holds boolean flags that are applied after Parse.
// These either invert a default (e.g. noColor -> ColorNever) or trigger exit
// (showHelp, showVersion).
type overrideFlags struct {
	screen      bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineBehaviorFlags registers --work-dir and -s/--screen.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config, ov *overrideFlags) {
	fs.StringVar(&cfg.WorkDir, "work-dir", cfg.WorkDir, "Base directory for per-file staging")
	fs.StringVar(&cfg.WorkDir, "w", cfg.WorkDir, "Same as --work-dir")
	fs.BoolVar(&ov.screen, "screen", false, "Full-screen status panel instead of line output")
	fs.BoolVar(&ov.screen, "s", false, "Same as --screen")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, ov *overrideFlags) {
	fs.BoolVar(&ov.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&ov.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run tool diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(&cfg.LogFile, "log", "", "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", "", "Same as --log")
}

// defineUtilityFlags registers --version and --help (exit after printing).
func defineUtilityFlags(fs *flag.FlagSet, ov *overrideFlags) {
	fs.BoolVar(&ov.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&ov.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&ov.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&ov.showHelp, "h", false, "Same as --help")
}

// applyOverrideFlags copies override flag values into cfg.
func applyOverrideFlags(cfg *Config, ov *overrideFlags) {
	if ov.screen {
		cfg.Reporter = ReporterScreen
	}
	if ov.noColor {
		cfg.ColorMode = ColorNever
	} else if ov.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets RootDir from the single positional arg when not in
// CheckOnly mode.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if cfg.CheckOnly {
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("need exactly one media directory argument")
	}
	cfg.RootDir = NormalizeDirArg(args[0])
	return nil
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(fs *flag.FlagSet, version string) {
	const col1 = 28 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "jxlmaster v" + version + " — lossless JPEG XL batch converter"},
		{"", ""},
		{"  jxlmaster [OPTIONS] <media_dir>", ""},
		{"", ""},
		{"Behavior", ""},
		{"  -w, --work-dir <dir>", "Base directory for per-file staging (default: temp dir)"},
		{"  -s, --screen", "Full-screen status panel instead of line output"},
		{"", ""},
		{"Display & logging", ""},
		{"  --color / --no-color", "Force or disable colored logs (default: auto)"},
		{"  -v, --verbose", "Verbose output"},
		{"  -l, --log <file>", "Append logs to file"},
		{"", ""},
		{"Utility", ""},
		{"  -c, --check", "Run tool diagnostics (magick, exiftool, cjxl) and exit"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	out := fs.Output()
	for _, l := range lines {
		if l.desc == "" {
			fmt.Fprintln(out, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(out, l.desc)
			continue
		}
		fmt.Fprintf(out, "%-*s%s\n", col1, l.flags, l.desc)
	}
}
