// Command jxlmaster is the entrypoint for the JxlMaster batch converter CLI.
// It parses flags, validates config and paths, and either runs the system
// check (--check) or the conversion pipeline over a media directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/backmassage/jxlmaster/internal/check"
	"github.com/backmassage/jxlmaster/internal/config"
	"github.com/backmassage/jxlmaster/internal/display"
	"github.com/backmassage/jxlmaster/internal/logging"
	"github.com/backmassage/jxlmaster/internal/pipeline"
	"github.com/backmassage/jxlmaster/internal/report"
)

// version and commit are set at build time via -ldflags (e.g. Makefile).
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 1. Load config from defaults and CLI flags; exit on parse or validation error.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, version); err != nil {
		fmt.Fprintf(os.Stderr, "jxlmaster: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "jxlmaster: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jxlmaster: %v\n", err)
		return 1
	}
	defer log.Close()

	display.PrintBanner()

	// 2. If user asked for system check, run it and exit.
	if cfg.CheckOnly {
		if !check.RunCheck(log) {
			return 1
		}
		return 0
	}

	// 3. Resolve and validate paths: the media directory must exist, the
	// staging directory is created if needed and must not sit inside it.
	rootAbs, err := absPath(cfg.RootDir)
	if err != nil {
		log.Error("Media directory not found: %s", cfg.RootDir)
		return 1
	}
	if err := os.MkdirAll(cfg.WorkDir, 0755); err != nil {
		log.Error("Cannot create staging directory: %s", cfg.WorkDir)
		return 1
	}
	workAbs, err := absPath(cfg.WorkDir)
	if err != nil {
		log.Error("Cannot resolve staging path: %s", cfg.WorkDir)
		return 1
	}
	if err := cfg.ValidatePaths(rootAbs, workAbs); err != nil {
		log.Error("%v", err)
		log.Error("Choose a staging path outside: %s", cfg.RootDir)
		return 1
	}
	cfg.RootDir = rootAbs
	cfg.WorkDir = workAbs

	log.Info("=== JxlMaster v%s ===", version)
	log.Info("Media:   %s", cfg.RootDir)
	log.Info("Staging: %s", cfg.WorkDir)
	log.Info("")

	// 4. Ensure magick/exiftool/cjxl are available; fail fast otherwise.
	if err := check.CheckDeps(); err != nil {
		log.Error("%v", err)
		return 1
	}

	// 5. Run the pipeline until done or interrupted. Ctrl-C finishes the
	// file in flight and stops before the next one.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rep report.Reporter
	if cfg.Reporter == config.ReporterScreen {
		rep = report.NewScreen(os.Stdout)
	} else {
		rep = report.NewConsole(log)
	}
	defer rep.Close()

	if _, err := pipeline.Run(ctx, &cfg, log, rep, nil); err != nil {
		rep.Close()
		log.Error("%v", err)
		return 1
	}
	return 0
}

// absPath returns the absolute path with symlinks resolved, for comparing
// the media directory vs staging hierarchy.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
