// Package pipeline orchestrates file discovery, image classification,
// prioritized per-file conversion, and batch summary accounting.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/backmassage/jxlmaster/internal/config"
	"github.com/backmassage/jxlmaster/internal/fsx"
	"github.com/backmassage/jxlmaster/internal/jxl"
	"github.com/backmassage/jxlmaster/internal/logging"
	"github.com/backmassage/jxlmaster/internal/planner"
	"github.com/backmassage/jxlmaster/internal/report"
)

// Runner drives one batch run. Jobs are processed strictly sequentially;
// each file reaches a terminal state before the next begins.
type Runner struct {
	cfg    *config.Config
	log    *logging.Logger
	rep    report.Reporter
	tools  Tools
	ledger SizeLedger
}

// NewRunner builds a Runner. A nil tools falls back to the exec-backed
// default toolset.
func NewRunner(cfg *config.Config, log *logging.Logger, rep report.Reporter, tools Tools) *Runner {
	if tools == nil {
		tools = DefaultTools()
	}
	return &Runner{cfg: cfg, log: log, rep: rep, tools: tools}
}

// Run is a convenience wrapper around [NewRunner] and [Runner.Run].
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, rep report.Reporter, tools Tools) (RunStats, error) {
	return NewRunner(cfg, log, rep, tools).Run(ctx)
}

// Run is the top-level batch entry point: discover -> classify -> prioritize
// -> convert each file -> summarize. The returned error is non-nil only for
// fatal conditions (missing root, failed relocation); per-file problems end
// in Skipped and the batch continues.
func (r *Runner) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats

	files, err := Discover(r.cfg.RootDir)
	if err != nil {
		return stats, fmt.Errorf("scan %q: %w", r.cfg.RootDir, err)
	}
	stats.Files = len(files)

	stats.SizeBefore, err = sumSizes(files)
	if err != nil {
		return stats, err
	}

	images := FilterImages(files, DefaultImageExtensions)
	stats.Images = len(images)

	entries := make([]planner.FileEntry, 0, len(images))
	for _, path := range images {
		fi, err := os.Stat(path)
		if err != nil {
			return stats, fmt.Errorf("size of %q: %w", path, err)
		}
		entries = append(entries, planner.NewFileEntry(path, fi.Size()))
	}
	entries = planner.Prioritize(entries)

	r.rep.Report(report.Event{
		Kind:       report.RunStarted,
		Path:       r.cfg.RootDir,
		Files:      stats.Files,
		Images:     stats.Images,
		SizeBefore: stats.SizeBefore,
	})

	for i, entry := range entries {
		if ctx.Err() != nil {
			r.rep.Report(report.Event{Kind: report.Warning, Message: "interrupted, stopping before next file"})
			break
		}

		job, err := r.processFile(ctx, entry, i+1, len(entries))
		if err != nil {
			return stats, err
		}
		switch job.State {
		case StateFinalized:
			stats.Converted++
		case StateSkipped:
			stats.Skipped++
		}
	}

	stats.Saved, _ = r.ledger.Snapshot()

	// The tree changed under us; re-scan for the after size. Failure here
	// only degrades the summary, never the conversions already done.
	if after, err := Discover(r.cfg.RootDir); err == nil {
		if size, err := sumSizes(after); err == nil {
			stats.SizeAfter = size
		}
	}

	r.rep.Report(report.Event{
		Kind:       report.RunFinished,
		Converted:  stats.Converted,
		Skipped:    stats.Skipped,
		TotalSaved: stats.Saved,
		SizeBefore: stats.SizeBefore,
		SizeAfter:  stats.SizeAfter,
	})
	return stats, nil
}

// processFile runs one file through the state machine:
// relocate -> corruption check (+ recovery) -> extension restore ->
// normalize (conditional) -> encode -> finalize. A returned error is fatal
// for the whole batch; per-file failures come back as State == StateSkipped.
func (r *Runner) processFile(ctx context.Context, entry planner.FileEntry, idx, total int) (ConversionJob, error) {
	r.rep.Report(report.Event{Kind: report.FileStarted, Path: entry.Path, Index: idx, Total: total})

	job := newJob(entry.Path)

	job, err := r.relocate(job)
	if err != nil {
		return job, err
	}

	stages := []func(context.Context, ConversionJob) (ConversionJob, error){
		r.checkCorruption,
		r.restoreExtension,
		r.normalizeFormat,
		r.encode,
	}
	for _, stage := range stages {
		job, err = stage(ctx, job)
		if err != nil {
			return job, err
		}
		if job.State == StateSkipped {
			r.rep.Report(report.Event{Kind: report.FileSkipped, Path: job.WorkPath, Message: job.FailReason})
			return job, nil
		}
	}

	return r.finalize(job, idx, total)
}

// relocate moves the file into a fresh, uniquely named working directory so
// downstream tool invocations see a path free of surprises from the source
// tree, and so concurrent runs can never collide on staging names.
func (r *Runner) relocate(job ConversionJob) (ConversionJob, error) {
	workDir := filepath.Join(r.cfg.WorkDir, uuid.NewString())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return job, fmt.Errorf("create staging directory %q: %w", workDir, err)
	}

	workPath := filepath.Join(workDir, filepath.Base(job.OriginalPath))
	if err := fsx.Move(job.OriginalPath, workPath); err != nil {
		if !fsx.IsSourceRemoval(err) {
			return job, fmt.Errorf("relocate %q: %w", job.OriginalPath, err)
		}
		r.rep.Report(report.Event{Kind: report.Warning, Message: err.Error()})
	}

	fi, err := os.Stat(workPath)
	if err != nil {
		return job, fmt.Errorf("size of %q: %w", workPath, err)
	}

	job.WorkDir = workDir
	job.WorkPath = workPath
	job.BytesBefore = fi.Size()
	job.State = StateRelocated
	return job, nil
}

// checkCorruption probes the file with strict decode warnings and, when it
// is corrupt, attempts recovery exactly once. Any failure along the way ends
// the job in Skipped; the file stays at its relocated path, untouched.
func (r *Runner) checkCorruption(ctx context.Context, job ConversionJob) (ConversionJob, error) {
	corrupt, err := r.tools.Inspect(ctx, job.WorkPath)
	if err != nil {
		return job.skipped("inspection failed: " + err.Error()), nil
	}
	job.State = StateCorruptionChecked
	if !corrupt {
		return job, nil
	}

	r.rep.Report(report.Event{Kind: report.Warning, Message: "file is corrupted, attempting recovery: " + job.WorkPath})

	recovered, err := r.tools.Recover(ctx, job.WorkPath)
	if err != nil {
		return job.skipped("recovery failed: " + err.Error()), nil
	}
	r.removeStale(job.WorkPath)
	job.WorkPath = recovered
	job.State = StateRecoveryAttempted
	r.rep.Report(report.Event{Kind: report.FileRecovered, Path: job.WorkPath})
	return job, nil
}

// restoreExtension renames the working file to carry the tool-identified
// true extension, overriding whatever extension it had on disk. The encode
// step needs a syntactically matching filename, and the normalization
// decision needs the real format, so this always runs before both.
func (r *Runner) restoreExtension(ctx context.Context, job ConversionJob) (ConversionJob, error) {
	tag, err := r.tools.Identify(ctx, job.WorkPath)
	if err != nil {
		return job.skipped("format identification failed: " + err.Error()), nil
	}

	restored := job.WorkPath + "." + tag
	if err := os.Rename(job.WorkPath, restored); err != nil {
		return job.skipped("extension restore failed: " + err.Error()), nil
	}
	job.WorkPath = restored
	job.State = StateExtensionRestored
	return job, nil
}

// normalizeFormat converts to an intermediate PNG only when the restored
// extension is not in the encoder's supported input set.
func (r *Runner) normalizeFormat(ctx context.Context, job ConversionJob) (ConversionJob, error) {
	if jxl.IsSupportedInput(filepath.Ext(job.WorkPath)) {
		return job, nil
	}

	normalized, err := r.tools.Normalize(ctx, job.WorkPath)
	if err != nil {
		return job.skipped("normalization failed: " + err.Error()), nil
	}
	r.removeStale(job.WorkPath)
	job.WorkPath = normalized
	job.State = StateFormatNormalized
	return job, nil
}

// encode runs the lossless encode, then transfers metadata from the
// pre-encode working file, stamps the title, and deletes the stale input.
// Metadata and deletion problems are warnings; they never fail the job.
func (r *Runner) encode(ctx context.Context, job ConversionJob) (ConversionJob, error) {
	res, err := r.tools.Encode(ctx, job.WorkPath)
	if err != nil {
		return job.skipped("encode failed: " + err.Error()), nil
	}
	if res.ExitErr != nil {
		r.rep.Report(report.Event{Kind: report.Warning, Message: fmt.Sprintf("cjxl exited abnormally but produced output for %s: %v", job.WorkPath, res.ExitErr)})
		r.log.Debug(r.cfg.Verbose, "cjxl stderr: %s", res.Stderr)
	}

	if err := r.tools.CopyMetadata(ctx, job.WorkPath, res.OutputPath); err != nil {
		r.rep.Report(report.Event{Kind: report.Warning, Message: "metadata transfer failed: " + err.Error()})
	}
	if err := r.tools.SetTitle(ctx, res.OutputPath); err != nil {
		r.rep.Report(report.Event{Kind: report.Warning, Message: "title stamp failed: " + err.Error()})
	}
	r.removeStale(job.WorkPath)

	job.WorkPath = res.OutputPath
	job.State = StateEncoded
	return job, nil
}

// finalize moves the encoded file back next to its original location and
// records the byte delta. A failed move-back is fatal: the batch must not
// continue while converted output is stranded in the staging area.
func (r *Runner) finalize(job ConversionJob, idx, total int) (ConversionJob, error) {
	fi, err := os.Stat(job.WorkPath)
	if err != nil {
		return job, fmt.Errorf("size of %q: %w", job.WorkPath, err)
	}
	job.BytesAfter = fi.Size()

	dest := fsx.UniqueDest(filepath.Join(filepath.Dir(job.OriginalPath), filepath.Base(job.WorkPath)))
	if err := fsx.Move(job.WorkPath, dest); err != nil {
		if !fsx.IsSourceRemoval(err) {
			return job, fmt.Errorf("move back %q: %w", job.WorkPath, err)
		}
		r.rep.Report(report.Event{Kind: report.Warning, Message: err.Error()})
	}

	r.ledger.Record(job.BytesBefore, job.BytesAfter)
	job.WorkPath = dest
	job.State = StateFinalized

	if err := os.Remove(job.WorkDir); err != nil {
		r.log.Debug(r.cfg.Verbose, "could not remove staging directory %s: %v", job.WorkDir, err)
	}

	saved, _ := r.ledger.Snapshot()
	r.rep.Report(report.Event{
		Kind:       report.FileConverted,
		Path:       dest,
		Index:      idx,
		Total:      total,
		Saved:      job.BytesBefore - job.BytesAfter,
		TotalSaved: saved,
	})
	return job, nil
}

// removeStale deletes a superseded intermediate file. Failure is reported
// but never changes job state.
func (r *Runner) removeStale(path string) {
	if err := os.Remove(path); err != nil {
		r.rep.Report(report.Event{Kind: report.Warning, Message: "could not delete stale file: " + err.Error()})
	}
}

// sumSizes totals the sizes of the given files. A vanished file is fatal,
// matching the size-query contract.
func sumSizes(files []string) (int64, error) {
	var total int64
	for _, path := range files {
		fi, err := os.Stat(path)
		if err != nil {
			return 0, fmt.Errorf("size of %q: %w", path, err)
		}
		total += fi.Size()
	}
	return total, nil
}
