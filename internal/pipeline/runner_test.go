package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/jxlmaster/internal/config"
	"github.com/backmassage/jxlmaster/internal/jxl"
	"github.com/backmassage/jxlmaster/internal/logging"
	"github.com/backmassage/jxlmaster/internal/planner"
	"github.com/backmassage/jxlmaster/internal/report"
)

// fakeTools simulates the external binaries with real filesystem side
// effects so the state machine can be exercised without magick, exiftool,
// or cjxl installed. Behavior maps are keyed by the stem of the original
// file name (everything before the first dot), which survives the
// extension-append chain the pipeline performs.
type fakeTools struct {
	corrupt     map[string]bool
	inspectErr  map[string]error
	recoverErr  map[string]error
	formats     map[string]string // stem → identified tag (default "jpeg")
	encodeErr   map[string]error  // encode produces no output
	exitErr     map[string]error  // abnormal exit with output present
	metaErr     error
	titleErr    error
	encodedSize int // bytes per encoded output (default 16)
	calls       []string
}

func stem(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

func (f *fakeTools) log(op, path string) {
	f.calls = append(f.calls, op+" "+filepath.Base(path))
}

func (f *fakeTools) called(prefix string) bool {
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func (f *fakeTools) Inspect(_ context.Context, path string) (bool, error) {
	f.log("inspect", path)
	if err := f.inspectErr[stem(path)]; err != nil {
		return false, err
	}
	return f.corrupt[stem(path)], nil
}

func (f *fakeTools) Identify(_ context.Context, path string) (string, error) {
	f.log("identify", path)
	if tag, ok := f.formats[stem(path)]; ok {
		return tag, nil
	}
	return "jpeg", nil
}

func (f *fakeTools) Recover(_ context.Context, path string) (string, error) {
	f.log("recover", path)
	if err := f.recoverErr[stem(path)]; err != nil {
		return "", err
	}
	out := path + filepath.Ext(path)
	if err := os.WriteFile(out, []byte("recovered"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func (f *fakeTools) Normalize(_ context.Context, path string) (string, error) {
	f.log("normalize", path)
	out := path + ".PNG"
	if err := os.WriteFile(out, []byte("normalized"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func (f *fakeTools) Encode(_ context.Context, path string) (jxl.Result, error) {
	f.log("encode", path)
	if err := f.encodeErr[stem(path)]; err != nil {
		return jxl.Result{}, err
	}
	size := f.encodedSize
	if size == 0 {
		size = 16
	}
	out := path + ".jxl"
	if err := os.WriteFile(out, bytes.Repeat([]byte("j"), size), 0o644); err != nil {
		return jxl.Result{}, err
	}
	return jxl.Result{OutputPath: out, ExitErr: f.exitErr[stem(path)]}, nil
}

func (f *fakeTools) CopyMetadata(_ context.Context, src, dst string) error {
	f.log("copymeta", src)
	return f.metaErr
}

func (f *fakeTools) SetTitle(_ context.Context, path string) error {
	f.log("settitle", path)
	return f.titleErr
}

// recReporter records events for assertions.
type recReporter struct {
	events []report.Event
}

func (r *recReporter) Report(ev report.Event) { r.events = append(r.events, ev) }
func (r *recReporter) Close() error           { return nil }

func (r *recReporter) ofKind(k report.Kind) []report.Event {
	var out []report.Event
	for _, ev := range r.events {
		if ev.Kind == k {
			out = append(out, ev)
		}
	}
	return out
}

func newTestRunner(t *testing.T, root string, tools *fakeTools) (*Runner, *recReporter) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.RootDir = root
	cfg.WorkDir = t.TempDir()
	cfg.ColorMode = config.ColorNever
	log, err := logging.NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { log.Close() })
	rep := &recReporter{}
	return NewRunner(&cfg, log, rep, tools), rep
}

func writeSized(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, bytes.Repeat([]byte("p"), size), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_EndToEnd_TwoJpegs(t *testing.T) {
	root := t.TempDir()
	writeSized(t, root, "big.jpg", 500*1024)
	writeSized(t, root, "small.jpg", 50*1024)

	tools := &fakeTools{}
	r, rep := newTestRunner(t, root, tools)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.Files != 2 || stats.Images != 2 {
		t.Errorf("discovery counts = (%d, %d), want (2, 2)", stats.Files, stats.Images)
	}
	if stats.Converted != 2 || stats.Skipped != 0 {
		t.Errorf("outcome counts = (%d, %d), want (2, 0)", stats.Converted, stats.Skipped)
	}

	// The smaller JPEG converts first.
	started := rep.ofKind(report.FileStarted)
	if len(started) != 2 {
		t.Fatalf("got %d FileStarted events, want 2", len(started))
	}
	if filepath.Base(started[0].Path) != "small.jpg" {
		t.Errorf("first file = %s, want small.jpg", started[0].Path)
	}

	// Originals are gone; .jxl outputs sit in the original directory.
	for _, name := range []string{"big.jpg", "small.jpg"} {
		if _, err := os.Stat(filepath.Join(root, name)); !os.IsNotExist(err) {
			t.Errorf("original %s still exists", name)
		}
	}
	for _, name := range []string{"big.jpg.jpeg.jxl", "small.jpg.jpeg.jxl"} {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			t.Errorf("output %s missing: %v", name, err)
		}
	}

	wantSaved := int64(500*1024-16) + int64(50*1024-16)
	if stats.Saved != wantSaved {
		t.Errorf("Saved = %d, want %d", stats.Saved, wantSaved)
	}
	if stats.SizeBefore != 550*1024 {
		t.Errorf("SizeBefore = %d, want %d", stats.SizeBefore, 550*1024)
	}
	if stats.SizeAfter != 32 {
		t.Errorf("SizeAfter = %d, want 32", stats.SizeAfter)
	}
}

func TestRun_RecoveryFailure_Skips(t *testing.T) {
	root := t.TempDir()
	writeSized(t, root, "bad.jpg", 1000)

	tools := &fakeTools{
		corrupt:    map[string]bool{"bad": true},
		recoverErr: map[string]error{"bad": errors.New("decode exploded")},
	}
	r, rep := newTestRunner(t, root, tools)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.Skipped != 1 || stats.Converted != 0 {
		t.Errorf("outcome counts = (%d, %d), want (0 converted, 1 skipped)", stats.Converted, stats.Skipped)
	}
	if stats.Saved != 0 {
		t.Errorf("Saved = %d, want 0 (skipped jobs never record)", stats.Saved)
	}

	// The file stays at its relocated path, untouched.
	matches, _ := filepath.Glob(filepath.Join(r.cfg.WorkDir, "*", "bad.jpg"))
	if len(matches) != 1 {
		t.Errorf("relocated file not found under work dir: %v", matches)
	}
	if files, _ := os.ReadDir(root); len(files) != 0 {
		t.Errorf("root should be empty, has %d entries", len(files))
	}

	skips := rep.ofKind(report.FileSkipped)
	if len(skips) != 1 || !strings.Contains(skips[0].Message, "recovery failed") {
		t.Errorf("unexpected skip events: %+v", skips)
	}
}

func TestRun_RecoverySuccess_Converts(t *testing.T) {
	root := t.TempDir()
	writeSized(t, root, "bad.jpg", 1000)

	tools := &fakeTools{corrupt: map[string]bool{"bad": true}}
	r, rep := newTestRunner(t, root, tools)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Converted != 1 {
		t.Fatalf("Converted = %d, want 1", stats.Converted)
	}
	if !tools.called("recover bad.jpg") {
		t.Error("recovery was not attempted")
	}
	if len(rep.ofKind(report.FileRecovered)) != 1 {
		t.Error("missing FileRecovered event")
	}
	// bad.jpg -> recovered bad.jpg.jpg -> restored .jpeg -> encoded .jxl
	if _, err := os.Stat(filepath.Join(root, "bad.jpg.jpg.jpeg.jxl")); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestRun_NormalizeOnlyWhenUnsupported(t *testing.T) {
	root := t.TempDir()
	writeSized(t, root, "direct.png", 1000)
	writeSized(t, root, "bitmap.png", 1000)

	tools := &fakeTools{formats: map[string]string{
		"direct": "png",
		"bitmap": "bmp",
	}}
	r, _ := newTestRunner(t, root, tools)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Converted != 2 {
		t.Fatalf("Converted = %d, want 2", stats.Converted)
	}

	if !tools.called("normalize bitmap.png.bmp") {
		t.Errorf("bmp file skipped normalization; calls: %v", tools.calls)
	}
	if tools.called("normalize direct") {
		t.Errorf("png file should skip normalization; calls: %v", tools.calls)
	}
	if _, err := os.Stat(filepath.Join(root, "bitmap.png.bmp.PNG.jxl")); err != nil {
		t.Errorf("normalized output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "direct.png.png.jxl")); err != nil {
		t.Errorf("direct output missing: %v", err)
	}
}

func TestProcessFile_TrueFormatOverridesExtension(t *testing.T) {
	root := t.TempDir()
	path := writeSized(t, root, "misnamed.jpg.bak", 1000)

	tools := &fakeTools{formats: map[string]string{"misnamed": "jpeg"}}
	r, _ := newTestRunner(t, root, tools)

	job, err := r.processFile(context.Background(), planner.NewFileEntry(path, 1000), 1, 1)
	if err != nil {
		t.Fatalf("processFile: %v", err)
	}
	if job.State != StateFinalized {
		t.Fatalf("state = %s, want finalized", job.State)
	}

	if !tools.called("encode misnamed.jpg.bak.jpeg") {
		t.Errorf("encode did not see the restored extension; calls: %v", tools.calls)
	}
	if _, err := os.Stat(filepath.Join(root, "misnamed.jpg.bak.jpeg.jxl")); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestRun_InspectErrorSkipsFile(t *testing.T) {
	root := t.TempDir()
	writeSized(t, root, "odd.jpg", 1000)

	tools := &fakeTools{inspectErr: map[string]error{"odd": errors.New("identify crashed")}}
	r, rep := newTestRunner(t, root, tools)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run should not abort on a per-file inspection error: %v", err)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
	skips := rep.ofKind(report.FileSkipped)
	if len(skips) != 1 || !strings.Contains(skips[0].Message, "inspection failed") {
		t.Errorf("unexpected skip events: %+v", skips)
	}
}

func TestRun_EncodeNoOutputSkipsFile(t *testing.T) {
	root := t.TempDir()
	writeSized(t, root, "stub.jpg", 1000)

	tools := &fakeTools{encodeErr: map[string]error{"stub": jxl.ErrNoOutput}}
	r, _ := newTestRunner(t, root, tools)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Skipped != 1 || stats.Converted != 0 {
		t.Errorf("outcome = (%d converted, %d skipped), want (0, 1)", stats.Converted, stats.Skipped)
	}

	// File remains at its restored working path.
	matches, _ := filepath.Glob(filepath.Join(r.cfg.WorkDir, "*", "stub.jpg.jpeg"))
	if len(matches) != 1 {
		t.Errorf("restored file not found under work dir: %v", matches)
	}
}

func TestRun_EncoderExitErrorWithOutputIsWarning(t *testing.T) {
	root := t.TempDir()
	writeSized(t, root, "noisy.jpg", 1000)

	tools := &fakeTools{exitErr: map[string]error{"noisy": errors.New("exit status 3")}}
	r, rep := newTestRunner(t, root, tools)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Converted != 1 {
		t.Errorf("Converted = %d, want 1 (output exists, exit status is advisory)", stats.Converted)
	}

	found := false
	for _, ev := range rep.ofKind(report.Warning) {
		if strings.Contains(ev.Message, "exited abnormally") {
			found = true
		}
	}
	if !found {
		t.Error("missing abnormal-exit warning")
	}
}

func TestRun_MetadataFailureIsWarningOnly(t *testing.T) {
	root := t.TempDir()
	writeSized(t, root, "tagless.jpg", 1000)

	tools := &fakeTools{metaErr: errors.New("exiftool unhappy")}
	r, rep := newTestRunner(t, root, tools)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Converted != 1 {
		t.Errorf("Converted = %d, want 1", stats.Converted)
	}

	found := false
	for _, ev := range rep.ofKind(report.Warning) {
		if strings.Contains(ev.Message, "metadata transfer failed") {
			found = true
		}
	}
	if !found {
		t.Error("missing metadata warning")
	}
}

func TestRun_DestinationCollisionGetsDupSuffix(t *testing.T) {
	root := t.TempDir()
	writeSized(t, root, "twin.jpg", 1000)
	writeSized(t, root, "twin.jpg.jpeg.jxl", 10) // already-converted leftover

	tools := &fakeTools{}
	r, _ := newTestRunner(t, root, tools)

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "twin.jpg.jpeg - dup1.jxl")); err != nil {
		t.Errorf("dup-suffixed output missing: %v", err)
	}
}

func TestRun_MissingRoot(t *testing.T) {
	tools := &fakeTools{}
	r, _ := newTestRunner(t, filepath.Join(t.TempDir(), "nope"), tools)

	if _, err := r.Run(context.Background()); err == nil {
		t.Error("Run with missing root succeeded")
	}
}

func TestRun_CancelledContextStopsBetweenFiles(t *testing.T) {
	root := t.TempDir()
	writeSized(t, root, "a.jpg", 100)
	writeSized(t, root, "b.jpg", 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tools := &fakeTools{}
	r, rep := newTestRunner(t, root, tools)

	stats, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Converted != 0 || stats.Skipped != 0 {
		t.Errorf("cancelled run still processed files: %+v", stats)
	}
	found := false
	for _, ev := range rep.ofKind(report.Warning) {
		if strings.Contains(ev.Message, "interrupted") {
			found = true
		}
	}
	if !found {
		t.Error("missing interruption warning")
	}
}
