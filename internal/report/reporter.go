// Package report decouples the conversion pipeline from any progress
// rendering surface. The pipeline emits events; a Reporter decides how to
// show them. Two implementations exist: a plain line-per-event console
// reporter and a full-screen status panel. The pipeline never knows which
// one it is talking to.
package report

// Kind tags a pipeline event.
type Kind int

const (
	// RunStarted carries the discovery summary: Path is the root,
	// Files/Images the discovered counts, SizeBefore the tree size.
	RunStarted Kind = iota
	// FileStarted marks the beginning of one file's conversion.
	FileStarted
	// FileRecovered reports a corrupt file successfully rewritten.
	FileRecovered
	// FileSkipped reports a file given up on; Message holds the reason and
	// Path the working location where the file was left.
	FileSkipped
	// FileConverted reports one finished file; Saved is its byte delta,
	// TotalSaved the running ledger total.
	FileConverted
	// Warning reports a non-fatal condition that does not change job state.
	Warning
	// RunFinished carries the final summary.
	RunFinished
)

// Event is one pipeline notification. Only the fields relevant to the Kind
// are populated.
type Event struct {
	Kind    Kind
	Path    string
	Message string

	Index int // 1-based position of the current file.
	Total int // Image files in the run.

	Files  int // All files discovered (RunStarted).
	Images int // Image files found (RunStarted).

	Saved      int64 // Byte delta of one file (FileConverted).
	TotalSaved int64 // Running ledger total (FileConverted, RunFinished).

	SizeBefore int64 // Tree size before the run (RunStarted, RunFinished).
	SizeAfter  int64 // Tree size after the run (RunFinished).

	Converted int // Finished files (RunFinished).
	Skipped   int // Skipped files (RunFinished).
}

// Reporter receives pipeline events. Implementations must tolerate events
// arriving in any order after RunStarted and must not block: a slow terminal
// stalls the whole batch.
type Reporter interface {
	Report(ev Event)
	// Close releases any terminal state (e.g. leaves the alternate screen).
	Close() error
}
