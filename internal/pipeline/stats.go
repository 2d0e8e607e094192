package pipeline

import "sync"

// SizeLedger is the process-wide running total of bytes saved across
// completed jobs. Deltas are permanent for the run; skipped jobs never
// record. Record is serialized so a future parallel driver can share one
// ledger without changes.
type SizeLedger struct {
	mu    sync.Mutex
	saved int64
	files int
}

// Record adds before minus after to the running total and bumps the file count.
func (l *SizeLedger) Record(before, after int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.saved += before - after
	l.files++
}

// Snapshot returns the running total and the number of recorded files.
func (l *SizeLedger) Snapshot() (saved int64, files int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.saved, l.files
}

// RunStats aggregates counters and byte totals for the final summary.
type RunStats struct {
	Files      int   // All files discovered.
	Images     int   // Image files found.
	Converted  int   // Jobs that reached Finalized.
	Skipped    int   // Jobs that ended Skipped.
	Saved      int64 // Ledger total at run end.
	SizeBefore int64 // Tree size before the run.
	SizeAfter  int64 // Tree size after the run.
}
