package pipeline

// JobState tags a ConversionJob's position in the per-file state machine.
// The order is forced and linear; RecoveryAttempted and FormatNormalized are
// conditional, Skipped and Finalized are terminal.
type JobState int

const (
	StateDiscovered JobState = iota
	StateRelocated
	StateCorruptionChecked
	StateRecoveryAttempted
	StateExtensionRestored
	StateFormatNormalized
	StateEncoded
	StateFinalized
	StateSkipped
)

var jobStateNames = map[JobState]string{
	StateDiscovered:        "discovered",
	StateRelocated:         "relocated",
	StateCorruptionChecked: "corruption-checked",
	StateRecoveryAttempted: "recovery-attempted",
	StateExtensionRestored: "extension-restored",
	StateFormatNormalized:  "format-normalized",
	StateEncoded:           "encoded",
	StateFinalized:         "finalized",
	StateSkipped:           "skipped",
}

func (s JobState) String() string {
	if name, ok := jobStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// ConversionJob is one file's journey through the pipeline. A fresh value is
// constructed per file and threaded through each state-transition function;
// jobs are never shared across iterations. WorkPath tracks the file as it is
// renamed and re-encoded inside the per-job working directory.
type ConversionJob struct {
	OriginalPath string
	WorkDir      string // Per-job staging directory, unique to this job.
	WorkPath     string // Current on-disk location; always an existing file until terminal.
	State        JobState
	BytesBefore  int64
	BytesAfter   int64
	FailReason   string // Set only when State == StateSkipped.
}

func newJob(path string) ConversionJob {
	return ConversionJob{
		OriginalPath: path,
		WorkPath:     path,
		State:        StateDiscovered,
	}
}

// skipped returns a terminal copy of the job carrying the failure reason.
func (j ConversionJob) skipped(reason string) ConversionJob {
	j.State = StateSkipped
	j.FailReason = reason
	return j
}
