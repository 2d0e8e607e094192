package report

import (
	"github.com/backmassage/jxlmaster/internal/display"
)

// Logger is the minimal logging interface needed by Console. Defined here
// (rather than importing the logging package) so reporters stay testable
// with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// Console renders events as plain log lines, one per event. It is the
// default reporter and the only sensible one when output is piped.
type Console struct {
	log Logger
}

// NewConsole returns a line-oriented reporter writing through log.
func NewConsole(log Logger) *Console {
	return &Console{log: log}
}

func (c *Console) Report(ev Event) {
	switch ev.Kind {
	case RunStarted:
		c.log.Info("Given path: %s", ev.Path)
		c.log.Info("Total files: %d", ev.Files)
		c.log.Info("Supported image files: %d", ev.Images)
		c.log.Info("Directory size: %s", display.FormatBytes(ev.SizeBefore))

	case FileStarted:
		c.log.Info("[%d/%d] %s", ev.Index, ev.Total, ev.Path)

	case FileRecovered:
		c.log.Success("Recovery successful: %s", ev.Path)

	case FileSkipped:
		c.log.Warn("Skipped (%s), file left at: %s", ev.Message, ev.Path)

	case FileConverted:
		c.log.Success("Converted %d/%d: %s (%s)",
			ev.Index, ev.Total, ev.Path, display.FormatBytesWithSign(-ev.Saved))
		c.log.Info("Space savings in total: %s %s",
			display.FormatBytes(ev.TotalSaved), savingsIndicator(ev.TotalSaved))

	case Warning:
		c.log.Warn("%s", ev.Message)

	case RunFinished:
		c.log.Info("==============================")
		c.log.Info("Done: %d converted, %d skipped", ev.Converted, ev.Skipped)
		c.log.Info("Directory size before / after: %s / %s",
			display.FormatBytes(ev.SizeBefore), display.FormatBytes(ev.SizeAfter))
		if ev.TotalSaved >= 0 {
			c.log.Success("Total space saved: %s", display.FormatBytes(ev.TotalSaved))
		} else {
			c.log.Warn("Total space saved: %s (output is larger overall)",
				display.FormatBytes(ev.TotalSaved))
		}
	}
}

// Close is a no-op; the console owns no terminal state.
func (c *Console) Close() error { return nil }

// savingsIndicator mirrors the running gain/loss wording of the progress line.
func savingsIndicator(totalSaved int64) string {
	if totalSaved >= 0 {
		return "(size is smaller than before)"
	}
	return "(size is bigger than before)"
}
