package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/backmassage/jxlmaster/internal/display"
	"github.com/backmassage/jxlmaster/internal/term"
)

const (
	altScreenEnter = "\033[?1049h\033[?25l" // Alternate screen, hide cursor.
	altScreenLeave = "\033[?25h\033[?1049l"
	clearHome      = "\033[2J\033[H"

	barWidth     = 40
	recentEvents = 6
)

// Screen renders a full-screen status panel, repainted on every event. It
// keeps the same event contract as Console; the pipeline cannot tell them
// apart.
type Screen struct {
	w io.Writer

	mu         sync.Mutex
	root       string
	total      int
	done       int
	converted  int
	skipped    int
	totalSaved int64
	sizeBefore int64
	current    string
	recent     []string
	finished   bool
	finalLine  string
}

// NewScreen returns a panel reporter writing ANSI sequences to w
// (normally os.Stdout). It enters the alternate screen immediately; call
// Close to restore the terminal.
func NewScreen(w io.Writer) *Screen {
	s := &Screen{w: w}
	fmt.Fprint(w, altScreenEnter)
	s.paint()
	return s
}

func (s *Screen) Report(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case RunStarted:
		s.root = ev.Path
		s.total = ev.Images
		s.sizeBefore = ev.SizeBefore
		s.push(fmt.Sprintf("found %d files, %d images", ev.Files, ev.Images))

	case FileStarted:
		s.current = ev.Path

	case FileRecovered:
		s.push("recovered: " + ev.Path)

	case FileSkipped:
		s.done++
		s.skipped++
		s.push(fmt.Sprintf("skipped (%s): %s", ev.Message, ev.Path))

	case FileConverted:
		s.done++
		s.converted++
		s.totalSaved = ev.TotalSaved
		s.push(fmt.Sprintf("converted: %s (%s)", ev.Path, display.FormatBytesWithSign(-ev.Saved)))

	case Warning:
		s.push("warning: " + ev.Message)

	case RunFinished:
		s.finished = true
		s.current = ""
		s.totalSaved = ev.TotalSaved
		s.finalLine = fmt.Sprintf("done: %d converted, %d skipped, %s / %s",
			ev.Converted, ev.Skipped,
			display.FormatBytes(ev.SizeBefore), display.FormatBytes(ev.SizeAfter))
	}

	s.paint()
}

// Close leaves the alternate screen and restores the cursor.
func (s *Screen) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprint(s.w, altScreenLeave)
	return err
}

// push appends a line to the recent-events ring.
func (s *Screen) push(line string) {
	s.recent = append(s.recent, line)
	if len(s.recent) > recentEvents {
		s.recent = s.recent[len(s.recent)-recentEvents:]
	}
}

// paint redraws the whole panel. Caller holds s.mu.
func (s *Screen) paint() {
	var b strings.Builder
	b.WriteString(clearHome)

	fmt.Fprintf(&b, "%sjxlmaster%s  %s\n\n", term.Magenta, term.NC, s.root)
	fmt.Fprintf(&b, "  %s  %d/%d\n\n", s.bar(), s.done, s.total)
	fmt.Fprintf(&b, "  converted %s%d%s   skipped %s%d%s   saved %s %s\n\n",
		term.Green, s.converted, term.NC,
		term.Yellow, s.skipped, term.NC,
		display.FormatBytes(s.totalSaved), savingsIndicator(s.totalSaved))

	if s.current != "" {
		fmt.Fprintf(&b, "  current: %s\n\n", s.current)
	} else if s.finished {
		fmt.Fprintf(&b, "  %s%s%s\n\n", term.Green, s.finalLine, term.NC)
	} else {
		b.WriteString("\n\n")
	}

	for _, line := range s.recent {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	fmt.Fprint(s.w, b.String())
}

// bar renders the progress gauge.
func (s *Screen) bar() string {
	filled := 0
	if s.total > 0 {
		filled = s.done * barWidth / s.total
		if filled > barWidth {
			filled = barWidth
		}
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]"
}
