package display

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
)

// ProgressLine renders search progress. On a terminal the line is redrawn
// in place with a spinner and bar; otherwise each update is its own line.
type ProgressLine struct {
	w     io.Writer
	tty   bool
	bar   progress.Model
	spin  spinner.Spinner
	frame int
	start time.Time
	now   func() time.Time

	lastPercent int
	lastLabel   string
	updates     int
}

// NewProgressLine creates a progress renderer for w
func NewProgressLine(w io.Writer) *ProgressLine {
	return &ProgressLine{
		w:           w,
		tty:         IsTerminal(w),
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage()),
		spin:        spinner.Dot,
		start:       time.Now(),
		now:         time.Now,
		lastPercent: -1,
	}
}

// Progress draws one update
func (p *ProgressLine) Progress(percent, found int, label string) {
	p.updates++
	elapsed := p.now().Sub(p.start).Round(time.Second)

	if !p.tty {
		// Plain output repeats nothing when the server reports no change
		if percent == p.lastPercent && label == p.lastLabel {
			return
		}
		p.lastPercent = percent
		p.lastLabel = label
		fmt.Fprintf(p.w, "[>] %3d%% | %d found | %s | %s\n", percent, found, label, elapsed)
		return
	}

	icon := p.spin.Frames[p.frame%len(p.spin.Frames)]
	p.frame++
	if label == "complete" {
		icon = "✓"
	}
	fmt.Fprintf(p.w, "\r\033[K%s Searching across platforms... %s %3d%% • %d found • %s",
		icon, p.bar.ViewAs(float64(percent)/100), percent, found, elapsed)
}

// Done finishes the line
func (p *ProgressLine) Done() {
	if p.tty && p.updates > 0 {
		fmt.Fprintln(p.w)
	}
}
