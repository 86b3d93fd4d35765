package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"cloudsweep/internal/scan"
)

// ScanProgress renders batch progress as a terminal bar. Update has the
// scan.ProgressFunc signature.
type ScanProgress struct {
	bar  *progressbar.ProgressBar
	out  io.Writer
	last string
}

// NewScanProgress creates a bar for total tasks writing to out (stderr if nil)
func NewScanProgress(out io.Writer, total int) *ScanProgress {
	if out == nil {
		out = os.Stderr
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("Scanning..."),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &ScanProgress{bar: bar, out: out}
}

// Update records one finished task
func (p *ScanProgress) Update(update scan.Progress) {
	status := color.GreenString("Finished")
	if update.Err != nil {
		status = color.RedString("Failed")
	}
	p.last = fmt.Sprintf("%s: %s (%d/%d)", status, update.Scanner, update.Completed, update.Total)
	p.bar.Describe(p.last)
	_ = p.bar.Set(update.Completed)
}

// Finish completes the bar and moves to a fresh line
func (p *ScanProgress) Finish() {
	_ = p.bar.Finish()
	fmt.Fprintln(p.out)
}
