package bulkpatch

import (
	"io"

	"github.com/fatih/color"
)

// Reporter receives the operator transcript of a run.
type Reporter interface {
	// FileDone is called once per file, in list order.
	FileDone(res Result)
	// RunDone is called once after the last file.
	RunDone(rep Report)
}

// ConsoleReporter prints one line per processed or failed file and a final
// completion line. Missing files print nothing.
type ConsoleReporter struct {
	w      io.Writer
	ok     *color.Color
	warn   *color.Color
	failed *color.Color
}

// NewConsoleReporter writes the transcript to w. Plain disables ANSI colors.
func NewConsoleReporter(w io.Writer, plain bool) *ConsoleReporter {
	cr := &ConsoleReporter{
		w:      w,
		ok:     color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		failed: color.New(color.FgRed),
	}

	if plain {
		cr.ok.DisableColor()
		cr.warn.DisableColor()
		cr.failed.DisableColor()
	}

	return cr
}

// FileDone prints the per-file line.
func (cr *ConsoleReporter) FileDone(res Result) {
	switch res.Status {
	case StatusFailed:
		cr.failed.Fprintf(cr.w, "error updating %s: %v\n", res.Name, res.Err)
	case StatusUpdated, StatusUnchanged:
		switch {
		case !res.Written && res.Status == StatusUpdated:
			cr.warn.Fprintf(cr.w, "would update %s\n", res.Name)
		case !res.Written:
			cr.warn.Fprintf(cr.w, "unchanged %s\n", res.Name)
		default:
			cr.ok.Fprintf(cr.w, "updated %s\n", res.Name)
		}
	case StatusSkipped, StatusCancelled:
	}
}

// RunDone prints the completion line.
func (cr *ConsoleReporter) RunDone(rep Report) {
	if rep.Cancelled() {
		cr.warn.Fprintln(cr.w, "run cancelled before all files were processed")

		return
	}

	cr.ok.Fprintln(cr.w, "all files processed")
}

type nopReporter struct{}

func (nopReporter) FileDone(Result) {}
func (nopReporter) RunDone(Report)  {}
