// Package render formats bulk patch reports for terminals and machines.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/hookpatch/pkg/bulkpatch"
	"github.com/Sumatoshi-tech/hookpatch/pkg/safeconv"
	"github.com/Sumatoshi-tech/hookpatch/pkg/textutil"
)

// Output formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// File states reported by the status view.
const (
	StateMissing   = "missing"
	StatePatched   = "patched"
	StatePending   = "pending"
	StateNoAnchors = "no anchors"
	StateBinary    = "binary"
	StateError     = "error"
	StateCancelled = "cancelled"
)

// diffContext is the number of unchanged lines kept around each change.
const diffContext = 2

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Renderer writes human-readable views of a report.
type Renderer struct {
	w       io.Writer
	added   *color.Color
	removed *color.Color
	header  *color.Color
}

// New creates a Renderer writing to w. Plain disables ANSI colors.
func New(w io.Writer, plain bool) *Renderer {
	r := &Renderer{
		w:       w,
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
		header:  color.New(color.FgCyan, color.Bold),
	}

	if plain {
		r.added.DisableColor()
		r.removed.DisableColor()
		r.header.DisableColor()
	}

	return r
}

// Summary prints one row per file and a totals footer.
func (r *Renderer) Summary(rep bulkpatch.Report) {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"File", "Status", "Import", "Call", "Written"})

	for _, res := range rep.Results {
		written := "-"
		if res.Written {
			written = humanize.Bytes(safeconv.MustIntToUint64(res.BytesWritten))
		}

		tbl.AppendRow(table.Row{
			res.Name,
			string(res.Status),
			yesNo(res.Outcome.ImportInserted),
			yesNo(res.Outcome.CallInserted),
			written,
		})
	}

	tbl.AppendFooter(table.Row{totals(rep)})

	fmt.Fprintln(r.w, tbl.Render())
}

// Status prints the patch state of every file without the write columns.
func (r *Renderer) Status(rep bulkpatch.Report) {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"File", "State", "Lines", "Size"})

	for _, res := range rep.Results {
		lines, size := "-", "-"
		if res.Status == bulkpatch.StatusUpdated || res.Status == bulkpatch.StatusUnchanged {
			lines = strconv.Itoa(textutil.CountLines(res.Before))
			size = humanize.Bytes(safeconv.MustIntToUint64(len(res.Before)))
		}

		tbl.AppendRow(table.Row{res.Name, State(res), lines, size})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d files", len(rep.Results))})

	fmt.Fprintln(r.w, tbl.Render())
}

// State classifies a dry-run result for the status view. Content with a NUL
// byte is flagged as binary; apply still patches it.
func State(res bulkpatch.Result) string {
	switch {
	case res.Status == bulkpatch.StatusSkipped:
		return StateMissing
	case res.Status == bulkpatch.StatusCancelled:
		return StateCancelled
	case res.Status == bulkpatch.StatusFailed:
		return StateError
	case textutil.IsBinary(res.Before):
		return StateBinary
	case res.Outcome.AlreadyPatched:
		return StatePatched
	case res.Outcome.Changed():
		return StatePending
	default:
		return StateNoAnchors
	}
}

// Diffs prints a line diff for every result whose content changed.
func (r *Renderer) Diffs(rep bulkpatch.Report) {
	for _, res := range rep.Results {
		if res.Before != res.After {
			r.Diff(res.Name, res.Before, res.After)
		}
	}
}

// Diff prints a line-oriented diff between before and after.
func (r *Renderer) Diff(name, before, after string) {
	r.header.Fprintf(r.w, "--- %s\n+++ %s\n", name, name)

	for _, d := range lineDiff(before, after) {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			for _, line := range splitLines(d.Text) {
				r.added.Fprintf(r.w, "+%s\n", line)
			}
		case diffmatchpatch.DiffDelete:
			for _, line := range splitLines(d.Text) {
				r.removed.Fprintf(r.w, "-%s\n", line)
			}
		case diffmatchpatch.DiffEqual:
			r.writeContext(splitLines(d.Text))
		}
	}
}

func (r *Renderer) writeContext(lines []string) {
	if len(lines) <= 2*diffContext {
		for _, line := range lines {
			fmt.Fprintf(r.w, " %s\n", line)
		}

		return
	}

	for _, line := range lines[:diffContext] {
		fmt.Fprintf(r.w, " %s\n", line)
	}

	fmt.Fprintf(r.w, "@@ %d unchanged lines @@\n", len(lines)-2*diffContext)

	for _, line := range lines[len(lines)-diffContext:] {
		fmt.Fprintf(r.w, " %s\n", line)
	}
}

// Write encodes rep in the requested machine format.
func Write(w io.Writer, format string, rep bulkpatch.Report) error {
	switch format {
	case FormatYAML:
		return YAML(w, rep)
	case FormatJSON:
		return JSON(w, rep)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// YAML writes rep as a YAML document.
func YAML(w io.Writer, rep bulkpatch.Report) error {
	data, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("yaml write: %w", err)
	}

	return nil
}

// JSON writes rep as indented JSON.
func JSON(w io.Writer, rep bulkpatch.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(rep)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

func lineDiff(before, after string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()

	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)

	return dmp.DiffCharsToLines(diffs, lines)
}

// splitLines splits text on newlines, dropping the empty tail after a final newline.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false

	return tbl
}

func totals(rep bulkpatch.Report) string {
	counts := rep.Counts()

	return fmt.Sprintf("Total: %d files, %d updated, %d unchanged, %d skipped, %d failed, %d cancelled",
		len(rep.Results),
		counts[bulkpatch.StatusUpdated],
		counts[bulkpatch.StatusUnchanged],
		counts[bulkpatch.StatusSkipped],
		counts[bulkpatch.StatusFailed],
		counts[bulkpatch.StatusCancelled],
	)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
