// Package bulkpatch applies a patch.Fragments insertion to an ordered list of
// files under one base directory, one file at a time.
//
// A failure on one file never stops the run: it is recorded in the Report
// and the next file is processed. Files that do not exist are skipped
// without being reported as errors.
package bulkpatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/hookpatch/pkg/observability"
	"github.com/Sumatoshi-tech/hookpatch/pkg/patch"
)

// ErrNotUTF8 is recorded for files whose content is not valid UTF-8.
var ErrNotUTF8 = errors.New("content is not valid UTF-8")

// Options selects the files and the patch for a run.
type Options struct {
	// BaseDir is joined with every file name.
	BaseDir string

	// FileNames are processed in order.
	FileNames []string

	// Fragments is the insertion applied to each file.
	Fragments patch.Fragments

	// DryRun computes every result without writing anything.
	DryRun bool

	// SkipUnchanged avoids rewriting files whose content did not change.
	// By default every readable file is written back, patched or not.
	SkipUnchanged bool
}

// Option customises a Patcher.
type Option func(*Patcher)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Patcher) { p.logger = logger }
}

// WithReporter sets the transcript sink.
func WithReporter(r Reporter) Option {
	return func(p *Patcher) { p.reporter = r }
}

// WithTracer sets the tracer used for run and per-file spans.
func WithTracer(tr trace.Tracer) Option {
	return func(p *Patcher) { p.tracer = tr }
}

// WithMetrics sets the per-file metric instruments.
func WithMetrics(m *observability.PatchMetrics) Option {
	return func(p *Patcher) { p.metrics = m }
}

// Patcher runs one bulk patch over a filesystem.
type Patcher struct {
	fs       afero.Fs
	opts     Options
	logger   *slog.Logger
	reporter Reporter
	tracer   trace.Tracer
	metrics  *observability.PatchMetrics
	now      func() time.Time
}

// New creates a Patcher over fsys.
func New(fsys afero.Fs, opts Options, options ...Option) *Patcher {
	p := &Patcher{
		fs:       fsys,
		opts:     opts,
		logger:   slog.New(slog.DiscardHandler),
		reporter: nopReporter{},
		tracer:   nooptrace.NewTracerProvider().Tracer(""),
		now:      time.Now,
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// Run processes every file in order and returns the per-file results.
// It never fails as a whole. A cancelled ctx stops the run before the next
// file; the remaining files are reported as cancelled.
func (p *Patcher) Run(ctx context.Context) Report {
	ctx, span := p.tracer.Start(ctx, "hookpatch.run", trace.WithAttributes(
		attribute.String("base_dir", p.opts.BaseDir),
		attribute.Int("files", len(p.opts.FileNames)),
		attribute.Bool("dry_run", p.opts.DryRun),
	))
	defer span.End()

	rep := Report{
		BaseDir: p.opts.BaseDir,
		DryRun:  p.opts.DryRun,
		Started: p.now(),
		Results: make([]Result, 0, len(p.opts.FileNames)),
	}

	for _, name := range p.opts.FileNames {
		var res Result

		if ctx.Err() != nil {
			res = Result{Name: name, Path: p.pathOf(name), Status: StatusCancelled}
		} else {
			res = p.processFile(ctx, name)
		}

		rep.Results = append(rep.Results, res)
		p.reporter.FileDone(res)
	}

	rep.Finished = p.now()

	counts := rep.Counts()
	p.logger.InfoContext(ctx, "run finished",
		"updated", counts[StatusUpdated],
		"unchanged", counts[StatusUnchanged],
		"skipped", counts[StatusSkipped],
		"failed", counts[StatusFailed],
		"cancelled", counts[StatusCancelled],
	)

	p.reporter.RunDone(rep)

	return rep
}

func (p *Patcher) pathOf(name string) string {
	return filepath.Join(p.opts.BaseDir, name)
}

func (p *Patcher) processFile(ctx context.Context, name string) Result {
	path := p.pathOf(name)

	ctx, span := p.tracer.Start(ctx, "hookpatch.file", trace.WithAttributes(
		attribute.String("file", name),
	))
	defer span.End()

	start := p.now()
	res := p.patchFile(name, path)
	res.Duration = p.now().Sub(start)

	span.SetAttributes(attribute.String("status", string(res.Status)))
	p.metrics.RecordFile(ctx, string(res.Status), res.Duration, res.BytesWritten)

	switch res.Status {
	case StatusFailed:
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		p.logger.WarnContext(ctx, "file failed", "file", name, "error", res.Err)
	case StatusSkipped:
		p.logger.DebugContext(ctx, "file missing, skipped", "file", name)
	case StatusUpdated, StatusUnchanged, StatusCancelled:
		p.logger.InfoContext(ctx, "file processed",
			"file", name,
			"status", res.Status,
			"import", res.Outcome.ImportInserted,
			"call", res.Outcome.CallInserted,
			"written", res.Written,
		)
	}

	return res
}

// patchFile does the read, patch and write for one file.
func (p *Patcher) patchFile(name, path string) Result {
	res := Result{Name: name, Path: path}

	// Any stat error means the page is absent, including ENOTDIR and EACCES.
	info, statErr := p.fs.Stat(path)
	if statErr != nil {
		res.Status = StatusSkipped

		return res
	}

	data, readErr := afero.ReadFile(p.fs, path)
	if readErr != nil {
		return failed(res, fmt.Errorf("read: %w", readErr))
	}

	if !utf8.Valid(data) {
		return failed(res, ErrNotUTF8)
	}

	before := string(data)
	after, outcome := p.opts.Fragments.Apply(before)

	res.Outcome = outcome
	res.Before = before
	res.After = after

	res.Status = StatusUnchanged
	if outcome.Changed() {
		res.Status = StatusUpdated
	}

	if p.opts.DryRun || (p.opts.SkipUnchanged && !outcome.Changed()) {
		return res
	}

	writeErr := afero.WriteFile(p.fs, path, []byte(after), info.Mode().Perm())
	if writeErr != nil {
		return failed(res, fmt.Errorf("write: %w", writeErr))
	}

	res.Written = true
	res.BytesWritten = len(after)

	return res
}

func failed(res Result, err error) Result {
	res.Status = StatusFailed
	res.Err = err
	res.Error = err.Error()

	return res
}
