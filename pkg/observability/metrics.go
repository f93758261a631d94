package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal   = "hookpatch.files.total"
	metricFileDuration = "hookpatch.file.duration.seconds"
	metricBytesWritten = "hookpatch.bytes.written"

	attrStatus = "status"
)

// durationBucketBoundaries covers 100µs to 5s; a single file read-patch-write
// is normally well under a millisecond.
var durationBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// PatchMetrics holds the instruments recorded once per processed file.
type PatchMetrics struct {
	filesTotal   metric.Int64Counter
	fileDuration metric.Float64Histogram
	bytesWritten metric.Int64Counter
}

// NewPatchMetrics creates the per-file instruments from the given meter.
func NewPatchMetrics(mt metric.Meter) (*PatchMetrics, error) {
	files, err := mt.Int64Counter(metricFilesTotal,
		metric.WithDescription("Files processed, by outcome status"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesTotal, err)
	}

	duration, err := mt.Float64Histogram(metricFileDuration,
		metric.WithDescription("Time spent processing one file"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFileDuration, err)
	}

	written, err := mt.Int64Counter(metricBytesWritten,
		metric.WithDescription("Bytes written back to disk"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBytesWritten, err)
	}

	return &PatchMetrics{
		filesTotal:   files,
		fileDuration: duration,
		bytesWritten: written,
	}, nil
}

// RecordFile records one processed file.
func (pm *PatchMetrics) RecordFile(ctx context.Context, status string, duration time.Duration, written int) {
	if pm == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))

	pm.filesTotal.Add(ctx, 1, attrs)
	pm.fileDuration.Record(ctx, duration.Seconds(), attrs)

	if written > 0 {
		pm.bytesWritten.Add(ctx, int64(written))
	}
}
