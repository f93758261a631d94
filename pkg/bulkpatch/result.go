package bulkpatch

import (
	"time"

	"github.com/Sumatoshi-tech/hookpatch/pkg/patch"
)

// Status is the terminal state of one file in a run.
type Status string

// File statuses.
const (
	// StatusUpdated means new content was written (or would be, in a dry run).
	StatusUpdated Status = "updated"
	// StatusUnchanged means nothing was inserted. The file may still have been rewritten.
	StatusUnchanged Status = "unchanged"
	// StatusSkipped means the file does not exist.
	StatusSkipped Status = "skipped"
	// StatusFailed means reading or writing failed.
	StatusFailed Status = "failed"
	// StatusCancelled means the run stopped before reaching the file.
	StatusCancelled Status = "cancelled"
)

// Result describes what happened to one file.
type Result struct {
	Name         string        `json:"name"            yaml:"name"`
	Path         string        `json:"path"            yaml:"path"`
	Status       Status        `json:"status"          yaml:"status"`
	Outcome      patch.Outcome `json:"outcome"         yaml:"outcome"`
	Written      bool          `json:"written"         yaml:"written"`
	BytesWritten int           `json:"bytes_written"   yaml:"bytes_written"`
	Error        string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration     time.Duration `json:"duration"        yaml:"duration"`

	Err    error  `json:"-" yaml:"-"`
	Before string `json:"-" yaml:"-"`
	After  string `json:"-" yaml:"-"`
}

// Report is the outcome of a full run, in file list order.
type Report struct {
	BaseDir  string    `json:"base_dir" yaml:"base_dir"`
	DryRun   bool      `json:"dry_run"  yaml:"dry_run"`
	Started  time.Time `json:"started"  yaml:"started"`
	Finished time.Time `json:"finished" yaml:"finished"`
	Results  []Result  `json:"results"  yaml:"results"`
}

// Counts tallies results by status.
func (r Report) Counts() map[Status]int {
	counts := make(map[Status]int)

	for _, res := range r.Results {
		counts[res.Status]++
	}

	return counts
}

// Failed returns the failed results.
func (r Report) Failed() []Result {
	var failed []Result

	for _, res := range r.Results {
		if res.Status == StatusFailed {
			failed = append(failed, res)
		}
	}

	return failed
}

// Cancelled reports whether the run stopped early.
func (r Report) Cancelled() bool {
	return r.Counts()[StatusCancelled] > 0
}
