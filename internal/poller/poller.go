// Package poller drives a remote job's status endpoint to a terminal
// outcome, normalizing transport errors and raw status strings along
// the way.
package poller

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/synthlab/synthlink/internal/constants"
	"github.com/synthlab/synthlink/internal/models"
)

// Outcome is the terminal result of a polling loop that did not fail.
type Outcome string

const (
	// OutcomeCompleted means the job reported completed.
	OutcomeCompleted Outcome = "completed"
	// OutcomeAborted means the caller's cancellation check tripped. Not an
	// error: the run was superseded or stopped on purpose.
	OutcomeAborted Outcome = "aborted"
)

// ErrEmptyJobID indicates Poll was invoked without a job id. Caller error.
var ErrEmptyJobID = errors.New("poller: job id must not be empty")

// ErrJobFailed indicates the remote service reported the job as failed.
var ErrJobFailed = errors.New("job failed on server")

// ErrTooManyErrors indicates the consecutive fetch-failure threshold was hit.
var ErrTooManyErrors = errors.New("too many polling errors")

// FetchFunc retrieves the current status of the job under observation.
type FetchFunc func(ctx context.Context) (*models.JobStatus, error)

// TickFunc receives one normalized observation: the clamped percent, the
// lowercased status, and the raw payload.
type TickFunc func(percent int, status string, raw *models.JobStatus)

// Options configures one polling loop.
type Options struct {
	// JobID of the job under observation. Must be non-empty.
	JobID string

	// Fetch retrieves the job status. Required.
	Fetch FetchFunc

	// RequireRunning gates completion: when true, a "completed" status is
	// only accepted after "running" has been observed at least once. This
	// guards against a backend still reporting a stale completed left over
	// from a prior phase.
	RequireRunning bool

	// Interval between fetches. Defaults to constants.DefaultPollInterval.
	Interval time.Duration

	// MaxErrors is the consecutive fetch-failure threshold. Defaults to
	// constants.DefaultMaxPollErrors.
	MaxErrors int

	// Cancelled is evaluated before every iteration; returning true ends the
	// loop with OutcomeAborted. Optional.
	Cancelled func() bool

	// OnTick is invoked after every successful fetch. Optional.
	OnTick TickFunc

	// Log receives diagnostic lines. Optional.
	Log func(format string, args ...interface{})
}

// Poll loops against the status endpoint until the job completes, the
// caller cancels, or fetching fails too many times in a row. There is no
// implicit timeout: a caller wanting one must drive cancellation itself,
// either through ctx or the Cancelled check.
func Poll(ctx context.Context, opts Options) (Outcome, error) {
	if opts.JobID == "" {
		return "", ErrEmptyJobID
	}
	if opts.Fetch == nil {
		return "", errors.New("poller: fetch function is required")
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = constants.DefaultPollInterval
	}
	maxErrors := opts.MaxErrors
	if maxErrors <= 0 {
		maxErrors = constants.DefaultMaxPollErrors
	}
	logf := opts.Log
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}

	consecutiveErrors := 0
	sawRunning := false

	for {
		if opts.Cancelled != nil && opts.Cancelled() {
			return OutcomeAborted, nil
		}
		if ctx.Err() != nil {
			return OutcomeAborted, nil
		}

		status, err := opts.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return OutcomeAborted, nil
			}
			consecutiveErrors++
			logf("status fetch failed (%d/%d): %v", consecutiveErrors, maxErrors, err)
			if consecutiveErrors >= maxErrors {
				return "", fmt.Errorf("%w after %d consecutive failures: %v", ErrTooManyErrors, consecutiveErrors, err)
			}
		} else {
			consecutiveErrors = 0

			normalized := strings.ToLower(strings.TrimSpace(status.Status))
			percent := clampPercent(status.Percent)

			if opts.OnTick != nil {
				opts.OnTick(percent, normalized, status)
			}

			switch normalized {
			case "failed", "error":
				return "", fmt.Errorf("%w: job %s reported %q", ErrJobFailed, opts.JobID, normalized)

			case "running":
				sawRunning = true

			case "completed":
				if sawRunning || !opts.RequireRunning {
					return OutcomeCompleted, nil
				}
				// Stale completed from a previous phase: the job has not
				// actually started yet. Keep polling.
				logf("ignoring completed before running for job %s", opts.JobID)

			default:
				// Unrecognized statuses are non-terminal.
				logf("unrecognized status %q for job %s, continuing", normalized, opts.JobID)
			}
		}

		select {
		case <-ctx.Done():
			return OutcomeAborted, nil
		case <-time.After(interval):
		}
	}
}

// clampPercent normalizes the optional percent field into [0,100].
// Missing, NaN and infinite values map to 0.
func clampPercent(p *float64) int {
	if p == nil {
		return 0
	}
	v := *p
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
