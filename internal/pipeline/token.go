package pipeline

import (
	"sync/atomic"
)

// Token identifies one run and carries its cancellation state. It is passed
// into every suspension point so that continuations of a superseded or
// aborted run can detect they are stale and return without mutating
// anything.
type Token struct {
	id     int64
	cancel *atomic.Bool
	live   *atomic.Int64
}

// RunID returns the run identity this token belongs to.
func (t *Token) RunID() int64 {
	return t.id
}

// Stale reports whether a newer run has superseded this one.
func (t *Token) Stale() bool {
	return t.live.Load() != t.id
}

// Cancelled reports whether this run was explicitly aborted.
func (t *Token) Cancelled() bool {
	return t.cancel.Load()
}

// Stopped reports whether this run should produce no further side effects.
// Checked before every delay, fetch and state mutation.
func (t *Token) Stopped() bool {
	return t.Stale() || t.Cancelled()
}
