package logging

import (
	"fmt"
	"sync"
	"time"
)

// RunEntry is a single timestamped diagnostic line scoped to a pipeline run.
type RunEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

// RunLog maintains a circular buffer of recent diagnostic lines for one
// pipeline run. It is advisory only and never used for control flow.
// The buffer holds maxSize entries; the oldest is dropped on overflow.
type RunLog struct {
	mu       sync.RWMutex
	entries  []RunEntry
	maxSize  int
	writeIdx int
	count    int
}

// NewRunLog creates a run log with the specified capacity.
func NewRunLog(maxSize int) *RunLog {
	if maxSize <= 0 {
		maxSize = 200
	}
	return &RunLog{
		entries: make([]RunEntry, maxSize),
		maxSize: maxSize,
	}
}

// Add appends a formatted entry to the log.
func (rl *RunLog) Add(level, format string, args ...interface{}) {
	entry := RunEntry{
		Time:    time.Now(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	}

	rl.mu.Lock()
	rl.entries[rl.writeIdx] = entry
	rl.writeIdx = (rl.writeIdx + 1) % rl.maxSize
	if rl.count < rl.maxSize {
		rl.count++
	}
	rl.mu.Unlock()
}

// Recent returns up to n entries, most recent first.
func (rl *RunLog) Recent(n int) []RunEntry {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	if n <= 0 || rl.count == 0 {
		return nil
	}
	if n > rl.count {
		n = rl.count
	}

	result := make([]RunEntry, n)
	for i := 0; i < n; i++ {
		// writeIdx-1 is the newest entry
		idx := (rl.writeIdx - 1 - i + rl.maxSize) % rl.maxSize
		result[i] = rl.entries[idx]
	}

	return result
}

// All returns every retained entry, most recent first.
func (rl *RunLog) All() []RunEntry {
	rl.mu.RLock()
	n := rl.count
	rl.mu.RUnlock()
	return rl.Recent(n)
}

// Len returns the number of retained entries.
func (rl *RunLog) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return rl.count
}

// Reset removes all entries. Called at the start of every run.
func (rl *RunLog) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.entries = make([]RunEntry, rl.maxSize)
	rl.writeIdx = 0
	rl.count = 0
}
