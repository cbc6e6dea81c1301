// Package constants defines application-wide tuning values.
package constants

import (
	"time"
)

// Polling
const (
	// DefaultPollInterval - delay between remote status fetches
	DefaultPollInterval = 3 * time.Second

	// DefaultMaxPollErrors - consecutive fetch failures tolerated before the
	// poller escalates to a hard failure
	DefaultMaxPollErrors = 5
)

// Pipeline
const (
	// SimStepDelay - delay between increments of the simulated
	// preprocessing/validation phases
	SimStepDelay = 200 * time.Millisecond

	// SimStepSize - local progress increment for simulated phases
	SimStepSize = 20

	// MaxSampleCount - hard cap on generated records per run; requests above
	// this are clamped before calling the generate endpoint
	MaxSampleCount = 100000

	// DebugLogCap - maximum retained run-scoped debug log entries
	// (oldest dropped first)
	DebugLogCap = 200
)

// Event bus buffer sizes
const (
	EventBusDefaultBuffer = 1000
	EventBusMaxBuffer     = 10000
)

// HTTP client timeouts
const (
	HTTPDialTimeout           = 30 * time.Second
	HTTPDialKeepAlive         = 30 * time.Second
	HTTPIdleConnTimeout       = 90 * time.Second
	HTTPTLSHandshakeTimeout   = 30 * time.Second
	HTTPExpectContinueTimeout = 5 * time.Second
	HTTPRequestTimeout        = 300 * time.Second
)
