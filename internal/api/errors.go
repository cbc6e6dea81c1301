// Package api provides the client for the synthesis service HTTP API.
package api

import (
	"errors"
)

// ErrEmptyJobID indicates a job-scoped call was made without a job id.
// This is a caller error, not a service error.
var ErrEmptyJobID = errors.New("job id must not be empty")

// ErrMissingJobID indicates the train endpoint answered success but the
// response body carried no job identifier. Treated as a submission failure.
var ErrMissingJobID = errors.New("train response missing job_id")
