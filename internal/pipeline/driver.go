// Package pipeline sequences the four-phase generation pipeline against the
// remote synthesis service and reports step and overall state to whatever
// presentation layer is subscribed.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/synthlab/synthlink/internal/config"
	"github.com/synthlab/synthlink/internal/constants"
	"github.com/synthlab/synthlink/internal/events"
	"github.com/synthlab/synthlink/internal/logging"
	"github.com/synthlab/synthlink/internal/models"
	"github.com/synthlab/synthlink/internal/poller"
	"github.com/synthlab/synthlink/internal/progress"
)

// Service is the slice of the synthesis API the driver needs. *api.Client
// satisfies it; tests substitute fakes.
type Service interface {
	TrainModel(ctx context.Context, req models.TrainRequest) (string, error)
	GetJobStatus(ctx context.Context, jobID string) (*models.JobStatus, error)
	Generate(ctx context.Context, jobID string, count int) (*models.GenerateResult, error)
}

// PhaseError is a hard failure contained at a phase boundary. The failing
// phase has already been marked error and recorded when this is returned.
type PhaseError struct {
	Phase models.PhaseID
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %s failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Snapshot is a point-in-time copy of run state for the presentation layer.
type Snapshot struct {
	RunID   int64
	Phases  [4]models.Phase
	Overall int
	JobID   string
}

// Driver orchestrates one run at a time. Starting a new run supersedes any
// run still in flight: the old run's continuations detect the newer run id
// at their next checkpoint and become no-ops. One Driver instance per
// session keeps concurrent sessions isolated.
type Driver struct {
	service Service
	bus     *events.EventBus
	logger  *logging.Logger
	runLog  *logging.RunLog

	runSeq atomic.Int64
	live   atomic.Int64

	mu      sync.RWMutex
	phases  [4]models.Phase
	overall int
	jobID   string
	cancel  *atomic.Bool
	started time.Time

	stepDelay     time.Duration
	stepSize      int
	pollInterval  time.Duration
	maxPollErrors int
}

// NewDriver creates a driver wired to the given service, event bus and
// logger. Polling parameters come from the config.
func NewDriver(cfg *config.Config, service Service, bus *events.EventBus, logger *logging.Logger) *Driver {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if bus == nil {
		bus = events.NewEventBus(0)
	}

	d := &Driver{
		service:       service,
		bus:           bus,
		logger:        logger,
		runLog:        logging.NewRunLog(constants.DebugLogCap),
		phases:        models.NewPhases(),
		cancel:        &atomic.Bool{},
		stepDelay:     constants.SimStepDelay,
		stepSize:      constants.SimStepSize,
		pollInterval:  constants.DefaultPollInterval,
		maxPollErrors: constants.DefaultMaxPollErrors,
	}
	if cfg != nil {
		d.pollInterval = cfg.PollInterval()
		d.maxPollErrors = cfg.Polling.MaxErrors
	}
	return d
}

// Run executes one pipeline run end to end and returns the generation
// artifact. A run that was aborted or superseded returns (nil, nil): not an
// error, just nothing further to say. Hard failures return a *PhaseError
// after the failing phase has been marked.
func (d *Driver) Run(ctx context.Context, params models.RunParams) (*models.GenerateResult, error) {
	tok := d.newRun()
	d.logRun(tok, "info", "", "run %d started: model=%s dataset=%s samples=%d",
		tok.id, params.ModelName, params.DatasetID, params.Samples)

	// Phase 1: preprocessing (simulated)
	if stopped := d.simulatePhase(ctx, tok, models.PhasePreprocessing); stopped {
		return nil, nil
	}

	// Phase 2: training (remote, polled)
	d.setPhaseStatus(tok, models.PhaseTraining, models.StatusRunning)

	jobID, err := d.service.TrainModel(ctx, models.TrainRequest{
		ModelName: params.ModelName,
		DatasetID: params.DatasetID,
	})
	if tok.Stopped() {
		return nil, nil
	}
	if err != nil {
		return nil, d.failPhase(tok, models.PhaseTraining, fmt.Errorf("failed to start training: %w", err))
	}
	d.setJobID(tok, jobID)
	d.logRun(tok, "info", models.PhaseTraining, "training job started: %s", jobID)

	outcome, err := poller.Poll(ctx, poller.Options{
		JobID:          jobID,
		RequireRunning: false,
		Interval:       d.pollInterval,
		MaxErrors:      d.maxPollErrors,
		Cancelled:      tok.Stopped,
		Fetch: func(ctx context.Context) (*models.JobStatus, error) {
			return d.service.GetJobStatus(ctx, jobID)
		},
		OnTick: func(percent int, status string, raw *models.JobStatus) {
			d.tick(tok, models.PhaseTraining, percent, status)
		},
		Log: func(format string, args ...interface{}) {
			d.logRun(tok, "debug", models.PhaseTraining, format, args...)
		},
	})
	if err != nil {
		return nil, d.failPhase(tok, models.PhaseTraining, err)
	}
	if outcome == poller.OutcomeAborted {
		return nil, nil
	}
	d.completePhase(tok, models.PhaseTraining)

	// Sanity re-check: the poller's last observed completed may already be
	// stale. Require an independent fetch to agree before trusting it.
	st, err := d.service.GetJobStatus(ctx, jobID)
	if tok.Stopped() {
		return nil, nil
	}
	if err != nil {
		return nil, d.failPhase(tok, models.PhaseTraining, fmt.Errorf("completion re-check failed: %w", err))
	}
	if got := strings.ToLower(strings.TrimSpace(st.Status)); got != "completed" {
		return nil, d.failPhase(tok, models.PhaseTraining,
			fmt.Errorf("completion re-check: job %s reports %q, expected completed", jobID, got))
	}

	// Phase 3: generation (remote, single synchronous call; the response
	// body carries the data so there is no status endpoint to poll)
	d.setPhaseStatus(tok, models.PhaseGeneration, models.StatusRunning)

	count := params.Samples
	if count > constants.MaxSampleCount {
		count = constants.MaxSampleCount
	}
	d.logRun(tok, "info", models.PhaseGeneration, "requesting %d samples from job %s", count, jobID)

	artifact, err := d.service.Generate(ctx, jobID, count)
	if tok.Stopped() {
		return nil, nil
	}
	if err != nil {
		return nil, d.failPhase(tok, models.PhaseGeneration, fmt.Errorf("generation failed: %w", err))
	}
	d.completePhase(tok, models.PhaseGeneration)

	// Phase 4: validation (simulated)
	if stopped := d.simulatePhase(ctx, tok, models.PhaseValidation); stopped {
		return nil, nil
	}

	d.mu.Lock()
	d.overall = 100
	started := d.started
	d.mu.Unlock()

	d.logRun(tok, "info", "", "run %d completed: %d records", tok.id, len(artifact.SyntheticData))
	d.bus.Publish(&events.RunCompleteEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventRunComplete, Time: time.Now()},
		RunID:     tok.id,
		Artifact:  artifact,
		Duration:  time.Since(started),
	})

	return artifact, nil
}

// Abort requests a graceful stop of the current run. Continuations notice
// at their next checkpoint; no phase is marked error.
func (d *Driver) Abort() {
	d.mu.RLock()
	cancel := d.cancel
	d.mu.RUnlock()

	if cancel.CompareAndSwap(false, true) {
		d.logger.Info().Int64("run", d.live.Load()).Msg("run abort requested")
	}
}

// Snapshot returns the current run state for display.
func (d *Driver) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Snapshot{
		RunID:   d.live.Load(),
		Phases:  d.phases,
		Overall: d.overall,
		JobID:   d.jobID,
	}
}

// DebugLog returns the retained diagnostic lines for the current run,
// most recent first.
func (d *Driver) DebugLog() []logging.RunEntry {
	return d.runLog.All()
}

// newRun allocates a new run identity, resets all visible state and
// invalidates any in-flight continuations from previous runs.
func (d *Driver) newRun() *Token {
	id := d.runSeq.Add(1)

	d.mu.Lock()
	d.phases = models.NewPhases()
	d.overall = 0
	d.jobID = ""
	d.cancel = &atomic.Bool{}
	d.started = time.Now()
	cancel := d.cancel
	d.mu.Unlock()

	d.runLog.Reset()
	d.live.Store(id)

	return &Token{id: id, cancel: cancel, live: &d.live}
}

// simulatePhase advances a locally-computed phase in fixed increments,
// checking staleness and cancellation before every step. Returns true if
// the run stopped.
func (d *Driver) simulatePhase(ctx context.Context, tok *Token, id models.PhaseID) bool {
	d.setPhaseStatus(tok, id, models.StatusRunning)

	for local := 0; ; local += d.stepSize {
		if tok.Stopped() {
			return true
		}
		if local > 100 {
			local = 100
		}
		d.setProgress(tok, id, local)
		if local >= 100 {
			break
		}

		select {
		case <-ctx.Done():
			return true
		case <-time.After(d.stepDelay):
		}
	}

	d.completePhase(tok, id)
	return tok.Stopped()
}

// tick applies one polling observation to phase and overall progress.
func (d *Driver) tick(tok *Token, id models.PhaseID, percent int, status string) {
	if tok.Stopped() {
		return
	}
	d.logRun(tok, "debug", id, "tick: %d%% %s", percent, status)
	overall := d.setProgress(tok, id, percent)

	d.bus.Publish(&events.TickEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventTick, Time: time.Now()},
		RunID:     tok.id,
		Phase:     id,
		Percent:   percent,
		Status:    status,
		Overall:   overall,
	})
}

// setProgress raises a phase's local progress and recomputes the overall
// percentage. Both values are monotonic within a run: a lower observation
// never rolls progress back. Returns the overall percentage.
func (d *Driver) setProgress(tok *Token, id models.PhaseID, local int) int {
	idx := models.PhaseIndex(id)
	if idx < 0 || tok.Stopped() {
		return 0
	}

	d.mu.Lock()
	if local > d.phases[idx].Progress {
		d.phases[idx].Progress = local
	}
	if o := progress.Overall(id, d.phases[idx].Progress); o > d.overall {
		d.overall = o
	}
	overall := d.overall
	d.mu.Unlock()

	return overall
}

func (d *Driver) setPhaseStatus(tok *Token, id models.PhaseID, status models.PhaseStatus) {
	idx := models.PhaseIndex(id)
	if idx < 0 || tok.Stopped() {
		return
	}

	d.mu.Lock()
	old := d.phases[idx].Status
	d.phases[idx].Status = status
	phaseProgress := d.phases[idx].Progress
	overall := d.overall
	d.mu.Unlock()

	d.logRun(tok, "info", id, "phase %s: %s -> %s", id, old, status)
	d.bus.Publish(&events.PhaseChangeEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventPhaseChange, Time: time.Now()},
		RunID:     tok.id,
		Phase:     id,
		OldStatus: old,
		NewStatus: status,
		Progress:  phaseProgress,
		Overall:   overall,
	})
}

func (d *Driver) completePhase(tok *Token, id models.PhaseID) {
	d.setProgress(tok, id, 100)
	d.setPhaseStatus(tok, id, models.StatusCompleted)
}

// failPhase marks one phase error and contains the failure at the phase
// boundary. A stopped run swallows the failure silently: its error no
// longer matters to anyone.
func (d *Driver) failPhase(tok *Token, id models.PhaseID, err error) error {
	if tok.Stopped() {
		return nil
	}

	idx := models.PhaseIndex(id)
	d.mu.Lock()
	old := d.phases[idx].Status
	d.phases[idx].Status = models.StatusError
	d.mu.Unlock()

	d.logRun(tok, "error", id, "phase %s failed: %v", id, err)
	d.logger.Error().Int64("run", tok.id).Str("phase", string(id)).Err(err).Msg("pipeline phase failed")

	d.bus.Publish(&events.PhaseChangeEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventPhaseChange, Time: time.Now()},
		RunID:     tok.id,
		Phase:     id,
		OldStatus: old,
		NewStatus: models.StatusError,
		Message:   err.Error(),
	})
	d.bus.Publish(&events.ErrorEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventError, Time: time.Now()},
		RunID:     tok.id,
		Phase:     id,
		Err:       err,
	})

	return &PhaseError{Phase: id, Err: err}
}

func (d *Driver) setJobID(tok *Token, jobID string) {
	if tok.Stopped() {
		return
	}
	d.mu.Lock()
	d.jobID = jobID
	d.mu.Unlock()
}

// logRun records a diagnostic line in the bounded run log and mirrors it to
// the event bus.
func (d *Driver) logRun(tok *Token, level string, phase models.PhaseID, format string, args ...interface{}) {
	if tok.Stopped() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	d.runLog.Add(level, "%s", msg)
	d.bus.PublishLog(tok.id, level, phase, msg)
}
