package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/synthlab/synthlink/internal/models"
)

// RunView renders the four pipeline phases plus the overall percentage as
// a stack of terminal progress bars using mpb. On a non-TTY it renders
// nothing; callers should fall back to log lines.
type RunView struct {
	progress   *mpb.Progress
	isTerminal bool

	mu      sync.Mutex
	bars    map[models.PhaseID]*phaseBar
	overall *mpb.Bar
}

type phaseBar struct {
	bar    *mpb.Bar
	status models.PhaseStatus
}

// NewRunView creates the phase view writing to stderr.
func NewRunView() *RunView {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))

	var p *mpb.Progress
	if isTerminal {
		p = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(200*time.Millisecond),
			mpb.WithWidth(60),
		)
	} else {
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	v := &RunView{
		progress:   p,
		isTerminal: isTerminal,
		bars:       make(map[models.PhaseID]*phaseBar),
	}

	for _, phase := range models.NewPhases() {
		v.addPhaseBar(phase)
	}
	v.overall = p.New(100,
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(fmt.Sprintf("%-14s", "overall")),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)

	return v
}

// IsTerminal reports whether bars are actually being rendered.
func (v *RunView) IsTerminal() bool {
	return v.isTerminal
}

func (v *RunView) addPhaseBar(phase models.Phase) {
	pb := &phaseBar{status: phase.Status}

	pb.bar = v.progress.New(100,
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(fmt.Sprintf("%-14s", phase.ID)),
		),
		mpb.AppendDecorators(
			decor.Any(func(s decor.Statistics) string {
				v.mu.Lock()
				status := pb.status
				v.mu.Unlock()
				return fmt.Sprintf("%3d%% %s", s.Current, status)
			}),
		),
	)

	v.mu.Lock()
	v.bars[phase.ID] = pb
	v.mu.Unlock()
}

// SetPhase updates one phase bar's status and local progress.
func (v *RunView) SetPhase(id models.PhaseID, status models.PhaseStatus, local int) {
	v.mu.Lock()
	pb, ok := v.bars[id]
	if ok {
		pb.status = status
	}
	v.mu.Unlock()

	if !ok {
		return
	}

	if local < 0 {
		local = 0
	}
	if local > 100 {
		local = 100
	}
	pb.bar.SetCurrent(int64(local))

	if status == models.StatusError {
		pb.bar.Abort(false)
	}
}

// SetOverall updates the overall percentage bar.
func (v *RunView) SetOverall(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	v.overall.SetCurrent(int64(percent))
}

// Wait blocks until all bars have rendered their final state.
func (v *RunView) Wait() {
	v.mu.Lock()
	for _, pb := range v.bars {
		if !pb.bar.Completed() && !pb.bar.Aborted() {
			pb.bar.Abort(true)
		}
	}
	if !v.overall.Completed() && !v.overall.Aborted() {
		v.overall.Abort(true)
	}
	v.mu.Unlock()

	v.progress.Wait()
}
