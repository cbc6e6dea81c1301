package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/synthlab/synthlink/internal/events"
)

// Reporter is the interface for byte-level progress reporting (dataset
// uploads) in both CLI and embedded modes.
type Reporter interface {
	Start(total int64, description string)
	Update(current int64)
	Finish()
	Error(err error)
}

// CLIReporter implements progress reporting for CLI mode using a progress bar.
type CLIReporter struct {
	bar *progressbar.ProgressBar
}

// NewCLIReporter creates a new CLI progress reporter.
func NewCLIReporter() *CLIReporter {
	return &CLIReporter{}
}

// Start initializes the progress bar with total size and description.
func (p *CLIReporter) Start(total int64, description string) {
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update updates the progress bar to the current position.
func (p *CLIReporter) Update(current int64) {
	if p.bar != nil {
		_ = p.bar.Set64(current)
	}
}

// Finish completes the progress bar.
func (p *CLIReporter) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Error displays an error message.
func (p *CLIReporter) Error(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
	}
}

// EventReporter publishes byte progress to the event bus for embedded
// frontends.
type EventReporter struct {
	bus   *events.EventBus
	stage string
	total int64
}

// NewEventReporter creates a new event-bus progress reporter.
func NewEventReporter(bus *events.EventBus, stage string) *EventReporter {
	return &EventReporter{bus: bus, stage: stage}
}

// Start initializes progress tracking.
func (p *EventReporter) Start(total int64, description string) {
	p.total = total
	p.publish(0)
}

// Update publishes a progress update to the event bus.
func (p *EventReporter) Update(current int64) {
	p.publish(current)
}

// Finish publishes the completion event.
func (p *EventReporter) Finish() {
	p.publish(p.total)
}

// Error publishes an error log event.
func (p *EventReporter) Error(err error) {
	if err != nil {
		p.bus.PublishLog(0, "error", "", fmt.Sprintf("%s: %v", p.stage, err))
	}
}

func (p *EventReporter) publish(current int64) {
	percent := 0
	if p.total > 0 {
		percent = int(current * 100 / p.total)
	}
	p.bus.Publish(&events.TickEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventTick, Time: time.Now()},
		Percent:   percent,
		Status:    p.stage,
	})
}

// NoOpReporter is a progress reporter that does nothing (silent operations).
type NoOpReporter struct{}

// NewNoOpReporter creates a new no-op progress reporter.
func NewNoOpReporter() *NoOpReporter { return &NoOpReporter{} }

func (p *NoOpReporter) Start(total int64, description string) {}
func (p *NoOpReporter) Update(current int64)                  {}
func (p *NoOpReporter) Finish()                               {}
func (p *NoOpReporter) Error(err error)                       {}

// Reader wraps an io.Reader to report progress as it is consumed.
type Reader struct {
	reader   io.Reader
	reporter Reporter
	current  int64
}

// NewReader creates a new progress-reporting reader.
func NewReader(reader io.Reader, reporter Reporter) *Reader {
	return &Reader{reader: reader, reporter: reporter}
}

// Read implements io.Reader with progress reporting.
func (pr *Reader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.current += int64(n)
	pr.reporter.Update(pr.current)
	return n, err
}
