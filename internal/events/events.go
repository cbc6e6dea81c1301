// Package events provides the in-process event bus bridging the pipeline
// core to whatever presentation layer is attached (CLI run view, log output,
// or an embedding application).
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/synthlab/synthlink/internal/constants"
	"github.com/synthlab/synthlink/internal/models"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	EventPhaseChange EventType = "phase_change"
	EventTick        EventType = "tick"
	EventLog         EventType = "log"
	EventError       EventType = "error"
	EventRunComplete EventType = "run_complete"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// PhaseChangeEvent represents a phase status transition within a run.
type PhaseChangeEvent struct {
	BaseEvent
	RunID     int64
	Phase     models.PhaseID
	OldStatus models.PhaseStatus
	NewStatus models.PhaseStatus
	Progress  int // phase-local progress 0-100
	Overall   int // weighted overall progress 0-100
	Message   string
}

// TickEvent represents one polling observation during a remote phase.
type TickEvent struct {
	BaseEvent
	RunID   int64
	Phase   models.PhaseID
	Percent int // clamped phase-local percent
	Status  string
	Overall int
}

// LogEvent represents diagnostic messages surfaced to the presentation layer.
type LogEvent struct {
	BaseEvent
	RunID   int64
	Level   string
	Phase   models.PhaseID
	Message string
}

// ErrorEvent represents a fatal phase failure.
type ErrorEvent struct {
	BaseEvent
	RunID int64
	Phase models.PhaseID
	Err   error
}

// RunCompleteEvent signals that all four phases finished and carries the
// generation artifact.
type RunCompleteEvent struct {
	BaseEvent
	RunID    int64
	Artifact *models.GenerateResult
	Duration time.Duration
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers. Delivery is non-blocking: a
// subscriber with a full buffer misses the event and the drop counter is
// incremented.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}
}

// Unsubscribe removes a subscription channel from a specific event type
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// UnsubscribeAll removes a subscription channel from all event types
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for eventType, subscribers := range eb.subscribers {
		for i, subCh := range subscribers {
			if subCh == ch {
				subscribers[i] = subscribers[len(subscribers)-1]
				eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
				break
			}
		}
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to
// full buffers.
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}

// PublishLog is a convenience method for publishing log events
func (eb *EventBus) PublishLog(runID int64, level string, phase models.PhaseID, message string) {
	eb.Publish(&LogEvent{
		BaseEvent: BaseEvent{
			EventType: EventLog,
			Time:      time.Now(),
		},
		RunID:   runID,
		Level:   level,
		Phase:   phase,
		Message: message,
	})
}
