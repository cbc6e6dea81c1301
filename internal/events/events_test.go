package events

import (
	"testing"
	"time"

	"github.com/synthlab/synthlink/internal/models"
)

func phaseEvent(runID int64) *PhaseChangeEvent {
	return &PhaseChangeEvent{
		BaseEvent: BaseEvent{EventType: EventPhaseChange, Time: time.Now()},
		RunID:     runID,
		Phase:     models.PhaseTraining,
		OldStatus: models.StatusPending,
		NewStatus: models.StatusRunning,
	}
}

func TestSubscribeReceivesMatchingType(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	sub := bus.Subscribe(EventPhaseChange)
	bus.Publish(phaseEvent(1))

	select {
	case ev := <-sub:
		pc, ok := ev.(*PhaseChangeEvent)
		if !ok {
			t.Fatalf("wrong event type: %T", ev)
		}
		if pc.RunID != 1 || pc.Phase != models.PhaseTraining {
			t.Errorf("unexpected event: %+v", pc)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSubscribeIgnoresOtherTypes(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	sub := bus.Subscribe(EventTick)
	bus.Publish(phaseEvent(1))

	select {
	case ev := <-sub:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestSubscribeAll(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	sub := bus.SubscribeAll()
	bus.Publish(phaseEvent(1))
	bus.PublishLog(1, "debug", models.PhaseTraining, "hello")

	for i := 0; i < 2; i++ {
		select {
		case <-sub:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	bus := NewEventBus(1)
	defer bus.Close()

	bus.Subscribe(EventPhaseChange) // never drained
	bus.Publish(phaseEvent(1))
	bus.Publish(phaseEvent(2))
	bus.Publish(phaseEvent(3))

	if got := bus.GetDroppedEventCount(); got != 2 {
		t.Errorf("dropped = %d, want 2", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	sub := bus.Subscribe(EventPhaseChange)
	bus.Unsubscribe(EventPhaseChange, sub)
	bus.Publish(phaseEvent(1))

	select {
	case ev, ok := <-sub:
		if ok {
			t.Fatalf("received event after unsubscribe: %+v", ev)
		}
	case <-time.After(20 * time.Millisecond):
	}
}

func TestCloseClosesChannels(t *testing.T) {
	bus := NewEventBus(10)
	sub := bus.Subscribe(EventPhaseChange)
	all := bus.SubscribeAll()

	bus.Close()

	if _, ok := <-sub; ok {
		t.Error("typed channel not closed")
	}
	if _, ok := <-all; ok {
		t.Error("all channel not closed")
	}

	// Publishing after close is a no-op, not a panic
	bus.Publish(phaseEvent(1))
}

func TestSubscribeAfterCloseReturnsClosedChannel(t *testing.T) {
	bus := NewEventBus(10)
	bus.Close()

	sub := bus.Subscribe(EventPhaseChange)
	if _, ok := <-sub; ok {
		t.Error("expected closed channel from subscribe after close")
	}
}
