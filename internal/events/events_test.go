package events

import (
	"errors"
	"testing"
	"time"
)

func newOpEvent(eventType EventType, tab string, progress float64) *OperationEvent {
	return &OperationEvent{
		BaseEvent: BaseEvent{EventType: eventType, Time: time.Now()},
		Tab:       tab,
		Progress:  progress,
	}
}

func TestSubscribeReceivesMatchingType(t *testing.T) {
	bus := NewEventBus(8)
	defer bus.Close()

	ch := bus.Subscribe(EventOperationProgress)
	bus.Publish(newOpEvent(EventOperationProgress, "flash", 42))
	bus.Publish(newOpEvent(EventOperationCompleted, "flash", 100))

	select {
	case ev := <-ch:
		op := ev.(*OperationEvent)
		if op.Progress != 42 {
			t.Errorf("Expected progress 42, got %f", op.Progress)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected a progress event")
	}

	// The completed event must not arrive on a progress subscription.
	select {
	case ev := <-ch:
		t.Errorf("Unexpected event %v on progress subscription", ev.Type())
	default:
	}
}

func TestSubscribeAllReceivesEverything(t *testing.T) {
	bus := NewEventBus(8)
	defer bus.Close()

	ch := bus.SubscribeAll()
	bus.Publish(newOpEvent(EventOperationStarted, "backup", 0))
	bus.Publish(newOpEvent(EventOperationFailed, "backup", 30))

	got := 0
	for got < 2 {
		select {
		case <-ch:
			got++
		case <-time.After(time.Second):
			t.Fatalf("Expected 2 events, got %d", got)
		}
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	bus := NewEventBus(1)
	defer bus.Close()

	bus.Subscribe(EventOperationProgress)
	bus.Publish(newOpEvent(EventOperationProgress, "flash", 1))
	bus.Publish(newOpEvent(EventOperationProgress, "flash", 2))

	if bus.Dropped() != 1 {
		t.Errorf("Expected 1 dropped event, got %d", bus.Dropped())
	}
}

func TestPublishAfterCloseIsNoop(t *testing.T) {
	bus := NewEventBus(4)
	ch := bus.Subscribe(EventOperationFailed)
	bus.Close()

	// Must not panic on a closed bus.
	bus.Publish(&OperationEvent{
		BaseEvent: BaseEvent{EventType: EventOperationFailed, Time: time.Now()},
		Err:       errors.New("device I/O error"),
	})

	if _, open := <-ch; open {
		t.Error("Subscriber channel should be closed after Close()")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewEventBus(4)
	defer bus.Close()

	ch := bus.Subscribe(EventPortsRefreshed)
	bus.Unsubscribe(EventPortsRefreshed, ch)
	bus.Publish(&PortsEvent{
		BaseEvent: BaseEvent{EventType: EventPortsRefreshed, Time: time.Now()},
		Ports:     3,
	})

	select {
	case ev := <-ch:
		t.Errorf("Unexpected event %v after unsubscribe", ev.Type())
	default:
	}
}
