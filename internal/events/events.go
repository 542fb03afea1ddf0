// Package events provides a bounded, lossy event bus connecting the
// operation orchestrator to the front-ends. Publish never blocks; a
// subscriber that falls behind loses events rather than stalling the
// producer.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/OpenRTX/OpenRTX-Companion/internal/constants"
)

// EventType defines the types of events that can be emitted.
type EventType string

const (
	EventOperationStarted   EventType = "operation_started"   // Worker spawned, status now Running
	EventOperationProgress  EventType = "operation_progress"  // Drained a fresher progress sample
	EventOperationCompleted EventType = "operation_completed" // Worker finished successfully
	EventOperationFailed    EventType = "operation_failed"    // Worker finished with an error
	EventOperationRejected  EventType = "operation_rejected"  // Start refused by a precondition check
	EventPortsRefreshed     EventType = "ports_refreshed"     // Serial port / flash target scan completed
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// OperationEvent describes a state change of one tab's operation.
// Tab and Kind are plain strings so this package stays a leaf.
type OperationEvent struct {
	BaseEvent
	Tab        string  // Originating tab ("flash", "backup")
	Kind       string  // Operation kind
	Status     string  // Current status after the change
	Progress   float64 // 0 to 100
	StatusText string  // Human-readable last-known message
	Err        error   // Failure detail, nil unless EventOperationFailed
}

// PortsEvent describes a completed device scan.
type PortsEvent struct {
	BaseEvent
	Ports   int // Serial ports found (excluding the placeholder sentinel)
	Targets int // Flash targets found
}

// EventBus manages event subscriptions and publishing.
type EventBus struct {
	subscribers map[EventType][]chan Event
	all         []chan Event
	mu          sync.RWMutex
	bufferSize  int
	closed      bool
	dropped     atomic.Int64
}

// NewEventBus creates a new event bus with the specified per-subscriber
// buffer size. Zero or negative selects the default.
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type.
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

// SubscribeAll creates a subscription to all events.
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

// Publish sends an event to all subscribers without blocking.
// Events to full buffers are dropped and counted.
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
			eb.dropped.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.dropped.Add(1)
		}
	}
}

// Unsubscribe removes a subscription channel from a specific event type.
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

// Close shuts down the event bus and closes all subscriber channels.
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

// Dropped returns the total number of events dropped due to full buffers.
func (eb *EventBus) Dropped() int64 {
	return eb.dropped.Load()
}
