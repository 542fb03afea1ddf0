package operation

import (
	"context"
	"sync"
	"time"

	"github.com/OpenRTX/OpenRTX-Companion/internal/events"
	"github.com/OpenRTX/OpenRTX-Companion/internal/logging"
	"github.com/OpenRTX/OpenRTX-Companion/internal/radio"
)

// TabID identifies a functional area of the application. The set is
// closed; dispatch is by switch, not by interface.
type TabID string

const (
	TabFlash  TabID = "flash"
	TabBackup TabID = "backup"
)

// Tabs holds one operation state per functional area plus the active
// tab selector, and routes inbound events to the right state. It is the
// application context object: no global mutable state exists outside it.
type Tabs struct {
	orch *Orchestrator
	bus  *events.EventBus
	log  *logging.Logger

	mu     sync.RWMutex
	states map[TabID]*State
	active TabID
}

// NewTabs creates the tab state machine with one state per tab.
func NewTabs(orch *Orchestrator, bus *events.EventBus, log *logging.Logger) *Tabs {
	return &Tabs{
		orch: orch,
		bus:  bus,
		log:  log,
		states: map[TabID]*State{
			TabFlash:  NewState(KindFlash),
			TabBackup: NewState(KindBackup),
		},
		active: TabFlash,
	}
}

// Select changes which tab is rendered. Running operations on other
// tabs continue in the background untouched.
func (t *Tabs) Select(id TabID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.states[id]; ok {
		t.active = id
	}
}

// Active returns the currently selected tab.
func (t *Tabs) Active() TabID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// State returns the operation state for a tab.
func (t *Tabs) State(id TabID) *State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.states[id]
}

// SelectTarget records a device/port selection for a tab.
func (t *Tabs) SelectTarget(id TabID, target radio.FlashTarget) {
	if st := t.State(id); st != nil {
		t.orch.SelectTarget(st, target)
	}
}

// PathPicked routes a file/folder picker result to the tab that opened
// the picker. Routing is by the origin tag, never by the active tab:
// the user may have switched tabs while the dialog was open. A missing
// path means the user cancelled, which is not an error.
func (t *Tabs) PathPicked(origin TabID, path string, ok bool) {
	st := t.State(origin)
	if st == nil {
		return
	}
	if !ok {
		t.log.Debug().Str("tab", string(origin)).Msg("Picker cancelled")
		return
	}
	t.orch.SelectPath(st, path)
}

// Start launches the operation for a tab. Precondition failures are
// surfaced through the state's status text and a rejected event.
func (t *Tabs) Start(id TabID) error {
	st := t.State(id)
	if st == nil {
		return ErrNoTargetSelected
	}
	err := t.orch.Start(st)
	if err != nil {
		t.publish(events.EventOperationRejected, id, st, err)
		return err
	}
	t.publish(events.EventOperationStarted, id, st, nil)
	return nil
}

// DrainAll drains every running state once and publishes the resulting
// visible changes. Called by the tick driver.
func (t *Tabs) DrainAll() {
	t.mu.RLock()
	ids := make([]TabID, 0, len(t.states))
	for id := range t.states {
		ids = append(ids, id)
	}
	t.mu.RUnlock()

	for _, id := range ids {
		st := t.State(id)
		if st.Status() != StatusRunning {
			continue
		}
		if !t.orch.Drain(st) {
			continue
		}
		switch st.Status() {
		case StatusComplete:
			t.publish(events.EventOperationCompleted, id, st, nil)
		case StatusFailed:
			t.publish(events.EventOperationFailed, id, st, st.Err())
		default:
			t.publish(events.EventOperationProgress, id, st, nil)
		}
	}
}

// Run is the tick driver: a fixed-interval timer whose fires are the
// only asynchronous mutation point for visible state. Blocks until ctx
// is cancelled.
func (t *Tabs) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.DrainAll()
		}
	}
}

func (t *Tabs) publish(eventType events.EventType, id TabID, st *State, err error) {
	if t.bus == nil {
		return
	}
	snap := st.Snapshot()
	t.bus.Publish(&events.OperationEvent{
		BaseEvent:  events.BaseEvent{EventType: eventType, Time: time.Now()},
		Tab:        string(id),
		Kind:       string(snap.Kind),
		Status:     string(snap.Status),
		Progress:   snap.Progress,
		StatusText: snap.StatusText,
		Err:        err,
	})
}
