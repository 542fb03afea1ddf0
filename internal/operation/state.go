package operation

import (
	"context"
	"sync"

	"github.com/OpenRTX/OpenRTX-Companion/internal/radio"
)

// Kind identifies which hardware operation a tab performs. Immutable
// once an operation starts.
type Kind string

const (
	KindFlash  Kind = "flash"
	KindBackup Kind = "backup"
)

// Title returns the capitalized name used in status messages.
func (k Kind) Title() string {
	switch k {
	case KindFlash:
		return "Flash"
	case KindBackup:
		return "Backup"
	default:
		return string(k)
	}
}

// Status is the lifecycle state of a tab's operation.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// State is the orchestrator-owned record of one tab's current operation.
// The UI thread mutates selections through Tabs; the tick goroutine
// mutates progress through Orchestrator.Drain. All access goes through
// the mutex.
type State struct {
	kind Kind

	mu         sync.RWMutex
	target     *radio.FlashTarget
	path       string
	status     Status
	progress   float64 // 0 to 100, monotone non-decreasing while Running
	statusText string
	err        error

	// Per-operation plumbing, recreated on every Start. The worker owns
	// the channel's producer side; State owns the consumer side.
	progressCh *Channel
	result     chan error
	cancel     context.CancelFunc
}

// NewState creates an idle state for the given operation kind.
func NewState(kind Kind) *State {
	return &State{
		kind:       kind,
		status:     StatusIdle,
		statusText: "Select an action",
	}
}

// Kind returns the operation kind bound to this state.
func (s *State) Kind() Kind {
	return s.kind
}

// Snapshot is a copy of the displayable fields, safe to hand to a
// renderer.
type Snapshot struct {
	Kind       Kind
	Target     *radio.FlashTarget
	Path       string
	Status     Status
	Progress   float64
	StatusText string
	Err        error
}

// Snapshot returns a consistent copy of the state for display.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tgt *radio.FlashTarget
	if s.target != nil {
		t := *s.target
		tgt = &t
	}
	return Snapshot{
		Kind:       s.kind,
		Target:     tgt,
		Path:       s.path,
		Status:     s.status,
		Progress:   s.progress,
		StatusText: s.statusText,
		Err:        s.err,
	}
}

// Status returns the current lifecycle status.
func (s *State) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Progress returns the current 0-100 progress value.
func (s *State) Progress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// StatusText returns the human-readable last-known message.
func (s *State) StatusText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusText
}

// Target returns the selected flash target, nil when none is selected.
func (s *State) Target() *radio.FlashTarget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target
}

// Path returns the selected firmware image or destination directory.
func (s *State) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Err returns the failure detail, nil unless status is Failed.
func (s *State) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// setStatusText updates only the message line.
func (s *State) setStatusText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusText = text
}
