package operation

import (
	"context"
	"fmt"
	"sync"

	"github.com/OpenRTX/OpenRTX-Companion/internal/logging"
	"github.com/OpenRTX/OpenRTX-Companion/internal/radio"
)

// Orchestrator starts workers and drains their progress into operation
// states. It enforces the exclusive-port invariant: at most one worker
// may own a given serial port at any time.
type Orchestrator struct {
	dev radio.Device
	log *logging.Logger

	ctx context.Context // parent context for worker lifetimes

	mu   sync.Mutex
	busy map[string]Kind // port name -> kind of the running operation
}

// NewOrchestrator creates an orchestrator driving the given device.
// Workers are children of ctx; cancelling it tears down in-flight
// operations on shutdown.
func NewOrchestrator(ctx context.Context, dev radio.Device, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		dev:  dev,
		log:  log,
		ctx:  ctx,
		busy: make(map[string]Kind),
	}
}

// SelectTarget records the device/port selection. Ignored while the
// operation is Running; a selection must never preempt a live worker.
func (o *Orchestrator) SelectTarget(st *State, target radio.FlashTarget) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.status == StatusRunning {
		o.log.Warn().Str("kind", string(st.kind)).Msg("Ignoring target selection during a running operation")
		return
	}
	t := target
	st.target = &t
}

// SelectPath records the firmware image or destination directory.
// Ignored while the operation is Running.
func (o *Orchestrator) SelectPath(st *State, path string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.status == StatusRunning {
		o.log.Warn().Str("kind", string(st.kind)).Msg("Ignoring path selection during a running operation")
		return
	}
	st.path = path
}

// Start validates preconditions and spawns the worker. On a
// precondition failure no worker is spawned, the status is left
// untouched, and the failure is surfaced through the status text.
func (o *Orchestrator) Start(st *State) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.status == StatusRunning {
		st.statusText = "Operation already in progress"
		return ErrAlreadyRunning
	}
	if st.target == nil || st.target.Port == "" {
		st.statusText = "No target selected!"
		return ErrNoTargetSelected
	}
	if st.path == "" {
		st.statusText = "No file selected!"
		return ErrNoPathSelected
	}

	port := st.target.Port
	o.mu.Lock()
	if holder, taken := o.busy[port]; taken {
		o.mu.Unlock()
		st.statusText = fmt.Sprintf("Port %s is busy (%s in progress)", port, holder)
		return ErrResourceBusy
	}
	o.busy[port] = st.kind
	o.mu.Unlock()

	ctx, cancel := context.WithCancel(o.ctx)
	st.progressCh = NewChannel()
	st.result = make(chan error, 1)
	st.cancel = cancel
	st.status = StatusRunning
	st.progress = 0
	st.err = nil
	st.statusText = "Starting…"

	w := &worker{
		dev:    o.dev,
		kind:   st.kind,
		target: *st.target,
		path:   st.path,
		sink:   st.progressCh,
		result: st.result,
	}
	go w.run(ctx)

	o.log.Info().
		Str("kind", string(st.kind)).
		Str("port", port).
		Str("path", st.path).
		Msg("Operation started")
	return nil
}

// Drain is called once per tick for a Running state. It performs a
// best-effort, non-waiting read: only the most recent buffered sample is
// applied, older ones are discarded. Terminal status comes from the
// worker's result channel, not from progress channel emptiness, so a
// failed operation is never misreported as complete.
//
// Returns true when the visible state changed.
func (o *Orchestrator) Drain(st *State) bool {
	st.mu.Lock()
	if st.status != StatusRunning {
		st.mu.Unlock()
		return false
	}
	ch := st.progressCh
	result := st.result
	st.mu.Unlock()

	changed := false
	if sample, ok, _ := ch.Latest(); ok {
		changed = o.observe(st, sample) || changed
	}

	select {
	case err := <-result:
		o.finish(st, err)
		changed = true
	default:
	}
	return changed
}

// observe applies a drained sample. Progress is clamped monotone: a
// misbehaving producer can never make the visible value go backwards.
func (o *Orchestrator) observe(st *State, sample Sample) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.status != StatusRunning {
		return false
	}

	pct := sample.Percent()
	if pct < st.progress {
		return false
	}
	st.progress = pct
	if sample.Transferred < sample.Total {
		st.statusText = fmt.Sprintf("%d/%d bytes", sample.Transferred, sample.Total)
	}
	return true
}

// finish records the worker's final result and releases the port.
func (o *Orchestrator) finish(st *State, err error) {
	st.mu.Lock()
	port := ""
	if st.target != nil {
		port = st.target.Port
	}
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	if err != nil {
		st.status = StatusFailed
		st.err = err
		st.statusText = fmt.Sprintf("%s failed: %v", st.kind.Title(), err)
	} else {
		st.status = StatusComplete
		st.progress = 100
		st.statusText = fmt.Sprintf("%s complete!", st.kind.Title())
	}
	kind := st.kind
	st.mu.Unlock()

	o.mu.Lock()
	delete(o.busy, port)
	o.mu.Unlock()

	if err != nil {
		o.log.Error().Err(err).Str("kind", string(kind)).Str("port", port).Msg("Operation failed")
	} else {
		o.log.Info().Str("kind", string(kind)).Str("port", port).Msg("Operation complete")
	}
}

// PortBusy reports whether a port is currently owned by a worker.
func (o *Orchestrator) PortBusy(port string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, taken := o.busy[port]
	return taken
}
