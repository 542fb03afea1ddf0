package operation

import "errors"

// Precondition errors detected synchronously by Start. They are surfaced
// through the state's status text without spawning a worker.
var (
	// ErrNoTargetSelected - no device/port selected for the operation.
	ErrNoTargetSelected = errors.New("no target selected")

	// ErrNoPathSelected - no firmware image or destination directory
	// selected for the operation.
	ErrNoPathSelected = errors.New("no path selected")

	// ErrResourceBusy - another operation already owns the serial port.
	ErrResourceBusy = errors.New("device is busy with another operation")

	// ErrAlreadyRunning - this tab already has a live worker.
	ErrAlreadyRunning = errors.New("operation already in progress")
)
