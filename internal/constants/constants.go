// Package constants holds shared tuning constants for the application.
package constants

import (
	"time"
)

// Operation orchestration
const (
	// TickInterval - cadence at which running operations are drained and
	// the visible status is refreshed. The worker is free to produce
	// samples faster than this; drains only keep the latest one.
	TickInterval = 500 * time.Millisecond

	// ProgressChannelDepth - buffer depth of a progress channel.
	// Drains read the newest buffered sample and discard the rest, so the
	// depth only needs to cover one tick of a fast producer.
	ProgressChannelDepth = 64
)

// Event bus sizing
const (
	// EventBusDefaultBuffer - default per-subscriber buffer. Publish is
	// non-blocking; a full buffer drops the event.
	EventBusDefaultBuffer = 256

	// EventBusMaxBuffer - hard cap on per-subscriber buffer size.
	EventBusMaxBuffer = 4096
)

// Device I/O
const (
	// TransferChunkSize - size of each read/write against the device or
	// firmware image. Smaller chunks give finer progress granularity at
	// the cost of more syscalls.
	TransferChunkSize = 64 * 1024

	// DefaultBaudRate - serial link speed used for raw image transfers.
	DefaultBaudRate = 115200
)
