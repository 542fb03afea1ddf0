package operation

import (
	"sync"

	"github.com/OpenRTX/OpenRTX-Companion/internal/constants"
)

// Sample is one progress observation from a worker.
type Sample struct {
	Transferred uint64
	Total       uint64
}

// Percent returns the sample as a 0-100 progress value.
func (s Sample) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Transferred) / float64(s.Total) * 100
}

// Channel is the single-producer/single-consumer conduit carrying
// progress samples from a worker to the orchestrator. It is bounded and
// lossy: the consumer only ever needs the latest sample, so a
// producer outrunning the drain cadence overwrites old samples instead
// of blocking or growing a queue.
type Channel struct {
	ch        chan Sample
	closeOnce sync.Once
}

// NewChannel creates a fresh channel for one operation.
func NewChannel() *Channel {
	return &Channel{ch: make(chan Sample, constants.ProgressChannelDepth)}
}

// Send delivers a sample without ever blocking the worker. When the
// buffer is full the oldest buffered sample is discarded to make room,
// so the newest sample always survives.
func (c *Channel) Send(transferred, total uint64) {
	s := Sample{Transferred: transferred, Total: total}
	for {
		select {
		case c.ch <- s:
			return
		default:
		}
		select {
		case <-c.ch:
		default:
		}
	}
}

// Close marks the producer side finished. Safe to call more than once.
func (c *Channel) Close() {
	c.closeOnce.Do(func() { close(c.ch) })
}

// Latest drains everything currently buffered and returns the newest
// sample. ok reports whether any sample was read; closed reports whether
// the channel is closed and fully drained. Never blocks.
func (c *Channel) Latest() (last Sample, ok bool, closed bool) {
	for {
		select {
		case s, open := <-c.ch:
			if !open {
				return last, ok, true
			}
			last, ok = s, true
		default:
			return last, ok, false
		}
	}
}
