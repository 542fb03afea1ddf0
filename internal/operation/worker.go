package operation

import (
	"context"
	"fmt"

	"github.com/OpenRTX/OpenRTX-Companion/internal/radio"
)

// worker performs one hardware operation on its own goroutine. Its only
// observable outputs are progress samples, channel closure, and exactly
// one final result. It never touches State directly; the orchestrator
// owns all shared mutation.
type worker struct {
	dev    radio.Device
	kind   Kind
	target radio.FlashTarget
	path   string
	sink   *Channel
	result chan<- error
}

// run executes the device call to completion or failure. The progress
// channel is closed and the result delivered unconditionally, including
// when the device implementation panics.
func (w *worker) run(ctx context.Context) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s worker panic: %v", w.kind, r)
		}
		w.sink.Close()
		w.result <- err
	}()

	switch w.kind {
	case KindFlash:
		err = w.dev.Flash(ctx, w.target, w.target.Port, w.path, w.sink)
	case KindBackup:
		err = w.dev.Backup(ctx, w.target.Port, w.path, w.sink)
	default:
		err = fmt.Errorf("unknown operation kind %q", w.kind)
	}
}
