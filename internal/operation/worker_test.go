package operation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/OpenRTX/OpenRTX-Companion/internal/radio"
)

// fakeDevice is a controllable radio.Device for orchestrator and worker
// tests. It emits the configured samples, optionally blocks until
// released, then returns the configured error.
type fakeDevice struct {
	samples  [][2]uint64
	err      error
	panicMsg string
	release  chan struct{} // when non-nil, block before returning

	mu          sync.Mutex
	flashCalls  int
	backupCalls int
}

func (d *fakeDevice) emit(ctx context.Context, sink radio.ProgressSink) error {
	for _, s := range d.samples {
		sink.Send(s[0], s[1])
	}
	if d.panicMsg != "" {
		panic(d.panicMsg)
	}
	if d.release != nil {
		select {
		case <-d.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return d.err
}

func (d *fakeDevice) Flash(ctx context.Context, target radio.FlashTarget, port, firmwarePath string, sink radio.ProgressSink) error {
	d.mu.Lock()
	d.flashCalls++
	d.mu.Unlock()
	return d.emit(ctx, sink)
}

func (d *fakeDevice) Backup(ctx context.Context, port, destDir string, sink radio.ProgressSink) error {
	d.mu.Lock()
	d.backupCalls++
	d.mu.Unlock()
	return d.emit(ctx, sink)
}

func (d *fakeDevice) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flashCalls + d.backupCalls
}

func runWorker(kind Kind, dev radio.Device) (*Channel, chan error) {
	sink := NewChannel()
	result := make(chan error, 1)
	w := &worker{
		dev:    dev,
		kind:   kind,
		target: radio.FlashTarget{Port: "COM3"},
		path:   "/tmp/fw.bin",
		sink:   sink,
		result: result,
	}
	w.run(context.Background())
	return sink, result
}

func TestWorkerSuccessClosesChannelAndDeliversNilResult(t *testing.T) {
	dev := &fakeDevice{samples: [][2]uint64{{50, 200}, {200, 200}}}
	sink, result := runWorker(KindFlash, dev)

	sample, ok, closed := sink.Latest()
	if !ok || sample.Transferred != 200 {
		t.Errorf("Expected final sample 200, got ok=%v sample=%v", ok, sample)
	}
	if !closed {
		t.Error("Worker must close the channel on exit")
	}

	select {
	case err := <-result:
		if err != nil {
			t.Errorf("Expected nil result, got %v", err)
		}
	default:
		t.Error("Worker must deliver exactly one result")
	}
}

func TestWorkerErrorStillClosesChannel(t *testing.T) {
	devErr := errors.New("serial link dropped")
	dev := &fakeDevice{samples: [][2]uint64{{50, 200}}, err: devErr}
	sink, result := runWorker(KindBackup, dev)

	if _, _, closed := sink.Latest(); !closed {
		t.Error("Channel must be closed even when the device errors")
	}
	if err := <-result; !errors.Is(err, devErr) {
		t.Errorf("Expected device error, got %v", err)
	}
}

func TestWorkerPanicIsContainedAndReported(t *testing.T) {
	dev := &fakeDevice{panicMsg: "bootloader went away"}
	sink, result := runWorker(KindFlash, dev)

	if _, _, closed := sink.Latest(); !closed {
		t.Error("Channel must be closed after a panic")
	}
	err := <-result
	if err == nil {
		t.Fatal("Expected a panic to surface as an error result")
	}
	if !strings.Contains(err.Error(), "bootloader went away") {
		t.Errorf("Panic detail missing from error: %v", err)
	}
}

func TestWorkerUnknownKind(t *testing.T) {
	sink := NewChannel()
	result := make(chan error, 1)
	w := &worker{dev: &fakeDevice{}, kind: Kind("restore"), sink: sink, result: result}
	w.run(context.Background())

	if err := <-result; err == nil {
		t.Error("Expected error for unknown operation kind")
	}
}
