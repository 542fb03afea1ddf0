package radio

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// recordingSink collects every sample a device pushes.
type recordingSink struct {
	mu      sync.Mutex
	samples [][2]uint64
}

func (r *recordingSink) Send(transferred, total uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, [2]uint64{transferred, total})
}

func (r *recordingSink) last() ([2]uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.samples) == 0 {
		return [2]uint64{}, false
	}
	return r.samples[len(r.samples)-1], true
}

func writeFirmware(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openrtx_fw.bin")
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSimulatorFlashReportsFullProgress(t *testing.T) {
	sim := &Simulator{}
	sink := &recordingSink{}
	fw := writeFirmware(t, 200*1024)

	err := sim.Flash(context.Background(), FlashTarget{Port: "COM3"}, "COM3", fw, sink)
	if err != nil {
		t.Fatalf("Flash: %v", err)
	}

	last, ok := sink.last()
	if !ok {
		t.Fatal("Expected at least one progress sample")
	}
	if last[0] != last[1] || last[0] != 200*1024 {
		t.Errorf("Expected final sample 204800/204800, got %d/%d", last[0], last[1])
	}

	// Samples must be non-decreasing in transferred bytes.
	prev := uint64(0)
	for _, s := range sink.samples {
		if s[0] < prev {
			t.Errorf("Transferred went backwards: %d after %d", s[0], prev)
		}
		prev = s[0]
	}
}

func TestSimulatorFlashMissingImage(t *testing.T) {
	sim := &Simulator{}
	err := sim.Flash(context.Background(), FlashTarget{}, "COM3", "/nonexistent/fw.bin", &recordingSink{})
	if err == nil {
		t.Error("Expected error for missing firmware image")
	}
}

func TestSimulatorFlashEmptyImage(t *testing.T) {
	sim := &Simulator{}
	fw := writeFirmware(t, 0)
	err := sim.Flash(context.Background(), FlashTarget{}, "COM3", fw, &recordingSink{})
	if err == nil {
		t.Error("Expected error for empty firmware image")
	}
}

func TestSimulatorBackupWritesImage(t *testing.T) {
	sim := &Simulator{BackupSize: 128 * 1024}
	sink := &recordingSink{}
	dest := t.TempDir()

	if err := sim.Backup(context.Background(), "COM3", dest, sink); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected one backup file, got %d", len(entries))
	}
	info, err := entries[0].Info()
	if err != nil {
		t.Fatal(err)
	}
	if uint64(info.Size()) != sim.BackupSize {
		t.Errorf("Expected backup of %d bytes, got %d", sim.BackupSize, info.Size())
	}

	last, ok := sink.last()
	if !ok || last[0] != sim.BackupSize {
		t.Errorf("Expected final sample at %d bytes, got %v", sim.BackupSize, last)
	}
}

func TestSimulatorBackupCancelled(t *testing.T) {
	sim := &Simulator{BackupSize: 1 << 20}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sim.Backup(ctx, "COM3", t.TempDir(), &recordingSink{})
	if err == nil {
		t.Error("Expected context cancellation error")
	}
}
