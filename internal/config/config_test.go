package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OpenRTX/OpenRTX-Companion/internal/constants"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	if err == nil {
		t.Fatal("Expected error for explicit missing config file")
	}

	s, err = Load("")
	if err != nil {
		t.Fatalf("Load with no file should fall back to defaults: %v", err)
	}
	if s.TickInterval != constants.TickInterval {
		t.Errorf("Expected default tick interval %v, got %v", constants.TickInterval, s.TickInterval)
	}
	if s.BackupDir == "" {
		t.Error("BackupDir should never be empty")
	}
	if s.Simulate {
		t.Error("Simulate should default to false")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "port: /dev/ttyACM0\nbackup_dir: " + dir + "\nsimulate: true\ntick_interval: 250ms\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Port != "/dev/ttyACM0" {
		t.Errorf("Expected port /dev/ttyACM0, got %q", s.Port)
	}
	if s.BackupDir != dir {
		t.Errorf("Expected backup dir %q, got %q", dir, s.BackupDir)
	}
	if !s.Simulate {
		t.Error("Expected simulate true")
	}
	if s.TickInterval != 250*time.Millisecond {
		t.Errorf("Expected tick interval 250ms, got %v", s.TickInterval)
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("OPENRTX_PORT", "COM7")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Port != "COM7" {
		t.Errorf("Expected env port COM7, got %q", s.Port)
	}
}

func TestZeroTickIntervalFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("tick_interval: 0s\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.TickInterval != constants.TickInterval {
		t.Errorf("Zero interval should fall back to %v, got %v", constants.TickInterval, s.TickInterval)
	}
}
