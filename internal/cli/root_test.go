package cli

import (
	"strings"
	"testing"

	"github.com/OpenRTX/OpenRTX-Companion/internal/config"
	"github.com/OpenRTX/OpenRTX-Companion/internal/radio"
)

type fakeEnum struct {
	ports   []radio.SerialPort
	targets []radio.FlashTarget
}

func (f fakeEnum) SerialPorts() ([]radio.SerialPort, error)   { return f.ports, nil }
func (f fakeEnum) FlashTargets() ([]radio.FlashTarget, error) { return f.targets, nil }

func withSettings(t *testing.T, s *config.Settings) {
	t.Helper()
	prev := settings
	settings = s
	t.Cleanup(func() { settings = prev })
}

func TestResolveTargetSingleRadio(t *testing.T) {
	withSettings(t, &config.Settings{})
	enum := fakeEnum{targets: []radio.FlashTarget{
		{Manufacturer: "TYT", Model: "MD-UV3x0", Port: "COM3"},
	}}

	target, err := resolveTarget(enum)
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if target.Port != "COM3" {
		t.Errorf("Expected COM3, got %s", target.Port)
	}
}

func TestResolveTargetNoRadio(t *testing.T) {
	withSettings(t, &config.Settings{})
	if _, err := resolveTarget(fakeEnum{}); err == nil {
		t.Error("Expected an error with no radio attached")
	}
}

func TestResolveTargetMultipleRadiosNeedsPort(t *testing.T) {
	withSettings(t, &config.Settings{})
	enum := fakeEnum{targets: []radio.FlashTarget{
		{Manufacturer: "TYT", Model: "MD-3x0 / MD-UV3x0", Port: "COM3"},
		{Manufacturer: "LILYGO", Model: "T-TWR Plus", Port: "COM7"},
	}}

	_, err := resolveTarget(enum)
	if err == nil {
		t.Fatal("Expected an error with multiple radios")
	}
	if !strings.Contains(err.Error(), "--port") {
		t.Errorf("Error should point at --port, got %v", err)
	}
}

func TestResolveTargetExplicitPortPicksMatchingRadio(t *testing.T) {
	withSettings(t, &config.Settings{Port: "COM7"})
	enum := fakeEnum{targets: []radio.FlashTarget{
		{Manufacturer: "TYT", Model: "MD-3x0 / MD-UV3x0", Port: "COM3"},
		{Manufacturer: "LILYGO", Model: "T-TWR Plus", Port: "COM7"},
	}}

	target, err := resolveTarget(enum)
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if target.Manufacturer != "LILYGO" {
		t.Errorf("Expected the radio on COM7, got %s", target.String())
	}
}

func TestResolveTargetExplicitUnknownPortTrusted(t *testing.T) {
	withSettings(t, &config.Settings{Port: "/dev/ttyACM5"})

	target, err := resolveTarget(fakeEnum{})
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if target.Port != "/dev/ttyACM5" {
		t.Errorf("Expected the explicit port, got %s", target.Port)
	}
}
