package radio

import (
	"testing"
)

func TestEnsureSentinelOnEmptyScan(t *testing.T) {
	ports := ensureSentinel(nil)
	if len(ports) != 1 {
		t.Fatalf("Expected exactly one placeholder entry, got %d", len(ports))
	}
	if !ports[0].IsSentinel() {
		t.Errorf("Expected sentinel entry, got %q", ports[0].Name)
	}
}

func TestEnsureSentinelKeepsRealPorts(t *testing.T) {
	in := []SerialPort{{Name: "COM3", Vendor: "0483", Product: "STM32 BOOTLOADER"}}
	ports := ensureSentinel(in)
	if len(ports) != 1 || ports[0].Name != "COM3" {
		t.Errorf("Real ports should pass through unchanged, got %v", ports)
	}
	if ports[0].IsSentinel() {
		t.Error("Real port must not be flagged as sentinel")
	}
}

func TestMatchTargetKnownRadios(t *testing.T) {
	cases := []struct {
		vid, pid string
		model    string
	}{
		{"0483", "df11", "MD-3x0 / MD-UV3x0"},
		{"0483", "DF11", "MD-3x0 / MD-UV3x0"},
		{"303a", "1001", "T-TWR Plus"},
	}
	for _, c := range cases {
		tgt, ok := matchTarget(c.vid, c.pid)
		if !ok {
			t.Errorf("Expected %s:%s to match a known radio", c.vid, c.pid)
			continue
		}
		if tgt.Model != c.model {
			t.Errorf("Expected model %q for %s:%s, got %q", c.model, c.vid, c.pid, tgt.Model)
		}
	}
}

func TestMatchTargetUnknownID(t *testing.T) {
	if _, ok := matchTarget("1234", "abcd"); ok {
		t.Error("Unknown USB ID should not match a radio")
	}
}

func TestSerialPortString(t *testing.T) {
	p := SerialPort{Name: "/dev/ttyACM0", Product: "T-TWR Plus"}
	if got := p.String(); got != "/dev/ttyACM0 (T-TWR Plus)" {
		t.Errorf("Unexpected port label %q", got)
	}
	bare := SerialPort{Name: "COM1"}
	if got := bare.String(); got != "COM1" {
		t.Errorf("Unexpected bare port label %q", got)
	}
}

func TestTargetFromPort(t *testing.T) {
	tgt := TargetFromPort(SerialPort{Name: "COM3", Vendor: "0483", Product: "STM32"})
	if tgt.Port != "COM3" {
		t.Errorf("Expected port COM3, got %q", tgt.Port)
	}
}
