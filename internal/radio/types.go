// Package radio provides the device-facing surface of the application:
// serial port and flash target discovery, and the Device interface that
// performs the actual flash and backup I/O.
package radio

import (
	"context"
	"fmt"
)

// SerialPort describes one enumerated serial port.
type SerialPort struct {
	Name    string // OS port name, e.g. "COM3" or "/dev/ttyACM0"
	Vendor  string // USB vendor ID, empty for non-USB ports
	Product string // USB product description, empty when unknown
}

// String renders the port for selector widgets.
func (p SerialPort) String() string {
	if p.Product == "" {
		return p.Name
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.Product)
}

// IsSentinel reports whether this entry is the placeholder shown when no
// real port was found.
func (p SerialPort) IsSentinel() bool {
	return p.Name == sentinelName
}

// FlashTarget describes one radio reachable for flashing.
type FlashTarget struct {
	Index        int    // Position in the enumeration order
	Manufacturer string // e.g. "TYT"
	Model        string // e.g. "MD-UV3x0"
	Port         string // Serial port the radio is attached to
}

// String renders the target for selector widgets.
func (t FlashTarget) String() string {
	return fmt.Sprintf("%s %s @ %s", t.Manufacturer, t.Model, t.Port)
}

// TargetFromPort builds a flash target for operations that only need a
// serial port, such as backups.
func TargetFromPort(p SerialPort) FlashTarget {
	return FlashTarget{
		Manufacturer: p.Vendor,
		Model:        p.Product,
		Port:         p.Name,
	}
}

// ProgressSink receives byte-count progress samples from a running
// device operation. Implementations must not block the caller.
type ProgressSink interface {
	Send(transferred, total uint64)
}

// Device performs the long-running hardware operations. Both calls block
// until the operation completes or fails and push samples into the sink
// at a rate determined by the underlying link.
type Device interface {
	// Flash writes the firmware image at firmwarePath onto the target.
	Flash(ctx context.Context, target FlashTarget, port, firmwarePath string, sink ProgressSink) error

	// Backup dumps the radio contents into a new file under destDir.
	Backup(ctx context.Context, port, destDir string, sink ProgressSink) error
}
