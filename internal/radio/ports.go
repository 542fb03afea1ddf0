package radio

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// sentinelName is shown in port selectors when enumeration finds
// nothing. Selectors render poorly when fed an empty list, so absence of
// devices yields this placeholder instead.
const sentinelName = "No serial port found!"

// Sentinel returns the placeholder entry used when no port exists.
func Sentinel() SerialPort {
	return SerialPort{Name: sentinelName}
}

// radioID keys the supported-radio table by USB vendor/product ID.
type radioID struct {
	vid string
	pid string
}

// knownRadios maps bootloader USB IDs to the radios OpenRTX supports.
// MD-3x0 and MD-UV3x0 share the STM32 DFU bootloader; the T-TWR Plus
// enumerates through the ESP32-S3 built-in USB serial.
var knownRadios = map[radioID]FlashTarget{
	{vid: "0483", pid: "DF11"}: {Manufacturer: "TYT", Model: "MD-3x0 / MD-UV3x0"},
	{vid: "303A", pid: "1001"}: {Manufacturer: "LILYGO", Model: "T-TWR Plus"},
}

// Enumerator discovers serial ports and flashable radios. Polled once at
// startup and again on explicit refresh.
type Enumerator interface {
	SerialPorts() ([]SerialPort, error)
	FlashTargets() ([]FlashTarget, error)
}

// NewEnumerator returns the USB-backed enumerator.
func NewEnumerator() Enumerator {
	return usbEnumerator{}
}

type usbEnumerator struct{}

// SerialPorts lists all serial ports on the system. The result is never
// empty; see Sentinel.
func (usbEnumerator) SerialPorts() ([]SerialPort, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}

	ports := make([]SerialPort, 0, len(details))
	for _, d := range details {
		p := SerialPort{Name: d.Name}
		if d.IsUSB {
			p.Vendor = strings.ToUpper(d.VID)
			p.Product = d.Product
		}
		ports = append(ports, p)
	}
	return ensureSentinel(ports), nil
}

// FlashTargets lists attached radios recognized by their bootloader USB
// IDs, in enumeration order.
func (usbEnumerator) FlashTargets() ([]FlashTarget, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate flash targets: %w", err)
	}

	targets := make([]FlashTarget, 0)
	for _, d := range details {
		if !d.IsUSB {
			continue
		}
		id := radioID{vid: strings.ToUpper(d.VID), pid: strings.ToUpper(d.PID)}
		known, ok := knownRadios[id]
		if !ok {
			continue
		}
		targets = append(targets, FlashTarget{
			Index:        len(targets),
			Manufacturer: known.Manufacturer,
			Model:        known.Model,
			Port:         d.Name,
		})
	}
	return targets, nil
}

func ensureSentinel(ports []SerialPort) []SerialPort {
	if len(ports) == 0 {
		return []SerialPort{Sentinel()}
	}
	return ports
}

// matchTarget looks up a USB ID in the supported-radio table.
func matchTarget(vid, pid string) (FlashTarget, bool) {
	t, ok := knownRadios[radioID{vid: strings.ToUpper(vid), pid: strings.ToUpper(pid)}]
	return t, ok
}
