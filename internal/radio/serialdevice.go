package radio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.bug.st/serial"

	"github.com/OpenRTX/OpenRTX-Companion/internal/constants"
)

// SerialDevice implements Device over a raw serial link. It streams the
// firmware image to the port and reads a fixed-size dump back for
// backups. Protocol framing (rtxlink) lives on the radio side; this end
// only moves bytes and reports progress.
type SerialDevice struct {
	// BaudRate for the link. Defaults to constants.DefaultBaudRate.
	BaudRate int

	// DumpSize is the number of bytes a backup reads from the radio.
	DumpSize uint64

	// ReadTimeout bounds each read during a backup. A radio that stops
	// transmitting mid-dump surfaces as a device I/O error instead of a
	// hang.
	ReadTimeout time.Duration
}

// NewSerialDevice returns a serial device with default link settings.
func NewSerialDevice() *SerialDevice {
	return &SerialDevice{
		BaudRate:    constants.DefaultBaudRate,
		DumpSize:    1 << 20,
		ReadTimeout: 5 * time.Second,
	}
}

func (d *SerialDevice) open(port string) (serial.Port, error) {
	mode := &serial.Mode{BaudRate: d.BaudRate}
	p, err := serial.Open(port, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", port, err)
	}
	return p, nil
}

// Flash streams the firmware image to the radio's bootloader.
func (d *SerialDevice) Flash(ctx context.Context, target FlashTarget, port, firmwarePath string, sink ProgressSink) error {
	f, err := os.Open(firmwarePath)
	if err != nil {
		return fmt.Errorf("open firmware image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat firmware image: %w", err)
	}
	total := uint64(info.Size())
	if total == 0 {
		return fmt.Errorf("firmware image %s is empty", firmwarePath)
	}

	link, err := d.open(port)
	if err != nil {
		return err
	}
	defer link.Close()

	buf := make([]byte, constants.TransferChunkSize)
	var done uint64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := f.Read(buf)
		if n > 0 {
			if _, werr := link.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write to %s: %w", port, werr)
			}
			done += uint64(n)
			sink.Send(done, total)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("read firmware image: %w", rerr)
		}
	}
	if err := link.Drain(); err != nil {
		return fmt.Errorf("drain %s: %w", port, err)
	}
	return nil
}

// Backup reads the radio's memory dump into a timestamped file under
// destDir.
func (d *SerialDevice) Backup(ctx context.Context, port, destDir string, sink ProgressSink) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	link, err := d.open(port)
	if err != nil {
		return err
	}
	defer link.Close()

	if err := link.SetReadTimeout(d.ReadTimeout); err != nil {
		return fmt.Errorf("set read timeout on %s: %w", port, err)
	}

	name := fmt.Sprintf("openrtx_backup_%s.bin", time.Now().Format("20060102_150405"))
	out, err := os.Create(filepath.Join(destDir, name))
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer out.Close()

	total := d.DumpSize
	buf := make([]byte, constants.TransferChunkSize)
	var done uint64
	for done < total {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := link.Read(buf)
		if n == 0 && rerr == nil {
			// Read timeout expired with no data.
			return fmt.Errorf("radio on %s stopped transmitting at %d/%d bytes", port, done, total)
		}
		if rerr != nil {
			return fmt.Errorf("read from %s: %w", port, rerr)
		}
		if _, werr := out.Write(buf[:n]); werr != nil {
			return fmt.Errorf("write backup file: %w", werr)
		}
		done += uint64(n)
		sink.Send(done, total)
	}
	return out.Sync()
}
