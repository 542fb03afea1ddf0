package radio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/OpenRTX/OpenRTX-Companion/internal/constants"
)

// Simulator implements Device without radio hardware. Flash reads the
// firmware image chunk by chunk and discards the bytes; Backup writes a
// zero-filled image under the destination directory. Both pace their
// progress samples so the orchestrator sees a realistic slow producer.
type Simulator struct {
	// ChunkDelay is the pause after each chunk. Zero disables pacing,
	// which tests rely on.
	ChunkDelay time.Duration

	// BackupSize is the size of the synthetic backup image.
	BackupSize uint64
}

// NewSimulator returns a simulator with interactive pacing.
func NewSimulator() *Simulator {
	return &Simulator{
		ChunkDelay: 50 * time.Millisecond,
		BackupSize: 1 << 20,
	}
}

// Flash reads the firmware image to completion, reporting progress.
func (s *Simulator) Flash(ctx context.Context, target FlashTarget, port, firmwarePath string, sink ProgressSink) error {
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

	buf := make([]byte, constants.TransferChunkSize)
	var done uint64
	for done < total {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := f.Read(buf)
		if n > 0 {
			done += uint64(n)
			sink.Send(done, total)
		}
		if err != nil {
			if done >= total {
				break
			}
			return fmt.Errorf("read firmware image: %w", err)
		}
		s.pace()
	}
	return nil
}

// Backup writes a timestamped image file into destDir, reporting
// progress.
func (s *Simulator) Backup(ctx context.Context, port, destDir string, sink ProgressSink) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("openrtx_backup_%s.bin", time.Now().Format("20060102_150405"))
	path := filepath.Join(destDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close()

	total := s.BackupSize
	chunk := make([]byte, constants.TransferChunkSize)
	var done uint64
	for done < total {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := uint64(len(chunk))
		if total-done < n {
			n = total - done
		}
		if _, err := f.Write(chunk[:n]); err != nil {
			return fmt.Errorf("write backup file: %w", err)
		}
		done += n
		sink.Send(done, total)
		s.pace()
	}
	return f.Sync()
}

func (s *Simulator) pace() {
	if s.ChunkDelay > 0 {
		time.Sleep(s.ChunkDelay)
	}
}
