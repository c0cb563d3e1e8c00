// Package gadget writes HID reports to USB gadget character devices and
// manages the configfs composite gadget backing them.
package gadget

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// A gadget write blocks while the host is not polling the interrupt
// endpoint; the short deadline turns that into a transient timeout.
const (
	writeDeadline    = 5 * time.Millisecond
	maxWriteAttempts = 3
	retryDelay       = 10 * time.Millisecond
)

type deviceFile interface {
	io.WriteCloser
	SetWriteDeadline(t time.Time) error
}

// WriteError reports a flush that kept failing after bounded retries. It is
// scoped to one gadget so callers can halt that category without touching
// the others.
type WriteError struct {
	Gadget   string
	Attempts int
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("gadget %s: write failed after %d attempts: %v", e.Gadget, e.Attempts, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Writer owns the exclusively-opened handle to one gadget device node and
// serializes report writes to it. A Writer is shared by every relay and by
// the BLE injector targeting its category.
type Writer struct {
	name   string
	logger *slog.Logger

	mu sync.Mutex
	f  deviceFile
}

// Open opens a gadget device node for writing. The returned Writer is the
// node's sole writer for the lifetime of the process.
func Open(path, name string, logger *slog.Logger) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open gadget %s: %w", path, err)
	}
	return &Writer{name: name, logger: logger, f: f}, nil
}

// Name returns the gadget function name the writer was opened for.
func (w *Writer) Name() string {
	return w.name
}

// Flush writes one encoded report. Concurrent callers are serialized in
// arrival order. Transient failures are retried with a short delay;
// exhausting the retries returns a *WriteError.
func (w *Writer) Flush(report []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	attempts := 0
	var err error
	for attempts < maxWriteAttempts {
		if attempts > 0 {
			time.Sleep(retryDelay)
		}
		attempts++
		err = w.writeOnce(report)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			break
		}
		w.logger.Debug("gadget write retry",
			slog.String("gadget", w.name),
			slog.Int("attempt", attempts),
			slog.Any("error", err))
	}
	return &WriteError{Gadget: w.name, Attempts: attempts, Err: err}
}

// Close releases the device handle.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

func (w *Writer) writeOnce(report []byte) error {
	if err := w.f.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil && !errors.Is(err, os.ErrNoDeadline) {
		return err
	}
	n, err := w.f.Write(report)
	if err != nil {
		return err
	}
	if n < len(report) {
		return io.ErrShortWrite
	}
	return nil
}

func isTransient(err error) bool {
	return os.IsTimeout(err) ||
		errors.Is(err, unix.EAGAIN) ||
		errors.Is(err, unix.ESHUTDOWN)
}
