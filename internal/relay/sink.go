// Package relay drives input events from Bluetooth devices into USB HID
// reports and supervises the per-device forwarding loops.
package relay

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/Alia5/hidrelay/device/consumer"
	"github.com/Alia5/hidrelay/device/keyboard"
	"github.com/Alia5/hidrelay/device/mouse"
	"github.com/Alia5/hidrelay/internal/log"
	"github.com/Alia5/hidrelay/keycode"
)

// ReportWriter flushes encoded reports to one gadget device node.
type ReportWriter interface {
	Flush(report []byte) error
}

// Sink owns the shared HID state for the three gadget categories. Every
// relay and the BLE injector funnel through one Sink; per-category locks
// keep state changes and flushes coherent without coupling the categories'
// fault domains.
type Sink struct {
	logger *slog.Logger
	raw    log.RawLogger

	kbMu sync.Mutex
	kb   keyboard.InputState
	kbW  ReportWriter

	mouseMu sync.Mutex
	mouse   mouse.InputState
	mouseW  ReportWriter

	consMu sync.Mutex
	cons   consumer.InputState
	consW  ReportWriter
}

// NewSink wires the category writers. A nil writer silently drops that
// category's reports.
func NewSink(kb, mouse, cons ReportWriter, logger *slog.Logger, raw log.RawLogger) *Sink {
	return &Sink{logger: logger, raw: raw, kbW: kb, mouseW: mouse, consW: cons}
}

// Press marks a usage held. Pressing an already-held usage is a no-op. The
// keyboard rejects a seventh simultaneous key with ErrCapacityExceeded,
// leaving the six held keys untouched.
func (s *Sink) Press(kc keycode.Keycode) error {
	switch kc.Category {
	case keycode.CategoryKeyboard:
		s.kbMu.Lock()
		defer s.kbMu.Unlock()
		return s.kb.Press(uint8(kc.Usage))
	case keycode.CategoryMouse:
		s.mouseMu.Lock()
		defer s.mouseMu.Unlock()
		s.mouse.Press(uint8(kc.Usage))
	case keycode.CategoryConsumer:
		s.consMu.Lock()
		defer s.consMu.Unlock()
		s.cons.Press(kc.Usage)
	}
	return nil
}

// Release clears a held usage. Releasing an unheld usage is a no-op.
func (s *Sink) Release(kc keycode.Keycode) {
	switch kc.Category {
	case keycode.CategoryKeyboard:
		s.kbMu.Lock()
		defer s.kbMu.Unlock()
		s.kb.Release(uint8(kc.Usage))
	case keycode.CategoryMouse:
		s.mouseMu.Lock()
		defer s.mouseMu.Unlock()
		s.mouse.Release(uint8(kc.Usage))
	case keycode.CategoryConsumer:
		s.consMu.Lock()
		defer s.consMu.Unlock()
		s.cons.Release(kc.Usage)
	}
}

// Move accumulates relative mouse movement for the next flush.
func (s *Sink) Move(dx, dy int32) {
	s.mouseMu.Lock()
	defer s.mouseMu.Unlock()
	s.mouse.Move(dx, dy)
}

// Scroll accumulates wheel movement for the next flush.
func (s *Sink) Scroll(delta int32) {
	s.mouseMu.Lock()
	defer s.mouseMu.Unlock()
	s.mouse.Scroll(delta)
}

// Flush encodes and writes the current report of one category. Mouse deltas
// drain only after the write succeeds, so an unreachable host does not lose
// accumulated movement.
func (s *Sink) Flush(cat keycode.Category) error {
	switch cat {
	case keycode.CategoryKeyboard:
		s.kbMu.Lock()
		defer s.kbMu.Unlock()
		return s.flushLocked(cat, s.kbW, s.kb.BuildReport(), nil)
	case keycode.CategoryMouse:
		s.mouseMu.Lock()
		defer s.mouseMu.Unlock()
		return s.flushLocked(cat, s.mouseW, s.mouse.BuildReport(), s.mouse.Drain)
	case keycode.CategoryConsumer:
		s.consMu.Lock()
		defer s.consMu.Unlock()
		return s.flushLocked(cat, s.consW, s.cons.BuildReport(), nil)
	}
	return nil
}

// ReleaseAll zeroes the held state of the given categories (all three when
// none are named) and flushes the all-released reports, so shutdown and
// relay teardown never leave the host with stuck input.
func (s *Sink) ReleaseAll(cats ...keycode.Category) error {
	if len(cats) == 0 {
		cats = []keycode.Category{keycode.CategoryKeyboard, keycode.CategoryMouse, keycode.CategoryConsumer}
	}
	var errs []error
	for _, cat := range cats {
		switch cat {
		case keycode.CategoryKeyboard:
			s.kbMu.Lock()
			s.kb.ReleaseAll()
			s.kbMu.Unlock()
		case keycode.CategoryMouse:
			s.mouseMu.Lock()
			s.mouse.ReleaseAll()
			s.mouseMu.Unlock()
		case keycode.CategoryConsumer:
			s.consMu.Lock()
			s.cons.ReleaseAll()
			s.consMu.Unlock()
		}
		if err := s.Flush(cat); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Sink) flushLocked(cat keycode.Category, w ReportWriter, report []byte, onSuccess func()) error {
	if w == nil {
		return nil
	}
	if err := w.Flush(report); err != nil {
		return err
	}
	if onSuccess != nil {
		onSuccess()
	}
	s.raw.Log(false, cat.String(), report)
	return nil
}
