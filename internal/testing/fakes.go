// Package testing provides fakes shared by the relay and BLE server tests.
package testing

import (
	"io/fs"
	"log/slog"
	"sync"

	"github.com/Alia5/hidrelay/evdev"
)

// FakeReportWriter records flushed reports and can fail on demand.
type FakeReportWriter struct {
	mu      sync.Mutex
	reports [][]byte
	err     error
}

func (w *FakeReportWriter) Flush(report []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.reports = append(w.reports, append([]byte(nil), report...))
	return nil
}

// Fail makes every subsequent Flush return err; nil restores success.
func (w *FakeReportWriter) Fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.err = err
}

// Reports returns a copy of everything flushed so far.
func (w *FakeReportWriter) Reports() [][]byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([][]byte, len(w.reports))
	copy(out, w.reports)
	return out
}

// LastReport returns the most recently flushed report, nil when none.
func (w *FakeReportWriter) LastReport() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.reports) == 0 {
		return nil
	}
	return w.reports[len(w.reports)-1]
}

// ScriptedSource feeds relay loops from a queue instead of a device node.
// Close or FailWith unblock a pending NextEvent.
type ScriptedSource struct {
	info   evdev.Info
	events chan evdev.InputEvent
	done   chan struct{}
	once   sync.Once

	mu      sync.Mutex
	err     error
	grabbed bool
}

func NewScriptedSource(info evdev.Info, events ...evdev.InputEvent) *ScriptedSource {
	s := &ScriptedSource{
		info:   info,
		events: make(chan evdev.InputEvent, 256),
		done:   make(chan struct{}),
	}
	for _, ev := range events {
		s.events <- ev
	}
	return s
}

// Emit queues another event.
func (s *ScriptedSource) Emit(ev evdev.InputEvent) {
	s.events <- ev
}

// FailWith ends the stream; once the queue drains, NextEvent returns err.
func (s *ScriptedSource) FailWith(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.once.Do(func() { close(s.done) })
}

func (s *ScriptedSource) NextEvent() (evdev.InputEvent, error) {
	select {
	case ev := <-s.events:
		return ev, nil
	case <-s.done:
		// Queued events drain before the failure surfaces.
		select {
		case ev := <-s.events:
			return ev, nil
		default:
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.err != nil {
			return evdev.InputEvent{}, s.err
		}
		return evdev.InputEvent{}, fs.ErrClosed
	}
}

func (s *ScriptedSource) Grab() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grabbed = true
	return nil
}

// Grabbed reports whether the relay requested an exclusive hold.
func (s *ScriptedSource) Grabbed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grabbed
}

func (s *ScriptedSource) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *ScriptedSource) Info() evdev.Info {
	return s.info
}

// KeyEvent builds an EV_KEY event for scripted sources.
func KeyEvent(code uint16, value int32) evdev.InputEvent {
	return evdev.InputEvent{Type: evdev.EvKey, Code: code, Value: value}
}

// RelEvent builds an EV_REL event for scripted sources.
func RelEvent(code uint16, value int32) evdev.InputEvent {
	return evdev.InputEvent{Type: evdev.EvRel, Code: code, Value: value}
}

// SynEvent builds the synchronization marker that flushes pending state.
func SynEvent() evdev.InputEvent {
	return evdev.InputEvent{Type: evdev.EvSyn, Code: evdev.SynReport}
}

// StaticTrust answers trust queries from a fixed allow set.
type StaticTrust map[string]bool

func (t StaticTrust) Trusted(addr string) bool {
	return t[addr]
}

// DiscardLogger returns a logger that swallows all records.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
