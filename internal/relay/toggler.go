package relay

import (
	"log/slog"
	"sync"

	"github.com/Alia5/hidrelay/evdev"
	"github.com/Alia5/hidrelay/keycode"
	"github.com/Alia5/hidrelay/shortcut"
)

// Toggler pauses and resumes relaying when a configured key combination is
// held on a physical keyboard. Shortcut keys are observed even while
// relaying is paused, otherwise it could never resume.
type Toggler struct {
	gate   *Gate
	sink   *Sink
	logger *slog.Logger
	want   map[uint16]bool

	mu      sync.Mutex
	held    map[uint16]bool
	matched bool
}

// NewToggler builds a toggler for a parsed shortcut combo. Non-keyboard
// keycodes are dropped; a combo without any keyboard key yields nil, which
// disables the feature.
func NewToggler(combo shortcut.Combo, gate *Gate, sink *Sink, logger *slog.Logger) *Toggler {
	want := make(map[uint16]bool)
	for _, kc := range combo {
		if kc.Category == keycode.CategoryKeyboard {
			want[kc.Usage] = true
		}
	}
	if len(want) == 0 {
		return nil
	}
	return &Toggler{gate: gate, sink: sink, logger: logger, want: want, held: make(map[uint16]bool)}
}

// Observe feeds one translated keyboard event. When the held set matches
// the shortcut exactly, relaying toggles; the trigger fires once per match.
func (t *Toggler) Observe(usage uint16, value int32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch value {
	case evdev.KeyPress:
		t.held[usage] = true
	case evdev.KeyRelease:
		delete(t.held, usage)
	default:
		return
	}

	match := len(t.held) == len(t.want)
	if match {
		for u := range t.want {
			if !t.held[u] {
				match = false
				break
			}
		}
	}
	if match && !t.matched {
		t.toggle()
	}
	t.matched = match
}

func (t *Toggler) toggle() {
	pausing := t.gate.Enabled()
	t.gate.SetEnabled(!pausing)
	if pausing {
		t.logger.Info("relaying paused by interrupt shortcut")
		// Anything still pressed must not stay stuck on the host.
		if err := t.sink.ReleaseAll(); err != nil {
			t.logger.Warn("release on pause failed", slog.Any("error", err))
		}
	} else {
		t.logger.Info("relaying resumed by interrupt shortcut")
	}
}
