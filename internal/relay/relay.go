package relay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Alia5/hidrelay/evdev"
	"github.com/Alia5/hidrelay/internal/log"
	"github.com/Alia5/hidrelay/keycode"
)

// State is the lifecycle phase of one relayed device.
type State int

const (
	StateDiscovering State = iota
	StateOpening
	StateActive
	StateDisconnected
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateDiscovering:
		return "discovering"
	case StateOpening:
		return "opening"
	case StateActive:
		return "active"
	case StateDisconnected:
		return "disconnected"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// EventSource is the open event stream of one input device.
type EventSource interface {
	NextEvent() (evdev.InputEvent, error)
	Grab() error
	Close() error
	Info() evdev.Info
}

// Reconnect backoff bounds.
const (
	reconnectBase = time.Second
	reconnectMax  = 30 * time.Second
)

// Handle tracks one physical device across connects and disconnects. The
// supervisor creates it at first discovery and keeps it for the process
// lifetime; reconnects reuse the handle, only the node path may change.
type Handle struct {
	id      string
	grab    bool
	logger  *slog.Logger
	sink    *Sink
	gate    *Gate
	toggler *Toggler

	open func(path string) (EventSource, error)
	kick chan struct{}

	mu    sync.Mutex
	path  string
	name  string
	state State

	// Per-connection bookkeeping, touched only by the relay goroutine.
	held    map[keycode.Keycode]bool
	dirty   map[keycode.Category]bool
	touched map[keycode.Category]bool
}

func newHandle(id string, info evdev.Info, grab bool, sink *Sink, gate *Gate, toggler *Toggler, open func(string) (EventSource, error), logger *slog.Logger) *Handle {
	return &Handle{
		id:      id,
		grab:    grab,
		logger:  logger.With(slog.String("device", info.Name), slog.String("id", id)),
		sink:    sink,
		gate:    gate,
		toggler: toggler,
		open:    open,
		kick:    make(chan struct{}, 1),
		path:    info.Path,
		name:    info.Name,
		state:   StateDiscovering,
	}
}

// ID returns the stable registry key: the Bluetooth address when the device
// reports one, the node path otherwise.
func (h *Handle) ID() string { return h.id }

// Name returns the device display name.
func (h *Handle) Name() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.name
}

// Path returns the current device node path.
func (h *Handle) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.path
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Handle) setState(s State) {
	h.mu.Lock()
	old := h.state
	h.state = s
	h.mu.Unlock()
	if old != s {
		h.logger.Debug("relay state changed",
			slog.String("from", old.String()),
			slog.String("to", s.String()))
	}
}

// setPath records the node path of a rediscovered device; Bluetooth
// reconnects regularly land on a different event number.
func (h *Handle) setPath(path string) {
	h.mu.Lock()
	h.path = path
	h.mu.Unlock()
}

// kickReconnect cuts a pending backoff short after the device reappeared.
func (h *Handle) kickReconnect() {
	select {
	case h.kick <- struct{}{}:
	default:
	}
}

// run owns the handle's lifecycle until ctx is cancelled: open the node,
// relay events, release held usages on every exit from the active state,
// then reconnect with backoff for as long as the process runs.
func (h *Handle) run(ctx context.Context) {
	backoff := reconnectBase
	for {
		h.setState(StateOpening)
		src, err := h.open(h.Path())
		if err != nil {
			h.setState(StateDisconnected)
			h.logger.Debug("open failed", slog.Any("error", err))
			if !h.pause(ctx, &backoff) {
				h.setState(StateStopped)
				return
			}
			continue
		}
		backoff = reconnectBase

		err = h.relay(ctx, src)
		_ = src.Close()

		if ctx.Err() != nil {
			h.setState(StateStopped)
			h.logger.Info("relay stopped")
			return
		}
		h.setState(StateDisconnected)
		h.logger.Error("device disconnected", slog.Any("error", err))
		if !h.pause(ctx, &backoff) {
			h.setState(StateStopped)
			return
		}
	}
}

// pause waits out the reconnect backoff. A kick from the supervisor (the
// device node reappeared) skips the rest of the wait and resets the
// backoff. Returns false when ctx ended.
func (h *Handle) pause(ctx context.Context, backoff *time.Duration) bool {
	t := time.NewTimer(*backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-h.kick:
		*backoff = reconnectBase
		return true
	case <-t.C:
		*backoff = min(*backoff*2, reconnectMax)
		return true
	}
}

// relay forwards events until the stream fails or ctx ends. Every exit path
// releases the usages this device holds and flushes the categories it
// touched, so the host never sees stuck input.
func (h *Handle) relay(ctx context.Context, src EventSource) error {
	info := src.Info()
	h.mu.Lock()
	h.path, h.name = info.Path, info.Name
	h.mu.Unlock()

	if h.grab {
		if err := src.Grab(); err != nil {
			h.logger.Warn("exclusive grab failed, relaying shared", slog.Any("error", err))
		}
	}

	h.held = make(map[keycode.Keycode]bool)
	h.dirty = make(map[keycode.Category]bool)
	h.touched = make(map[keycode.Category]bool)

	h.setState(StateActive)
	h.logger.Info("relaying device", slog.String("path", info.Path))

	// Closing the source is the only way to interrupt a blocked read.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = src.Close()
		case <-watchDone:
		}
	}()

	defer h.releaseHeld()

	for {
		ev, err := src.NextEvent()
		if err != nil {
			return err
		}
		h.handleEvent(ev)
	}
}

func (h *Handle) handleEvent(ev evdev.InputEvent) {
	h.logger.Log(context.Background(), log.LevelTrace, "input event",
		slog.Int("type", int(ev.Type)),
		slog.Int("code", int(ev.Code)),
		slog.Int("value", int(ev.Value)))

	switch ev.Type {
	case evdev.EvSyn:
		if ev.Code == evdev.SynReport {
			h.flushDirty()
		}
	case evdev.EvKey:
		h.handleKey(ev)
	case evdev.EvRel:
		h.handleRel(ev)
	}
}

func (h *Handle) handleKey(ev evdev.InputEvent) {
	// The host synthesizes key autorepeat on its own.
	if ev.Value == evdev.KeyRepeat {
		return
	}
	kc := keycode.FromEvdev(ev.Code)
	if kc == nil {
		h.logger.Debug("unmapped key code", slog.Int("code", int(ev.Code)))
		return
	}
	if h.toggler != nil && kc.Category == keycode.CategoryKeyboard {
		h.toggler.Observe(kc.Usage, ev.Value)
	}

	if ev.Value == evdev.KeyPress {
		if !h.gate.Open() {
			return
		}
		if err := h.sink.Press(*kc); err != nil {
			h.logger.Warn("key press dropped", slog.String("key", kc.Name), slog.Any("error", err))
			return
		}
		h.held[*kc] = true
	} else {
		// Releases bypass the gate so a pause can never stick a key.
		if !h.held[*kc] {
			return
		}
		h.sink.Release(*kc)
		delete(h.held, *kc)
	}
	h.dirty[kc.Category] = true
	h.touched[kc.Category] = true
}

func (h *Handle) handleRel(ev evdev.InputEvent) {
	if !h.gate.Open() {
		return
	}
	switch ev.Code {
	case evdev.RelX:
		h.sink.Move(ev.Value, 0)
	case evdev.RelY:
		h.sink.Move(0, ev.Value)
	case evdev.RelWheel:
		h.sink.Scroll(ev.Value)
	default:
		return
	}
	h.dirty[keycode.CategoryMouse] = true
	h.touched[keycode.CategoryMouse] = true
}

// flushDirty writes the categories updated since the last synchronization
// marker. A failed write is logged and retried by nature on the next
// marker; it never stops the relay or its siblings.
func (h *Handle) flushDirty() {
	for cat := range h.dirty {
		if err := h.sink.Flush(cat); err != nil {
			h.logger.Error("report write failed",
				slog.String("gadget", cat.String()),
				slog.Any("error", err))
		}
		delete(h.dirty, cat)
	}
}

// releaseHeld clears everything this device still holds and flushes the
// all-released state of every category it touched.
func (h *Handle) releaseHeld() {
	for kc := range h.held {
		h.sink.Release(kc)
	}
	clear(h.held)
	for cat := range h.touched {
		if err := h.sink.Flush(cat); err != nil {
			h.logger.Warn("release flush failed",
				slog.String("gadget", cat.String()),
				slog.Any("error", err))
		}
	}
	clear(h.touched)
	clear(h.dirty)
}
