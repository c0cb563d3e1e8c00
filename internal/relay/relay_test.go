package relay_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/Alia5/hidrelay/device/keyboard"
	"github.com/Alia5/hidrelay/evdev"
	"github.com/Alia5/hidrelay/internal/log"
	"github.com/Alia5/hidrelay/internal/relay"
	th "github.com/Alia5/hidrelay/internal/testing"
	"github.com/Alia5/hidrelay/keycode"
)

// rig bundles a sink with recording writers and a gate that is already open.
type rig struct {
	kb    *th.FakeReportWriter
	mouse *th.FakeReportWriter
	cons  *th.FakeReportWriter
	sink  *relay.Sink
	gate  *relay.Gate
}

func newRig() *rig {
	r := &rig{
		kb:    &th.FakeReportWriter{},
		mouse: &th.FakeReportWriter{},
		cons:  &th.FakeReportWriter{},
	}
	r.sink = relay.NewSink(r.kb, r.mouse, r.cons, th.DiscardLogger(), log.NewRaw(nil))
	r.gate = relay.NewGate()
	r.gate.SetReady(true)
	return r
}

func mustKey(t *testing.T, name string) keycode.Keycode {
	t.Helper()
	kc := keycode.Translate(name)
	require.NotNil(t, kc, "unknown key %q", name)
	return *kc
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(time.Millisecond)
	}
}

func kbReport(mods uint8, keys ...uint8) []byte {
	b := make([]byte, 8)
	b[0] = mods
	copy(b[2:], keys)
	return b
}

// openQueue hands out the given sources one per call, then fails.
func openQueue(srcs ...relay.EventSource) func(string) (relay.EventSource, error) {
	var mu sync.Mutex
	i := 0
	return func(string) (relay.EventSource, error) {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(srcs) {
			return nil, os.ErrNotExist
		}
		s := srcs[i]
		i++
		return s, nil
	}
}

func startHandle(t *testing.T, h *relay.Handle) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("relay goroutine did not stop")
		}
	}
}

func btKeyboard() evdev.Info {
	return evdev.Info{Path: "/dev/input/event5", Name: "BT Keyboard", Uniq: "AA:BB:CC:DD:EE:FF"}
}

func TestHandleRelaysAndReleasesOnDisconnect(t *testing.T) {
	r := newRig()
	src := th.NewScriptedSource(btKeyboard())
	h := relay.NewTestHandle(btKeyboard(), false, r.sink, r.gate, nil, openQueue(src), th.DiscardLogger())
	stop := startHandle(t, h)
	defer stop()

	waitFor(t, time.Second, func() bool { return h.State() == relay.StateActive }, "relay never became active")

	src.Emit(th.KeyEvent(30, evdev.KeyPress)) // KEY_A
	src.Emit(th.SynEvent())
	waitFor(t, time.Second, func() bool { return len(r.kb.Reports()) == 1 }, "press report never flushed")
	assert.Equal(t, kbReport(0, keyboard.KeyA), r.kb.LastReport())

	src.FailWith(unix.ENODEV)
	waitFor(t, time.Second, func() bool { return h.State() == relay.StateDisconnected }, "relay never noticed the disconnect")

	reports := r.kb.Reports()
	require.Len(t, reports, 2)
	assert.Equal(t, kbReport(0), reports[1], "held key must be released on disconnect")
	assert.Empty(t, r.mouse.Reports(), "untouched categories must not be flushed")

	stop()
	assert.Equal(t, relay.StateStopped, h.State())
}

func TestHandleReconnectsAfterKick(t *testing.T) {
	r := newRig()
	info := btKeyboard()
	src1 := th.NewScriptedSource(info, th.KeyEvent(30, evdev.KeyPress), th.SynEvent())
	src2 := th.NewScriptedSource(info, th.KeyEvent(48, evdev.KeyPress), th.SynEvent()) // KEY_B
	h := relay.NewTestHandle(info, false, r.sink, r.gate, nil, openQueue(src1, src2), th.DiscardLogger())
	stop := startHandle(t, h)
	defer stop()

	waitFor(t, time.Second, func() bool { return len(r.kb.Reports()) == 1 }, "first source never relayed")

	src1.FailWith(unix.ENODEV)
	h.Kick()
	waitFor(t, time.Second, func() bool { return len(r.kb.Reports()) >= 3 }, "second source never relayed")

	reports := r.kb.Reports()
	assert.Equal(t, kbReport(0, keyboard.KeyA), reports[0])
	assert.Equal(t, kbReport(0), reports[1], "disconnect releases the first source's key")
	assert.Equal(t, kbReport(0, keyboard.KeyB), reports[2])
	assert.Equal(t, relay.StateActive, h.State())
}

func TestHandleSkipsAutorepeatAndUnknownCodes(t *testing.T) {
	r := newRig()
	src := th.NewScriptedSource(btKeyboard(),
		th.KeyEvent(30, evdev.KeyPress),
		th.SynEvent(),
		th.KeyEvent(30, evdev.KeyRepeat),
		th.SynEvent(),
		th.KeyEvent(84, evdev.KeyPress), // no HID usage mapped
		th.SynEvent(),
		th.KeyEvent(30, evdev.KeyRelease),
		th.SynEvent(),
	)
	h := relay.NewTestHandle(btKeyboard(), false, r.sink, r.gate, nil, openQueue(src), th.DiscardLogger())
	stop := startHandle(t, h)
	defer stop()

	waitFor(t, time.Second, func() bool { return len(r.kb.Reports()) == 2 }, "expected press and release flushes only")
	reports := r.kb.Reports()
	assert.Equal(t, kbReport(0, keyboard.KeyA), reports[0])
	assert.Equal(t, kbReport(0), reports[1])

	time.Sleep(20 * time.Millisecond)
	assert.Len(t, r.kb.Reports(), 2, "autorepeat and unmapped codes must not flush")
}

func TestHandleReleaseBypassesPausedGate(t *testing.T) {
	r := newRig()
	src := th.NewScriptedSource(btKeyboard())
	h := relay.NewTestHandle(btKeyboard(), false, r.sink, r.gate, nil, openQueue(src), th.DiscardLogger())
	stop := startHandle(t, h)
	defer stop()

	waitFor(t, time.Second, func() bool { return h.State() == relay.StateActive }, "relay never became active")

	src.Emit(th.KeyEvent(30, evdev.KeyPress))
	src.Emit(th.SynEvent())
	waitFor(t, time.Second, func() bool { return len(r.kb.Reports()) == 1 }, "press report never flushed")

	r.gate.SetEnabled(false)

	src.Emit(th.KeyEvent(30, evdev.KeyRelease))
	src.Emit(th.SynEvent())
	waitFor(t, time.Second, func() bool { return len(r.kb.Reports()) == 2 }, "release must flush even while paused")
	assert.Equal(t, kbReport(0), r.kb.LastReport())

	src.Emit(th.KeyEvent(48, evdev.KeyPress))
	src.Emit(th.SynEvent())
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, r.kb.Reports(), 2, "presses must be dropped while paused")
}

func TestHandleAccumulatesMouseMotion(t *testing.T) {
	r := newRig()
	src := th.NewScriptedSource(btKeyboard(),
		th.RelEvent(evdev.RelX, 5),
		th.RelEvent(evdev.RelY, -3),
		th.RelEvent(evdev.RelWheel, 1),
		th.SynEvent(),
		th.KeyEvent(272, evdev.KeyPress), // BTN_LEFT
		th.SynEvent(),
	)
	h := relay.NewTestHandle(btKeyboard(), false, r.sink, r.gate, nil, openQueue(src), th.DiscardLogger())
	stop := startHandle(t, h)
	defer stop()

	waitFor(t, time.Second, func() bool { return len(r.mouse.Reports()) == 2 }, "mouse reports never flushed")
	reports := r.mouse.Reports()
	assert.Equal(t, []byte{0x00, 0x05, 0xFD, 0x01}, reports[0])
	assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x00}, reports[1], "deltas drain after the flush, the button stays held")
	assert.Empty(t, r.kb.Reports())
}

func TestHandleGrabsWhenConfigured(t *testing.T) {
	r := newRig()
	src := th.NewScriptedSource(btKeyboard())
	h := relay.NewTestHandle(btKeyboard(), true, r.sink, r.gate, nil, openQueue(src), th.DiscardLogger())
	stop := startHandle(t, h)
	defer stop()

	waitFor(t, time.Second, func() bool { return h.State() == relay.StateActive }, "relay never became active")
	assert.True(t, src.Grabbed())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "discovering", relay.StateDiscovering.String())
	assert.Equal(t, "opening", relay.StateOpening.String())
	assert.Equal(t, "active", relay.StateActive.String())
	assert.Equal(t, "disconnected", relay.StateDisconnected.String())
	assert.Equal(t, "stopped", relay.StateStopped.String())
	assert.Equal(t, "unknown", relay.State(99).String())
}
