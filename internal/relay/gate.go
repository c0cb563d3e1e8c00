package relay

import (
	"context"
	"sync"
)

// Gate holds relaying until the USB host is ready to receive reports and
// lets the interrupt shortcut pause forwarding at runtime. The gate is open
// only while both conditions hold.
type Gate struct {
	mu      sync.Mutex
	ready   bool
	enabled bool
	ch      chan struct{}
}

// NewGate starts enabled but not ready; the UDC watcher supplies the first
// readiness value.
func NewGate() *Gate {
	return &Gate{enabled: true, ch: make(chan struct{})}
}

// SetReady records whether the USB host has enumerated the gadget.
func (g *Gate) SetReady(ready bool) {
	g.update(func() { g.ready = ready })
}

// SetEnabled pauses or resumes relaying, driven by the interrupt shortcut.
func (g *Gate) SetEnabled(on bool) {
	g.update(func() { g.enabled = on })
}

// Enabled reports whether relaying is paused by the interrupt shortcut.
func (g *Gate) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enabled
}

// Open reports whether events may be forwarded right now.
func (g *Gate) Open() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready && g.enabled
}

// Wait blocks until the gate opens or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	for {
		g.mu.Lock()
		if g.ready && g.enabled {
			g.mu.Unlock()
			return nil
		}
		ch := g.ch
		g.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

func (g *Gate) update(f func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	wasOpen := g.ready && g.enabled
	f()
	open := g.ready && g.enabled
	if open == wasOpen {
		return
	}
	if open {
		close(g.ch)
	} else {
		g.ch = make(chan struct{})
	}
}
