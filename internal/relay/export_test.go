package relay

import (
	"context"
	"log/slog"

	"github.com/Alia5/hidrelay/evdev"
)

// NewTestHandle builds a relay handle around an injectable open function.
func NewTestHandle(info evdev.Info, grab bool, sink *Sink, gate *Gate, toggler *Toggler, open func(string) (EventSource, error), logger *slog.Logger) *Handle {
	return newHandle(deviceID(info), info, grab, sink, gate, toggler, open, logger)
}

// Run drives the handle lifecycle until ctx is cancelled.
func (h *Handle) Run(ctx context.Context) {
	h.run(ctx)
}

// Kick requests an immediate reconnect attempt, skipping the backoff.
func (h *Handle) Kick() {
	h.kickReconnect()
}

// SetDiscovery swaps the supervisor's device enumeration and open seams.
func (s *Supervisor) SetDiscovery(list func() ([]evdev.Info, error), open func(string) (EventSource, error)) {
	if list != nil {
		s.listDevices = list
	}
	if open != nil {
		s.openDevice = open
	}
}

// Scan runs one synchronous reconciliation pass against the device list.
func (s *Supervisor) Scan(ctx context.Context) {
	s.scan(ctx)
}

// WaitIdle blocks until every relay goroutine exited.
func (s *Supervisor) WaitIdle() {
	s.wg.Wait()
}
