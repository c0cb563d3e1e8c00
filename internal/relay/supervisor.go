package relay

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Alia5/hidrelay/evdev"
)

// Discovery timing.
const (
	debounceDelay = 500 * time.Millisecond
	DefaultRescan = 30 * time.Second
)

// Config controls discovery and relaying.
type Config struct {
	Identifiers  []string
	AutoDiscover bool
	Grab         bool
	RescanEvery  time.Duration
}

// Supervisor owns the registry of relay handles and keeps it in sync with
// the input device nodes present on the system. Each handle runs in its own
// goroutine; a fault there is contained to that device.
type Supervisor struct {
	cfg     Config
	filter  *Filter
	sink    *Sink
	gate    *Gate
	toggler *Toggler
	logger  *slog.Logger

	// Swapped out by tests.
	listDevices func() ([]evdev.Info, error)
	openDevice  func(path string) (EventSource, error)

	mu      sync.Mutex
	handles map[string]*Handle
	wg      sync.WaitGroup
}

func NewSupervisor(cfg Config, sink *Sink, gate *Gate, toggler *Toggler, logger *slog.Logger) *Supervisor {
	if cfg.RescanEvery <= 0 {
		cfg.RescanEvery = DefaultRescan
	}
	return &Supervisor{
		cfg:         cfg,
		filter:      NewFilter(cfg.Identifiers, cfg.AutoDiscover),
		sink:        sink,
		gate:        gate,
		toggler:     toggler,
		logger:      logger,
		listDevices: evdev.List,
		openDevice: func(path string) (EventSource, error) {
			d, err := evdev.Open(path)
			if err != nil {
				return nil, err
			}
			return d, nil
		},
		handles: make(map[string]*Handle),
	}
}

// Run performs the initial scan, then tracks hotplug notifications and
// periodic rescans until ctx is cancelled. It returns once every relay has
// stopped.
func (s *Supervisor) Run(ctx context.Context) error {
	var events <-chan fsnotify.Event
	var watchErrs <-chan error

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn("inotify unavailable, relying on periodic rescans", slog.Any("error", err))
	} else {
		defer watcher.Close()
		if err := watcher.Add(evdev.InputDir); err != nil {
			s.logger.Warn("watching input directory failed", slog.Any("error", err))
		} else {
			events = watcher.Events
			watchErrs = watcher.Errors
		}
	}

	s.scan(ctx)

	rescan := time.NewTicker(s.cfg.RescanEvery)
	defer rescan.Stop()

	debounce := time.NewTimer(debounceDelay)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), "event") {
				continue
			}
			if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Chmod) {
				continue
			}
			// Nodes appear before udev settles their permissions; the
			// debounce coalesces the burst and retries once they did.
			if pending && !debounce.Stop() {
				<-debounce.C
			}
			debounce.Reset(debounceDelay)
			pending = true
		case <-debounce.C:
			pending = false
			s.scan(ctx)
		case werr, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			s.logger.Warn("device watcher error", slog.Any("error", werr))
		case <-rescan.C:
			s.scan(ctx)
		}
	}
}

// scan reconciles the handle registry with the currently visible devices.
func (s *Supervisor) scan(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	infos, err := s.listDevices()
	if err != nil {
		s.logger.Warn("device scan failed", slog.Any("error", err))
		return
	}
	for _, info := range infos {
		if !s.filter.Matches(info) {
			continue
		}
		s.track(ctx, info)
	}
}

// deviceID keys the registry. The Bluetooth address survives reconnects
// while node paths do not, so it wins whenever the device reports one.
func deviceID(info evdev.Info) string {
	if info.Uniq != "" {
		return strings.ToLower(info.Uniq)
	}
	return info.Path
}

func (s *Supervisor) track(ctx context.Context, info evdev.Info) {
	id := deviceID(info)
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.handles[id]; ok {
		h.setPath(info.Path)
		h.kickReconnect()
		return
	}

	h := newHandle(id, info, s.cfg.Grab, s.sink, s.gate, s.toggler, s.openDevice, s.logger)
	s.handles[id] = h
	s.logger.Info("tracking device",
		slog.String("name", info.Name),
		slog.String("path", info.Path),
		slog.String("id", id))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				h.setState(StateStopped)
				s.logger.Error("relay crashed",
					slog.String("device", h.Name()),
					slog.String("panic", fmt.Sprint(r)))
			}
		}()
		h.run(ctx)
	}()
}

// Handles returns a snapshot of the registry.
func (s *Supervisor) Handles() []*Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Handle, 0, len(s.handles))
	for _, h := range s.handles {
		out = append(out, h)
	}
	return out
}
