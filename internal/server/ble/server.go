// Package ble exposes a GATT service with one writable characteristic that
// accepts textual keystroke commands and replays them on the USB gadget.
package ble

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/paypal/gatt"
	"github.com/paypal/gatt/examples/option"

	"github.com/Alia5/hidrelay/internal/log"
	"github.com/Alia5/hidrelay/shortcut"
)

// Fixed GATT identity. Remotes pair against these values, changing them
// orphans every already-provisioned client.
const (
	serviceUUID    = "00000000-6907-4437-8539-9218a9d54e29"
	charUUID       = "00000001-6907-4437-8539-9218a9d54e29"
	advertisedName = "Bluetooth 2 USB"
)

// ATT error code returned for writes from centrals that are not trusted.
const statusInsufficientAuthorization byte = 0x08

// Config controls command acceptance.
type Config struct {
	// RequireTrusted rejects writes from centrals BlueZ does not list as
	// trusted.
	RequireTrusted bool
	// PartialParse drops unknown key tokens instead of rejecting the whole
	// command.
	PartialParse bool
}

// TrustChecker answers whether a central's address belongs to a trusted
// device.
type TrustChecker interface {
	Trusted(addr string) bool
}

// Injector delivers parsed combos to the USB host.
type Injector interface {
	Inject(ctx context.Context, combos []shortcut.Combo) error
}

// State is the connection phase of the GATT server.
type State int

const (
	StateIdle State = iota
	StateAdvertising
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAdvertising:
		return "advertising"
	case StateConnected:
		return "connected"
	}
	return "unknown"
}

// Server owns the BLE peripheral lifecycle: advertise, accept one central,
// serve command writes, advertise again after the central leaves.
type Server struct {
	cfg      Config
	trust    TrustChecker
	injector Injector
	logger   *slog.Logger
	raw      log.RawLogger

	mu      sync.Mutex
	state   State
	peer    string
	lastCmd []byte
}

// New builds the server. trust must be non-nil when cfg.RequireTrusted is
// set.
func New(cfg Config, trust TrustChecker, injector Injector, logger *slog.Logger, raw log.RawLogger) *Server {
	return &Server{cfg: cfg, trust: trust, injector: injector, logger: logger, raw: raw}
}

// Run claims the HCI device and serves until ctx is cancelled. The adapter
// must be free; BlueZ's own daemon interferes with the user channel.
func (s *Server) Run(ctx context.Context) error {
	d, err := gatt.NewDevice(option.DefaultServerOptions...)
	if err != nil {
		return fmt.Errorf("open BLE device: %w", err)
	}

	d.Handle(
		gatt.CentralConnected(func(c gatt.Central) {
			s.centralConnected(c.ID())
			s.logger.Info("central connected", slog.String("peer", c.ID()))
		}),
		gatt.CentralDisconnected(func(c gatt.Central) {
			s.centralDisconnected()
			s.logger.Info("central disconnected", slog.String("peer", c.ID()))
			// Advertising stops while a central is connected and does not
			// resume on its own.
			if err := advertise(d); err != nil {
				s.logger.Error("re-advertising failed", slog.Any("error", err))
				return
			}
			s.setState(StateAdvertising)
		}),
	)

	err = d.Init(func(d gatt.Device, st gatt.State) {
		switch st {
		case gatt.StatePoweredOn:
			if err := d.AddService(s.service(ctx)); err != nil {
				s.logger.Error("adding GATT service failed", slog.Any("error", err))
				return
			}
			if err := advertise(d); err != nil {
				s.logger.Error("advertising failed", slog.Any("error", err))
				return
			}
			s.setState(StateAdvertising)
			s.logger.Info("advertising shortcut service", slog.String("name", advertisedName))
		default:
			s.setState(StateIdle)
			s.logger.Warn("BLE adapter not powered", slog.String("state", st.String()))
		}
	})
	if err != nil {
		return fmt.Errorf("init BLE device: %w", err)
	}

	<-ctx.Done()
	s.setState(StateIdle)
	if err := d.Stop(); err != nil {
		s.logger.Debug("stopping BLE device", slog.Any("error", err))
	}
	return ctx.Err()
}

func advertise(d gatt.Device) error {
	return d.AdvertiseNameAndServices(advertisedName, []gatt.UUID{gatt.MustParseUUID(serviceUUID)})
}

func (s *Server) service(ctx context.Context) *gatt.Service {
	svc := gatt.NewService(gatt.MustParseUUID(serviceUUID))

	c := svc.AddCharacteristic(gatt.MustParseUUID(charUUID))
	c.HandleWriteFunc(func(r gatt.Request, data []byte) byte {
		return s.HandleCommand(ctx, r.Central.ID(), data)
	})
	c.HandleReadFunc(func(rsp gatt.ResponseWriter, req *gatt.ReadRequest) {
		_, _ = rsp.Write(s.LastCommand())
	})
	return svc
}

// HandleCommand executes one characteristic write: enforce trust, parse the
// command, inject the combos. The returned byte is the ATT status of the
// write response.
func (s *Server) HandleCommand(ctx context.Context, peer string, data []byte) byte {
	s.raw.Log(true, peer, data)

	if s.cfg.RequireTrusted && !s.trust.Trusted(peer) {
		s.logger.Warn("rejected command from untrusted central", slog.String("peer", peer))
		return statusInsufficientAuthorization
	}

	combos, err := shortcut.ParseCommand(string(data), !s.cfg.PartialParse)
	if err != nil {
		s.logger.Warn("unparseable command",
			slog.String("peer", peer),
			slog.Any("error", err))
		return gatt.StatusUnexpectedError
	}

	if err := s.injector.Inject(ctx, combos); err != nil {
		s.logger.Warn("injecting command failed",
			slog.String("peer", peer),
			slog.Any("error", err))
		return gatt.StatusUnexpectedError
	}

	s.logger.Info("injected command",
		slog.String("peer", peer),
		slog.Int("combos", len(combos)))
	s.storeLast(data)
	return gatt.StatusSuccess
}

// LastCommand returns the most recently accepted command; reads of the
// characteristic serve it.
func (s *Server) LastCommand() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.lastCmd...)
}

// State returns the current connection phase.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Peer returns the connected central's address, empty when none.
func (s *Server) Peer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peer
}

func (s *Server) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *Server) centralConnected(peer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateConnected
	s.peer = peer
}

func (s *Server) centralDisconnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.peer = ""
}

func (s *Server) storeLast(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCmd = append(s.lastCmd[:0], data...)
}
