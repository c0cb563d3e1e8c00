// Package cmd implements the hidrelay subcommands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alia5/hidrelay/gadget"
	"github.com/Alia5/hidrelay/internal/bluez"
	"github.com/Alia5/hidrelay/internal/log"
	"github.com/Alia5/hidrelay/internal/relay"
	"github.com/Alia5/hidrelay/internal/server/ble"
	"github.com/Alia5/hidrelay/shortcut"
)

type Serve struct {
	Device       []string `help:"Relay only these devices (node path, MAC, or name substring); repeatable" env:"HIDRELAY_DEVICE"`
	AutoDiscover bool     `help:"Relay every input device that appears" default:"true" negatable:"" env:"HIDRELAY_AUTO_DISCOVER"`
	Grab         bool     `help:"Grab devices exclusively so events reach only the USB host" env:"HIDRELAY_GRAB"`

	RelayPhysical bool `help:"Forward events from Bluetooth input devices" default:"true" negatable:"" env:"HIDRELAY_RELAY_PHYSICAL"`
	RelayBle      bool `help:"Serve the BLE shortcut characteristic" default:"true" negatable:"" name:"relay-ble" env:"HIDRELAY_RELAY_BLE"`

	AcceptUntrusted bool `help:"Accept BLE commands from centrals BlueZ does not list as trusted" env:"HIDRELAY_ACCEPT_UNTRUSTED"`
	PartialParse    bool `help:"Drop unknown keys in BLE commands instead of rejecting the whole command" env:"HIDRELAY_PARTIAL_PARSE"`

	InterruptShortcut string `help:"Key combo that pauses and resumes relaying (e.g. RCTRL-RALT-Q)" env:"HIDRELAY_INTERRUPT_SHORTCUT"`

	Keyboard string `help:"Keyboard gadget node" default:"/dev/hidg0" env:"HIDRELAY_KEYBOARD_NODE"`
	Mouse    string `help:"Mouse gadget node" default:"/dev/hidg1" env:"HIDRELAY_MOUSE_NODE"`
	Consumer string `help:"Consumer control gadget node" default:"/dev/hidg2" env:"HIDRELAY_CONSUMER_NODE"`

	UdcGate     bool          `help:"Hold reports until the UDC reports a configured host" default:"true" negatable:"" name:"udc-gate" env:"HIDRELAY_UDC_GATE"`
	RescanEvery time.Duration `help:"Fallback rescan interval for device discovery" default:"30s" env:"HIDRELAY_RESCAN_EVERY"`
	BluezRoot   string        `help:"BlueZ state directory used for trust checks" default:"/var/lib/bluetooth" env:"HIDRELAY_BLUEZ_ROOT"`
}

// Run is called by Kong when the serve command is executed.
func (s *Serve) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.startRelay(ctx, logger, rawLogger)
}

func (s *Serve) startRelay(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	if !s.RelayPhysical && !s.RelayBle {
		return errors.New("nothing to do: physical and BLE relaying are both disabled")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Info("starting HID relay",
		slog.Bool("physical", s.RelayPhysical),
		slog.Bool("ble", s.RelayBle),
		slog.Bool("auto_discover", s.AutoDiscover))

	kbW, err := gadget.Open(s.Keyboard, "keyboard", logger)
	if err != nil {
		return fmt.Errorf("open keyboard gadget: %w", err)
	}
	defer kbW.Close()
	mouseW, err := gadget.Open(s.Mouse, "mouse", logger)
	if err != nil {
		return fmt.Errorf("open mouse gadget: %w", err)
	}
	defer mouseW.Close()
	consW, err := gadget.Open(s.Consumer, "consumer", logger)
	if err != nil {
		return fmt.Errorf("open consumer gadget: %w", err)
	}
	defer consW.Close()

	sink := relay.NewSink(kbW, mouseW, consW, logger, rawLogger)
	gate := relay.NewGate()
	s.watchHost(ctx, gate, logger)

	toggler, err := s.interruptToggler(gate, sink, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	running := 0

	if s.RelayPhysical {
		sup := relay.NewSupervisor(relay.Config{
			Identifiers:  s.Device,
			AutoDiscover: s.AutoDiscover,
			Grab:         s.Grab,
			RescanEvery:  s.RescanEvery,
		}, sink, gate, toggler, logger)
		running++
		go func() { errCh <- sup.Run(ctx) }()
	}

	if s.RelayBle {
		srv := ble.New(ble.Config{
			RequireTrusted: !s.AcceptUntrusted,
			PartialParse:   s.PartialParse,
		}, &bluez.Store{Root: s.BluezRoot}, relay.NewInjector(sink, gate, logger), logger, rawLogger)
		running++
		go func() { errCh <- srv.Run(ctx) }()
	}

	var runErr error
	for ; running > 0; running-- {
		err := <-errCh
		cancel()
		if err != nil && !errors.Is(err, context.Canceled) && runErr == nil {
			runErr = err
		}
	}

	// The host must never end up with stuck input, whatever stopped us.
	if err := sink.ReleaseAll(); err != nil {
		logger.Warn("releasing input on shutdown failed", slog.Any("error", err))
	}
	if runErr != nil {
		return runErr
	}
	logger.Info("hidrelay stopped")
	return nil
}

// watchHost feeds USB host readiness into the gate. Without a UDC (or with
// the gate disabled) relaying is unconditional.
func (s *Serve) watchHost(ctx context.Context, gate *relay.Gate, logger *slog.Logger) {
	if !s.UdcGate {
		gate.SetReady(true)
		return
	}
	udc, err := gadget.FirstUDC()
	if err != nil {
		logger.Warn("no UDC found, relaying unconditionally", slog.Any("error", err))
		gate.SetReady(true)
		return
	}
	go gadget.WatchState(ctx, udc, time.Second, logger, func(ready bool) {
		gate.SetReady(ready)
		if ready {
			logger.Info("usb host attached", slog.String("udc", udc))
		} else {
			logger.Warn("usb host detached", slog.String("udc", udc))
		}
	})
}

func (s *Serve) interruptToggler(gate *relay.Gate, sink *relay.Sink, logger *slog.Logger) (*relay.Toggler, error) {
	if s.InterruptShortcut == "" {
		return nil, nil
	}
	combos, err := shortcut.ParseCommand(s.InterruptShortcut, true)
	if err != nil {
		return nil, fmt.Errorf("interrupt shortcut: %w", err)
	}
	if len(combos) != 1 {
		return nil, errors.New("interrupt shortcut must be a single combo")
	}
	toggler := relay.NewToggler(combos[0], gate, sink, logger)
	if toggler == nil {
		return nil, errors.New("interrupt shortcut needs at least one keyboard key")
	}
	logger.Info("interrupt shortcut armed", slog.String("combo", combos[0].String()))
	return toggler, nil
}
