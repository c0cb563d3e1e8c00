package relay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Alia5/hidrelay/keycode"
	"github.com/Alia5/hidrelay/shortcut"
)

// ErrHostNotReady rejects injection while no USB host is attached or
// relaying is paused.
var ErrHostNotReady = errors.New("usb host not ready")

// Injection cadence: hold each combo briefly, pause between combos, so the
// host observes every combo as a discrete press/release pair.
const (
	comboHold  = 20 * time.Millisecond
	comboPause = 20 * time.Millisecond
)

// Injector delivers parsed command combos through the shared sink, the same
// path physical events take.
type Injector struct {
	sink   *Sink
	gate   *Gate
	logger *slog.Logger
}

func NewInjector(sink *Sink, gate *Gate, logger *slog.Logger) *Injector {
	return &Injector{sink: sink, gate: gate, logger: logger}
}

// Inject presses and releases each combo in order: press all keys, flush,
// hold, release all, flush, pause. A write failure aborts the remaining
// combos after releasing what was pressed.
func (i *Injector) Inject(ctx context.Context, combos []shortcut.Combo) error {
	if !i.gate.Open() {
		return ErrHostNotReady
	}
	for _, combo := range combos {
		if err := i.injectOne(ctx, combo); err != nil {
			return err
		}
	}
	return nil
}

func (i *Injector) injectOne(ctx context.Context, combo shortcut.Combo) error {
	cats := make(map[keycode.Category]bool, 2)
	for _, kc := range combo {
		if err := i.sink.Press(kc); err != nil {
			i.logger.Warn("combo key dropped", slog.String("key", kc.Name), slog.Any("error", err))
			continue
		}
		cats[kc.Category] = true
	}

	flushErr := i.flush(cats)
	if flushErr == nil {
		flushErr = sleep(ctx, comboHold)
	}

	for _, kc := range combo {
		i.sink.Release(kc)
	}
	if err := i.flush(cats); err != nil && flushErr == nil {
		flushErr = err
	}
	if flushErr != nil {
		return flushErr
	}
	return sleep(ctx, comboPause)
}

func (i *Injector) flush(cats map[keycode.Category]bool) error {
	for cat := range cats {
		if err := i.sink.Flush(cat); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
