package gadget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var udcClassDir = "/sys/class/udc"

// FirstUDC returns the name of the first UDC registered with the kernel.
func FirstUDC() (string, error) {
	entries, err := os.ReadDir(udcClassDir)
	if err != nil {
		return "", fmt.Errorf("list udc controllers: %w", err)
	}
	if len(entries) == 0 {
		return "", errors.New("no udc controller found, is device mode enabled")
	}
	return entries[0].Name(), nil
}

// UDCState reads the attachment state of a UDC. The kernel reports
// "configured" once the host has enumerated the gadget.
func UDCState(udc string) (string, error) {
	b, err := os.ReadFile(filepath.Join(udcClassDir, udc, "state"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// WatchState polls the UDC attachment state and invokes onChange on every
// readiness flip, including once with the initial value. Returns when ctx
// is cancelled.
func WatchState(ctx context.Context, udc string, interval time.Duration, logger *slog.Logger, onChange func(ready bool)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := -1
	check := func() {
		state, err := UDCState(udc)
		if err != nil {
			state = "unavailable"
		}
		cur := 0
		if state == "configured" {
			cur = 1
		}
		if cur == last {
			return
		}
		last = cur
		logger.Info("udc state changed",
			slog.String("udc", udc),
			slog.String("state", state))
		onChange(cur == 1)
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
