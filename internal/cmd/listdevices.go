package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/Alia5/hidrelay/evdev"
)

type ListDevices struct{}

func (l *ListDevices) Run(logger *slog.Logger) error {
	devices, err := evdev.List()
	if err != nil {
		return fmt.Errorf("scan input devices: %w", err)
	}
	if len(devices) == 0 {
		logger.Warn("no readable input devices; are you running as root?")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tNAME\tPHYS\tUNIQ")
	for _, d := range devices {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Path, d.Name, d.Phys, d.Uniq)
	}
	return w.Flush()
}
