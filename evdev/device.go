package evdev

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Device is an open input device node. Reads are driven by one goroutine;
// Close may be called from another to interrupt a blocked read.
type Device struct {
	path string
	f    *os.File

	name string
	phys string
	uniq string

	buf [eventSize * 64]byte
	q   []InputEvent
}

// Open opens an input device node for reading and fetches its identity.
func Open(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open input device %s: %w", path, err)
	}
	d := &Device{path: path, f: f}
	d.name, _ = d.ioctlString(eviocgnameNr)
	d.phys, _ = d.ioctlString(eviocgphysNr)
	d.uniq, _ = d.ioctlString(eviocguniqNr)
	return d, nil
}

// Grab takes exclusive hold of the device so its events stop reaching other
// kernel consumers while the relay forwards them.
func (d *Device) Grab() error {
	if err := d.ioctlWord(eviocgrab, 1); err != nil {
		return fmt.Errorf("grab %s: %w", d.path, err)
	}
	return nil
}

// Ungrab releases an exclusive hold.
func (d *Device) Ungrab() error {
	return d.ioctlWord(eviocgrab, 0)
}

// NextEvent blocks until the next event arrives. Kernel reads deliver whole
// events, possibly several per read; surplus events are queued and handed
// out one at a time.
func (d *Device) NextEvent() (InputEvent, error) {
	for len(d.q) == 0 {
		n, err := d.f.Read(d.buf[:])
		if err != nil {
			return InputEvent{}, err
		}
		for off := 0; off+eventSize <= n; off += eventSize {
			d.q = append(d.q, decodeEvent(d.buf[off:off+eventSize]))
		}
	}
	ev := d.q[0]
	d.q = d.q[1:]
	return ev, nil
}

// Close releases the device node, interrupting a blocked NextEvent.
func (d *Device) Close() error {
	return d.f.Close()
}

func (d *Device) Path() string { return d.path }
func (d *Device) Name() string { return d.name }
func (d *Device) Phys() string { return d.phys }
func (d *Device) Uniq() string { return d.uniq }

// Info returns the device identity snapshot taken at open time.
func (d *Device) Info() Info {
	return Info{Path: d.path, Name: d.name, Phys: d.phys, Uniq: d.uniq}
}

// IsDisconnect reports whether a read error means the device was unplugged
// rather than a transient fault.
func IsDisconnect(err error) bool {
	return errors.Is(err, unix.ENODEV) || errors.Is(err, unix.ENXIO)
}
