package evdev

import "os"

// NewTestDevice wraps an arbitrary file, letting tests feed events through
// a pipe.
func NewTestDevice(f *os.File, path string) *Device {
	return &Device{path: path, f: f}
}
