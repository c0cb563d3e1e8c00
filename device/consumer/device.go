// Package consumer provides the consumer-control (multimedia key) state
// and gadget function definition.
package consumer

import (
	"github.com/Alia5/hidrelay/device"
)

var reportDescriptor = []byte{
	0x05, 0x0C, // Usage Page (Consumer)
	0x09, 0x01, // Usage (Consumer Control)
	0xA1, 0x01, // Collection (Application)
	0x15, 0x00, //   Logical Minimum (0)
	0x26, 0xFF, 0x03, //   Logical Maximum (1023)
	0x19, 0x00, //   Usage Minimum (0)
	0x2A, 0xFF, 0x03, //   Usage Maximum (1023)
	0x75, 0x10, //   Report Size (16)
	0x95, 0x01, //   Report Count (1)
	0x81, 0x00, //   Input (Data, Array)
	0xC0, // End Collection
}

// Definition returns the gadget function definition for the consumer control.
func Definition() device.Gadget {
	return device.Gadget{
		Name:         "consumer",
		Index:        2,
		Protocol:     0,
		Subclass:     0,
		ReportLength: ReportLength,
		Descriptor:   reportDescriptor,
	}
}

func init() {
	device.Register(Definition())
}
