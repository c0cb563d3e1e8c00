// Package mouse provides the relative HID mouse state and gadget
// function definition.
package mouse

import (
	"github.com/Alia5/hidrelay/device"
)

// reportDescriptor describes a 5-button relative mouse with a vertical
// wheel: one button byte plus three signed 8-bit axes.
var reportDescriptor = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x02, // Usage (Mouse)
	0xA1, 0x01, // Collection (Application)
	0x09, 0x01, //   Usage (Pointer)
	0xA1, 0x00, //   Collection (Physical)

	// Buttons (1 byte: 5 buttons + 3 bits padding)
	0x05, 0x09, //     Usage Page (Button)
	0x19, 0x01, //     Usage Minimum (Button 1)
	0x29, 0x05, //     Usage Maximum (Button 5)
	0x15, 0x00, //     Logical Minimum (0)
	0x25, 0x01, //     Logical Maximum (1)
	0x95, 0x05, //     Report Count (5)
	0x75, 0x01, //     Report Size (1)
	0x81, 0x02, //     Input (Data, Variable, Absolute)
	0x95, 0x01, //     Report Count (1)
	0x75, 0x03, //     Report Size (3)
	0x81, 0x01, //     Input (Constant)

	// X, Y, wheel (3 signed bytes)
	0x05, 0x01, //     Usage Page (Generic Desktop)
	0x09, 0x30, //     Usage (X)
	0x09, 0x31, //     Usage (Y)
	0x09, 0x38, //     Usage (Wheel)
	0x15, 0x81, //     Logical Minimum (-127)
	0x25, 0x7F, //     Logical Maximum (127)
	0x75, 0x08, //     Report Size (8)
	0x95, 0x03, //     Report Count (3)
	0x81, 0x06, //     Input (Data, Variable, Relative)

	0xC0, //   End Collection
	0xC0, // End Collection
}

// Definition returns the gadget function definition for the mouse.
func Definition() device.Gadget {
	return device.Gadget{
		Name:         "mouse",
		Index:        1,
		Protocol:     2, // boot mouse
		Subclass:     1, // boot interface
		ReportLength: ReportLength,
		Descriptor:   reportDescriptor,
	}
}

func init() {
	device.Register(Definition())
}
