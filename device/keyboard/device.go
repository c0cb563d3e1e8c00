// Package keyboard provides the boot-protocol HID keyboard state and
// gadget function definition.
package keyboard

import (
	"github.com/Alia5/hidrelay/device"
)

// reportDescriptor is the standard boot keyboard report descriptor:
// one modifier byte, one reserved byte, six key slots, plus the LED
// output report hosts expect from a boot keyboard.
var reportDescriptor = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x06, // Usage (Keyboard)
	0xA1, 0x01, // Collection (Application)

	// Modifiers (1 byte)
	0x05, 0x07, //   Usage Page (Keyboard/Keypad)
	0x19, 0xE0, //   Usage Minimum (Left Control)
	0x29, 0xE7, //   Usage Maximum (Right GUI)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0x01, //   Logical Maximum (1)
	0x75, 0x01, //   Report Size (1)
	0x95, 0x08, //   Report Count (8)
	0x81, 0x02, //   Input (Data, Variable, Absolute)

	// Reserved byte
	0x95, 0x01, //   Report Count (1)
	0x75, 0x08, //   Report Size (8)
	0x81, 0x01, //   Input (Constant)

	// LED output report (1 byte: 5 LEDs + 3 bits padding)
	0x95, 0x05, //   Report Count (5)
	0x75, 0x01, //   Report Size (1)
	0x05, 0x08, //   Usage Page (LEDs)
	0x19, 0x01, //   Usage Minimum (Num Lock)
	0x29, 0x05, //   Usage Maximum (Kana)
	0x91, 0x02, //   Output (Data, Variable, Absolute)
	0x95, 0x01, //   Report Count (1)
	0x75, 0x03, //   Report Size (3)
	0x91, 0x01, //   Output (Constant)

	// Key slots (6 bytes, array)
	0x95, 0x06, //   Report Count (6)
	0x75, 0x08, //   Report Size (8)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0x65, //   Logical Maximum (101)
	0x05, 0x07, //   Usage Page (Keyboard/Keypad)
	0x19, 0x00, //   Usage Minimum (0)
	0x29, 0x65, //   Usage Maximum (101)
	0x81, 0x00, //   Input (Data, Array)

	0xC0, // End Collection
}

// Definition returns the gadget function definition for the keyboard.
func Definition() device.Gadget {
	return device.Gadget{
		Name:         "keyboard",
		Index:        0,
		Protocol:     1, // boot keyboard
		Subclass:     1, // boot interface
		ReportLength: ReportLength,
		Descriptor:   reportDescriptor,
	}
}

func init() {
	device.Register(Definition())
}
