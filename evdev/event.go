// Package evdev reads events from Linux kernel input device nodes.
package evdev

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// Event types from the kernel input event codes.
const (
	EvSyn uint16 = 0x00
	EvKey uint16 = 0x01
	EvRel uint16 = 0x02
)

// SynReport marks the end of one coherent batch of events.
const SynReport uint16 = 0

// Relative axis codes.
const (
	RelX     uint16 = 0x00
	RelY     uint16 = 0x01
	RelWheel uint16 = 0x08
)

// EV_KEY event values.
const (
	KeyRelease int32 = 0
	KeyPress   int32 = 1
	KeyRepeat  int32 = 2
)

// eventSize is the wire size of one struct input_event on 64-bit kernels.
const eventSize = 24

// InputEvent mirrors the kernel's struct input_event.
type InputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

func decodeEvent(b []byte) InputEvent {
	return InputEvent{
		Time: unix.Timeval{
			Sec:  int64(binary.LittleEndian.Uint64(b[0:8])),
			Usec: int64(binary.LittleEndian.Uint64(b[8:16])),
		},
		Type:  binary.LittleEndian.Uint16(b[16:18]),
		Code:  binary.LittleEndian.Uint16(b[18:20]),
		Value: int32(binary.LittleEndian.Uint32(b[20:24])),
	}
}
