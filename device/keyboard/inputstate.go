package keyboard

import (
	"errors"
)

// MaxKeys is the number of regular key slots in a boot-protocol report.
const MaxKeys = 6

// ReportLength is the fixed size of one keyboard input report.
const ReportLength = 8

// ErrCapacityExceeded is returned by Press when six regular keys are
// already held. The press is ignored and the held keys stay unchanged.
var ErrCapacityExceeded = errors.New("keyboard: six keys already held")

// InputState tracks held modifiers and regular keys between report flushes.
// Regular keys keep press order, oldest first, so the report slots stay
// stable while other keys come and go.
type InputState struct {
	Modifiers uint8 // bit 0-7: LCtrl, LShift, LAlt, LGui, RCtrl, RShift, RAlt, RGui
	Keys      []uint8
}

// Press marks a usage as held. Modifier usages set their bitmask bit,
// regular usages occupy the next free slot. Pressing a usage that is
// already held is a no-op.
func (st *InputState) Press(usage uint8) error {
	if bit := ModifierBit(usage); bit != 0 {
		st.Modifiers |= bit
		return nil
	}
	for _, k := range st.Keys {
		if k == usage {
			return nil
		}
	}
	if len(st.Keys) >= MaxKeys {
		return ErrCapacityExceeded
	}
	st.Keys = append(st.Keys, usage)
	return nil
}

// Release clears a held usage. Releasing a usage that is not held is a no-op.
func (st *InputState) Release(usage uint8) {
	if bit := ModifierBit(usage); bit != 0 {
		st.Modifiers &^= bit
		return
	}
	for i, k := range st.Keys {
		if k == usage {
			st.Keys = append(st.Keys[:i], st.Keys[i+1:]...)
			return
		}
	}
}

// ReleaseAll clears all held modifiers and keys.
func (st *InputState) ReleaseAll() {
	st.Modifiers = 0
	st.Keys = st.Keys[:0]
}

// Held reports whether any modifier or key is currently held.
func (st *InputState) Held() bool {
	return st.Modifiers != 0 || len(st.Keys) > 0
}

// BuildReport encodes the state into the 8-byte boot keyboard report.
//
// Report layout (8 bytes):
//
//	Byte 0: Modifiers (8 bits)
//	Byte 1: Reserved (0x00)
//	Bytes 2-7: Key slots in press order, oldest first, zero-padded
func (st InputState) BuildReport() []byte {
	b := make([]byte, ReportLength)
	b[0] = st.Modifiers
	copy(b[2:], st.Keys)
	return b
}
