package mouse

// Mouse button bitmasks
const (
	ButtonLeft    = 0x01
	ButtonRight   = 0x02
	ButtonMiddle  = 0x04
	ButtonBack    = 0x08
	ButtonForward = 0x10
)

// Button numbers on the HID Button usage page (1-based).
const (
	BtnLeft    = 1
	BtnRight   = 2
	BtnMiddle  = 3
	BtnBack    = 4
	BtnForward = 5
)

// ReportLength is the fixed size of one mouse input report.
const ReportLength = 4

// ButtonBit returns the button bitmask bit for a 1-based button number,
// or 0 when the number is out of range.
func ButtonBit(button uint8) uint8 {
	if button < BtnLeft || button > BtnForward {
		return 0
	}
	return 1 << (button - 1)
}

// InputState tracks held buttons and the relative movement accumulated
// since the last drain. Multiple moves between flushes sum up so no
// motion is lost when events arrive faster than reports are written.
type InputState struct {
	// Button bitfield: bit 0=Left, 1=Right, 2=Middle, 3=Back, 4=Forward
	Buttons uint8
	// Accumulated relative movement since the last Drain.
	DX, DY int32
	// Accumulated vertical scroll since the last Drain.
	Wheel int32
}

// Press marks a button (1-based number) as held. Unknown buttons and
// already-held buttons are no-ops.
func (st *InputState) Press(button uint8) {
	st.Buttons |= ButtonBit(button)
}

// Release clears a held button. Releasing an unheld button is a no-op.
func (st *InputState) Release(button uint8) {
	st.Buttons &^= ButtonBit(button)
}

// ReleaseAll clears all held buttons and accumulated motion.
func (st *InputState) ReleaseAll() {
	st.Buttons = 0
	st.DX, st.DY, st.Wheel = 0, 0, 0
}

// Held reports whether any button is currently held.
func (st *InputState) Held() bool {
	return st.Buttons != 0
}

// Move adds relative movement to the accumulators.
func (st *InputState) Move(dx, dy int32) {
	st.DX += dx
	st.DY += dy
}

// Scroll adds vertical wheel movement to the accumulator.
func (st *InputState) Scroll(delta int32) {
	st.Wheel += delta
}

// Drain zeroes the accumulated deltas. Call after a report built from this
// state was successfully written.
func (st *InputState) Drain() {
	st.DX, st.DY, st.Wheel = 0, 0, 0
}

// BuildReport encodes the state into the 4-byte HID mouse report.
// Accumulated deltas beyond the int8 range are clamped.
//
// Report layout (4 bytes):
//
//	Byte 0: Button bitfield (bit 0=Left, 1=Right, 2=Middle, 3=Back, 4=Forward, bits 5-7=padding)
//	Byte 1: DX (int8, -127 to +127)
//	Byte 2: DY (int8)
//	Byte 3: Wheel (int8)
func (st InputState) BuildReport() []byte {
	b := make([]byte, ReportLength)
	b[0] = st.Buttons & 0x1F // 5 buttons, mask upper bits
	b[1] = byte(clamp8(st.DX))
	b[2] = byte(clamp8(st.DY))
	b[3] = byte(clamp8(st.Wheel))
	return b
}

func clamp8(v int32) int8 {
	if v > 127 {
		return 127
	}
	if v < -127 {
		return -127
	}
	return int8(v)
}
