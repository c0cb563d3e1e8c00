package consumer

import (
	"encoding/binary"
)

// ReportLength is the fixed size of one consumer-control input report.
const ReportLength = 2

// Common usages on the Consumer usage page.
const (
	UsagePlay           = 0xB0
	UsagePause          = 0xB1
	UsageFastForward    = 0xB3
	UsageRewind         = 0xB4
	UsageScanNext       = 0xB5
	UsageScanPrevious   = 0xB6
	UsageStop           = 0xB7
	UsageEject          = 0xB8
	UsagePlayPause      = 0xCD
	UsageMute           = 0xE2
	UsageVolumeUp       = 0xE9
	UsageVolumeDown     = 0xEA
	UsageBrightnessUp   = 0x6F
	UsageBrightnessDown = 0x70
)

// InputState tracks the active consumer-control usage. Consumer controls
// are momentary: at most one usage is reported at a time and an all-zero
// report releases it.
type InputState struct {
	Usage uint16
}

// Press activates a usage, replacing any currently active one.
func (st *InputState) Press(usage uint16) {
	st.Usage = usage
}

// Release deactivates the usage if it is the active one.
func (st *InputState) Release(usage uint16) {
	if st.Usage == usage {
		st.Usage = 0
	}
}

// ReleaseAll deactivates any active usage.
func (st *InputState) ReleaseAll() {
	st.Usage = 0
}

// Held reports whether a usage is currently active.
func (st *InputState) Held() bool {
	return st.Usage != 0
}

// BuildReport encodes the state into the 2-byte little-endian usage report.
func (st InputState) BuildReport() []byte {
	b := make([]byte, ReportLength)
	binary.LittleEndian.PutUint16(b, st.Usage)
	return b
}
