package mouse_test

import (
	"testing"

	"github.com/Alia5/hidrelay/device/mouse"
	"github.com/stretchr/testify/assert"
)

func TestBuildReport(t *testing.T) {

	type testCase struct {
		name           string
		state          mouse.InputState
		expectedReport []byte
	}

	cases := []testCase{
		{
			name:           "idle",
			state:          mouse.InputState{},
			expectedReport: []byte{0x00, 0x00, 0x00, 0x00},
		},
		{
			name:           "left button",
			state:          mouse.InputState{Buttons: mouse.ButtonLeft},
			expectedReport: []byte{0x01, 0x00, 0x00, 0x00},
		},
		{
			name:           "movement",
			state:          mouse.InputState{DX: 10, DY: -5},
			expectedReport: []byte{0x00, 0x0A, 0xFB, 0x00},
		},
		{
			name:           "wheel",
			state:          mouse.InputState{Wheel: -1},
			expectedReport: []byte{0x00, 0x00, 0x00, 0xFF},
		},
		{
			name:           "deltas clamp to int8 range",
			state:          mouse.InputState{DX: 300, DY: -300, Wheel: 128},
			expectedReport: []byte{0x00, 0x7F, 0x81, 0x7F},
		},
		{
			name:           "all buttons",
			state:          mouse.InputState{Buttons: 0xFF},
			expectedReport: []byte{0x1F, 0x00, 0x00, 0x00},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedReport, tc.state.BuildReport())
		})
	}
}

func TestAccumulateThenDrain(t *testing.T) {
	var st mouse.InputState

	st.Move(3, 4)
	st.Move(2, -1)
	st.Scroll(1)
	st.Scroll(1)

	assert.Equal(t, []byte{0x00, 0x05, 0x03, 0x02}, st.BuildReport())
	// Building a report must not drain; that happens only after a
	// successful write.
	assert.Equal(t, []byte{0x00, 0x05, 0x03, 0x02}, st.BuildReport())

	st.Drain()
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, st.BuildReport())
}

func TestButtons(t *testing.T) {
	var st mouse.InputState

	st.Press(mouse.BtnLeft)
	st.Press(mouse.BtnRight)
	st.Press(mouse.BtnRight) // held presses are no-ops
	assert.Equal(t, uint8(mouse.ButtonLeft|mouse.ButtonRight), st.Buttons)

	st.Release(mouse.BtnLeft)
	st.Release(mouse.BtnMiddle) // unheld releases are no-ops
	assert.Equal(t, uint8(mouse.ButtonRight), st.Buttons)

	st.Press(0)  // out of range
	st.Press(42) // out of range
	assert.Equal(t, uint8(mouse.ButtonRight), st.Buttons)

	assert.True(t, st.Held())
	st.ReleaseAll()
	assert.False(t, st.Held())
}
