package relay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/hidrelay/evdev"
	"github.com/Alia5/hidrelay/internal/relay"
)

func TestFilterMatches(t *testing.T) {
	type testCase struct {
		name string
		ids  []string
		auto bool
		info evdev.Info
		want bool
	}

	cases := []testCase{
		{
			name: "path match",
			ids:  []string{"/dev/input/event3"},
			info: evdev.Info{Path: "/dev/input/event3", Name: "BT Keyboard"},
			want: true,
		},
		{
			name: "path mismatch",
			ids:  []string{"/dev/input/event3"},
			info: evdev.Info{Path: "/dev/input/event4", Name: "BT Keyboard"},
			want: false,
		},
		{
			name: "mac match",
			ids:  []string{"aa:bb:cc:dd:ee:ff"},
			info: evdev.Info{Uniq: "AA:BB:CC:DD:EE:FF"},
			want: true,
		},
		{
			name: "mac match with dashes",
			ids:  []string{"AA-BB-CC-DD-EE-FF"},
			info: evdev.Info{Uniq: "aa:bb:cc:dd:ee:ff"},
			want: true,
		},
		{
			name: "mac mismatch",
			ids:  []string{"aa:bb:cc:dd:ee:ff"},
			info: evdev.Info{Uniq: "aa:bb:cc:dd:ee:00"},
			want: false,
		},
		{
			name: "name substring case insensitive",
			ids:  []string{"logitech"},
			info: evdev.Info{Name: "Logitech K380 Keyboard"},
			want: true,
		},
		{
			name: "name mismatch",
			ids:  []string{"logitech"},
			info: evdev.Info{Name: "Generic Mouse"},
			want: false,
		},
		{
			name: "auto discovery matches anything",
			auto: true,
			info: evdev.Info{Name: "Some BT Keyboard"},
			want: true,
		},
		{
			name: "auto discovery skips hdmi cec",
			auto: true,
			info: evdev.Info{Name: "vc4-hdmi-0/input0"},
			want: false,
		},
		{
			name: "explicit identifier beats the cec skip",
			ids:  []string{"/dev/input/event9"},
			auto: true,
			info: evdev.Info{Path: "/dev/input/event9", Name: "vc4-hdmi-0/input0"},
			want: true,
		},
		{
			name: "nothing configured",
			info: evdev.Info{Name: "BT Keyboard"},
			want: false,
		},
		{
			name: "blank identifiers are ignored",
			ids:  []string{"", "   "},
			info: evdev.Info{Name: "BT Keyboard"},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := relay.NewFilter(tc.ids, tc.auto)
			assert.Equal(t, tc.want, f.Matches(tc.info))
		})
	}
}
