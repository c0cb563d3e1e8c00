package relay

import (
	"strings"

	"github.com/Alia5/hidrelay/evdev"
	"github.com/Alia5/hidrelay/internal/bluez"
)

// Filter decides which discovered input devices are relayed. An identifier
// matches by device node path, by Bluetooth address (colon or dash
// separated, any case) against the device's uniq, or as a case-insensitive
// substring of the display name. Auto-discovery matches everything except
// the HDMI CEC pseudo inputs the Pi exposes.
type Filter struct {
	ids          []identifier
	autoDiscover bool
}

type identifier struct {
	path string
	mac  string
	name string
}

func NewFilter(identifiers []string, autoDiscover bool) *Filter {
	f := &Filter{autoDiscover: autoDiscover}
	for _, raw := range identifiers {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		switch {
		case strings.HasPrefix(raw, "/dev/input"):
			f.ids = append(f.ids, identifier{path: raw})
		case bluez.NormalizeAddress(raw) != "":
			f.ids = append(f.ids, identifier{mac: bluez.NormalizeAddress(raw)})
		default:
			f.ids = append(f.ids, identifier{name: strings.ToLower(raw)})
		}
	}
	return f
}

// Matches reports whether the device should be relayed.
func (f *Filter) Matches(info evdev.Info) bool {
	for _, id := range f.ids {
		switch {
		case id.path != "":
			if id.path == info.Path {
				return true
			}
		case id.mac != "":
			if id.mac == bluez.NormalizeAddress(info.Uniq) {
				return true
			}
		default:
			if strings.Contains(strings.ToLower(info.Name), id.name) {
				return true
			}
		}
	}
	if f.autoDiscover {
		return !strings.Contains(strings.ToLower(info.Name), "vc4-hdmi")
	}
	return false
}
