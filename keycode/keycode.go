// Package keycode maps kernel input event codes and textual key names to
// HID usages across the three gadget categories.
package keycode

import (
	"strings"

	"github.com/Alia5/hidrelay/device/keyboard"
)

// Category selects the gadget a usage is reported through.
type Category int

const (
	CategoryKeyboard Category = iota
	CategoryMouse
	CategoryConsumer
)

func (c Category) String() string {
	switch c {
	case CategoryKeyboard:
		return "keyboard"
	case CategoryMouse:
		return "mouse"
	case CategoryConsumer:
		return "consumer"
	}
	return "unknown"
}

// Keycode is one resolved mapping from an event code or key name to a HID
// usage. For mouse buttons Usage is the button number (1 = left), for the
// other categories it is the usage ID on the respective HID usage page.
type Keycode struct {
	Name     string
	Usage    uint16
	Category Category
}

// IsModifier reports whether the keycode is one of the eight keyboard
// modifier usages.
func (k Keycode) IsModifier() bool {
	return k.Category == CategoryKeyboard &&
		k.Usage >= keyboard.KeyLeftCtrl && k.Usage <= keyboard.KeyRightGUI
}

// Translate resolves a textual key name to its usage mapping. Lookup is
// case-insensitive and covers kernel key names, Windows virtual-key style
// aliases and multimedia key names. Unknown tokens yield nil.
func Translate(token string) *Keycode {
	kc, ok := byName[strings.ToUpper(strings.TrimSpace(token))]
	if !ok {
		return nil
	}
	return &kc
}

// FromEvdev resolves a kernel input event code (EV_KEY) to its usage
// mapping. Codes outside the table yield nil.
func FromEvdev(code uint16) *Keycode {
	kc, ok := evdevKeys[code]
	if !ok {
		return nil
	}
	return &kc
}
