package keycode

import (
	"github.com/Alia5/hidrelay/device/consumer"
	"github.com/Alia5/hidrelay/device/keyboard"
	"github.com/Alia5/hidrelay/device/mouse"
)

// evdevKeys maps kernel input event codes (EV_KEY) to HID usages. Names
// follow the kernel KEY_* constants without their prefix; mouse buttons
// keep the BTN_ prefix to avoid clashing with the arrow key names.
var evdevKeys = map[uint16]Keycode{
	1:  {"ESC", keyboard.KeyEscape, CategoryKeyboard},
	2:  {"1", keyboard.Key1, CategoryKeyboard},
	3:  {"2", keyboard.Key2, CategoryKeyboard},
	4:  {"3", keyboard.Key3, CategoryKeyboard},
	5:  {"4", keyboard.Key4, CategoryKeyboard},
	6:  {"5", keyboard.Key5, CategoryKeyboard},
	7:  {"6", keyboard.Key6, CategoryKeyboard},
	8:  {"7", keyboard.Key7, CategoryKeyboard},
	9:  {"8", keyboard.Key8, CategoryKeyboard},
	10: {"9", keyboard.Key9, CategoryKeyboard},
	11: {"0", keyboard.Key0, CategoryKeyboard},
	12: {"MINUS", keyboard.KeyMinus, CategoryKeyboard},
	13: {"EQUAL", keyboard.KeyEqual, CategoryKeyboard},
	14: {"BACKSPACE", keyboard.KeyBackspace, CategoryKeyboard},
	15: {"TAB", keyboard.KeyTab, CategoryKeyboard},
	16: {"Q", keyboard.KeyQ, CategoryKeyboard},
	17: {"W", keyboard.KeyW, CategoryKeyboard},
	18: {"E", keyboard.KeyE, CategoryKeyboard},
	19: {"R", keyboard.KeyR, CategoryKeyboard},
	20: {"T", keyboard.KeyT, CategoryKeyboard},
	21: {"Y", keyboard.KeyY, CategoryKeyboard},
	22: {"U", keyboard.KeyU, CategoryKeyboard},
	23: {"I", keyboard.KeyI, CategoryKeyboard},
	24: {"O", keyboard.KeyO, CategoryKeyboard},
	25: {"P", keyboard.KeyP, CategoryKeyboard},
	26: {"LEFTBRACE", keyboard.KeyLeftBrace, CategoryKeyboard},
	27: {"RIGHTBRACE", keyboard.KeyRightBrace, CategoryKeyboard},
	28: {"ENTER", keyboard.KeyEnter, CategoryKeyboard},
	29: {"LEFTCTRL", keyboard.KeyLeftCtrl, CategoryKeyboard},
	30: {"A", keyboard.KeyA, CategoryKeyboard},
	31: {"S", keyboard.KeyS, CategoryKeyboard},
	32: {"D", keyboard.KeyD, CategoryKeyboard},
	33: {"F", keyboard.KeyF, CategoryKeyboard},
	34: {"G", keyboard.KeyG, CategoryKeyboard},
	35: {"H", keyboard.KeyH, CategoryKeyboard},
	36: {"J", keyboard.KeyJ, CategoryKeyboard},
	37: {"K", keyboard.KeyK, CategoryKeyboard},
	38: {"L", keyboard.KeyL, CategoryKeyboard},
	39: {"SEMICOLON", keyboard.KeySemicolon, CategoryKeyboard},
	40: {"APOSTROPHE", keyboard.KeyApostrophe, CategoryKeyboard},
	41: {"GRAVE", keyboard.KeyGrave, CategoryKeyboard},
	42: {"LEFTSHIFT", keyboard.KeyLeftShift, CategoryKeyboard},
	43: {"BACKSLASH", keyboard.KeyBackslash, CategoryKeyboard},
	44: {"Z", keyboard.KeyZ, CategoryKeyboard},
	45: {"X", keyboard.KeyX, CategoryKeyboard},
	46: {"C", keyboard.KeyC, CategoryKeyboard},
	47: {"V", keyboard.KeyV, CategoryKeyboard},
	48: {"B", keyboard.KeyB, CategoryKeyboard},
	49: {"N", keyboard.KeyN, CategoryKeyboard},
	50: {"M", keyboard.KeyM, CategoryKeyboard},
	51: {"COMMA", keyboard.KeyComma, CategoryKeyboard},
	52: {"DOT", keyboard.KeyPeriod, CategoryKeyboard},
	53: {"SLASH", keyboard.KeySlash, CategoryKeyboard},
	54: {"RIGHTSHIFT", keyboard.KeyRightShift, CategoryKeyboard},
	55: {"KPASTERISK", keyboard.KeyKpAsterisk, CategoryKeyboard},
	56: {"LEFTALT", keyboard.KeyLeftAlt, CategoryKeyboard},
	57: {"SPACE", keyboard.KeySpace, CategoryKeyboard},
	58: {"CAPSLOCK", keyboard.KeyCapsLock, CategoryKeyboard},
	59: {"F1", keyboard.KeyF1, CategoryKeyboard},
	60: {"F2", keyboard.KeyF2, CategoryKeyboard},
	61: {"F3", keyboard.KeyF3, CategoryKeyboard},
	62: {"F4", keyboard.KeyF4, CategoryKeyboard},
	63: {"F5", keyboard.KeyF5, CategoryKeyboard},
	64: {"F6", keyboard.KeyF6, CategoryKeyboard},
	65: {"F7", keyboard.KeyF7, CategoryKeyboard},
	66: {"F8", keyboard.KeyF8, CategoryKeyboard},
	67: {"F9", keyboard.KeyF9, CategoryKeyboard},
	68: {"F10", keyboard.KeyF10, CategoryKeyboard},
	69: {"NUMLOCK", keyboard.KeyNumLock, CategoryKeyboard},
	70: {"SCROLLLOCK", keyboard.KeyScrollLock, CategoryKeyboard},
	71: {"KP7", keyboard.KeyKp7, CategoryKeyboard},
	72: {"KP8", keyboard.KeyKp8, CategoryKeyboard},
	73: {"KP9", keyboard.KeyKp9, CategoryKeyboard},
	74: {"KPMINUS", keyboard.KeyKpMinus, CategoryKeyboard},
	75: {"KP4", keyboard.KeyKp4, CategoryKeyboard},
	76: {"KP5", keyboard.KeyKp5, CategoryKeyboard},
	77: {"KP6", keyboard.KeyKp6, CategoryKeyboard},
	78: {"KPPLUS", keyboard.KeyKpPlus, CategoryKeyboard},
	79: {"KP1", keyboard.KeyKp1, CategoryKeyboard},
	80: {"KP2", keyboard.KeyKp2, CategoryKeyboard},
	81: {"KP3", keyboard.KeyKp3, CategoryKeyboard},
	82: {"KP0", keyboard.KeyKp0, CategoryKeyboard},
	83: {"KPDOT", keyboard.KeyKpDot, CategoryKeyboard},
	87: {"F11", keyboard.KeyF11, CategoryKeyboard},
	88: {"F12", keyboard.KeyF12, CategoryKeyboard},
	96: {"KPENTER", keyboard.KeyKpEnter, CategoryKeyboard},
	97: {"RIGHTCTRL", keyboard.KeyRightCtrl, CategoryKeyboard},
	98: {"KPSLASH", keyboard.KeyKpSlash, CategoryKeyboard},
	99: {"SYSRQ", keyboard.KeyPrintScreen, CategoryKeyboard},

	100: {"RIGHTALT", keyboard.KeyRightAlt, CategoryKeyboard},
	102: {"HOME", keyboard.KeyHome, CategoryKeyboard},
	103: {"UP", keyboard.KeyUp, CategoryKeyboard},
	104: {"PAGEUP", keyboard.KeyPageUp, CategoryKeyboard},
	105: {"LEFT", keyboard.KeyLeft, CategoryKeyboard},
	106: {"RIGHT", keyboard.KeyRight, CategoryKeyboard},
	107: {"END", keyboard.KeyEnd, CategoryKeyboard},
	108: {"DOWN", keyboard.KeyDown, CategoryKeyboard},
	109: {"PAGEDOWN", keyboard.KeyPageDown, CategoryKeyboard},
	110: {"INSERT", keyboard.KeyInsert, CategoryKeyboard},
	111: {"DELETE", keyboard.KeyDelete, CategoryKeyboard},
	119: {"PAUSE", keyboard.KeyPause, CategoryKeyboard},
	125: {"LEFTMETA", keyboard.KeyLeftGUI, CategoryKeyboard},
	126: {"RIGHTMETA", keyboard.KeyRightGUI, CategoryKeyboard},
	127: {"COMPOSE", keyboard.KeyApplication, CategoryKeyboard},

	// Multimedia keys, reported through the consumer-control gadget.
	113: {"MUTE", consumer.UsageMute, CategoryConsumer},
	114: {"VOLUMEDOWN", consumer.UsageVolumeDown, CategoryConsumer},
	115: {"VOLUMEUP", consumer.UsageVolumeUp, CategoryConsumer},
	161: {"EJECTCD", consumer.UsageEject, CategoryConsumer},
	163: {"NEXTSONG", consumer.UsageScanNext, CategoryConsumer},
	164: {"PLAYPAUSE", consumer.UsagePlayPause, CategoryConsumer},
	165: {"PREVIOUSSONG", consumer.UsageScanPrevious, CategoryConsumer},
	166: {"STOPCD", consumer.UsageStop, CategoryConsumer},
	168: {"REWIND", consumer.UsageRewind, CategoryConsumer},
	200: {"PLAYCD", consumer.UsagePlay, CategoryConsumer},
	208: {"FASTFORWARD", consumer.UsageFastForward, CategoryConsumer},
	224: {"BRIGHTNESSDOWN", consumer.UsageBrightnessDown, CategoryConsumer},
	225: {"BRIGHTNESSUP", consumer.UsageBrightnessUp, CategoryConsumer},

	// Mouse buttons. Usage is the button number, not a usage page entry.
	272: {"BTN_LEFT", mouse.BtnLeft, CategoryMouse},
	273: {"BTN_RIGHT", mouse.BtnRight, CategoryMouse},
	274: {"BTN_MIDDLE", mouse.BtnMiddle, CategoryMouse},
	275: {"BTN_SIDE", mouse.BtnBack, CategoryMouse},
	276: {"BTN_EXTRA", mouse.BtnForward, CategoryMouse},
}

// vkAliases maps Windows virtual-key style names and common abbreviations
// to canonical kernel key names.
var vkAliases = map[string]string{
	"CTRL":     "LEFTCTRL",
	"CONTROL":  "LEFTCTRL",
	"SHIFT":    "LEFTSHIFT",
	"ALT":      "LEFTALT",
	"WIN":      "LEFTMETA",
	"META":     "LEFTMETA",
	"LCTRL":    "LEFTCTRL",
	"RCTRL":    "RIGHTCTRL",
	"LSHIFT":   "LEFTSHIFT",
	"RSHIFT":   "RIGHTSHIFT",
	"LALT":     "LEFTALT",
	"RALT":     "RIGHTALT",
	"LWIN":     "LEFTMETA",
	"RWIN":     "RIGHTMETA",
	"LMETA":    "LEFTMETA",
	"RMETA":    "RIGHTMETA",
	"ESCAPE":   "ESC",
	"RETURN":   "ENTER",
	"BACK":     "BACKSPACE",
	"DEL":      "DELETE",
	"INS":      "INSERT",
	"PGUP":     "PAGEUP",
	"PGDOWN":   "PAGEDOWN",
	"PRIOR":    "PAGEUP",
	"NEXT":     "PAGEDOWN",
	"PRTSCR":   "SYSRQ",
	"SNAPSHOT": "SYSRQ",
	"BREAK":    "PAUSE",
	"APP":      "COMPOSE",
}

// byName merges kernel key names, virtual-key aliases and multimedia names
// into one lookup table for textual tokens. Kernel names win on collision;
// mouse buttons are not addressable by name.
var byName = make(map[string]Keycode, len(evdevKeys)+len(vkAliases))

func init() {
	for _, kc := range evdevKeys {
		if kc.Category == CategoryMouse {
			continue
		}
		byName[kc.Name] = kc
	}
	for alias, canonical := range vkAliases {
		if _, ok := byName[alias]; ok {
			continue
		}
		byName[alias] = byName[canonical]
	}
}
