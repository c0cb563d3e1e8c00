// Package shortcut parses the textual keystroke command language accepted
// over BLE into ordered key combinations.
package shortcut

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Alia5/hidrelay/keycode"
)

// Combo is one simultaneous key group: every keycode in it is pressed
// together, then released together. Modifier and base tokens may appear in
// any order and a combo may hold zero or several non-modifier keys.
type Combo []keycode.Keycode

// String renders the combo in the Mod+Key form used in logs.
func (c Combo) String() string {
	names := make([]string, len(c))
	for i, kc := range c {
		names[i] = kc.Name
	}
	return strings.Join(names, "+")
}

// ParseError reports the first unresolvable token of a command parsed in
// strict mode.
type ParseError struct {
	Token string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unknown key token %q", e.Token)
}

var (
	comboSep = regexp.MustCompile(`[\s,;]+`)
	tokenSep = regexp.MustCompile(`[-+]+`)
)

// ParseCommand splits a command into combos and resolves every token
// against the merged key name table. In strict mode an unknown token fails
// the whole command and nothing is emitted; otherwise unknown tokens are
// dropped and a combo left empty is discarded. Runs of separators produce
// no empty tokens.
func ParseCommand(command string, strict bool) ([]Combo, error) {
	var combos []Combo
	for _, part := range comboSep.Split(command, -1) {
		if part == "" {
			continue
		}
		var combo Combo
		for _, token := range tokenSep.Split(part, -1) {
			if token == "" {
				continue
			}
			kc := keycode.Translate(token)
			if kc == nil {
				if strict {
					return nil, &ParseError{Token: token}
				}
				continue
			}
			combo = append(combo, *kc)
		}
		if len(combo) == 0 {
			continue
		}
		combos = append(combos, combo)
	}
	return combos, nil
}
