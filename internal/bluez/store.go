// Package bluez reads the BlueZ pairing store to answer trust queries for
// BLE peers. Pairing and trust marking themselves happen outside the
// process (bluetoothctl, an agent); this package only consults the result.
package bluez

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultRoot is where BlueZ persists per-adapter pairing data.
const DefaultRoot = "/var/lib/bluetooth"

var macPattern = regexp.MustCompile(`^([0-9A-F]{2}:){5}[0-9A-F]{2}$`)

// Store reads device records from a BlueZ storage directory laid out as
// <root>/<adapter MAC>/<device MAC>/info.
type Store struct {
	Root string
}

// Trusted reports whether the peer was marked trusted during pairing on any
// local adapter. Unknown peers and malformed addresses are untrusted.
func (s Store) Trusted(addr string) bool {
	mac := NormalizeAddress(addr)
	if mac == "" {
		return false
	}
	adapters, err := os.ReadDir(s.root())
	if err != nil {
		return false
	}
	for _, a := range adapters {
		if !a.IsDir() {
			continue
		}
		trusted, err := parseTrusted(filepath.Join(s.root(), a.Name(), mac, "info"))
		if err != nil {
			continue
		}
		if trusted {
			return true
		}
	}
	return false
}

func (s Store) root() string {
	if s.Root == "" {
		return DefaultRoot
	}
	return s.Root
}

// NormalizeAddress upper-cases a Bluetooth address, accepting dash or colon
// separators. Returns "" when the input is not an address.
func NormalizeAddress(addr string) string {
	addr = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(addr), "-", ":"))
	if !macPattern.MatchString(addr) {
		return ""
	}
	return addr
}

// parseTrusted scans a BlueZ info file for the Trusted flag in its General
// section. The files are small INI-style key/value lists.
func parseTrusted(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	section := ""
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			section = line[1 : len(line)-1]
		case section == "General":
			k, v, ok := strings.Cut(line, "=")
			if ok && strings.TrimSpace(k) == "Trusted" {
				return strings.EqualFold(strings.TrimSpace(v), "true"), nil
			}
		}
	}
	return false, sc.Err()
}
