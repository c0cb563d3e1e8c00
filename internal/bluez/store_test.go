package bluez_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/hidrelay/internal/bluez"
)

func writeInfo(t *testing.T, root, adapter, device, content string) {
	t.Helper()
	dir := filepath.Join(root, adapter, device)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "info"), []byte(content), 0o644))
}

const trustedInfo = `[General]
Name=Pixel 8
Class=0x5a020c
Trusted=true
Blocked=false

[DeviceID]
Source=2
`

const untrustedInfo = `[General]
Name=Unknown Phone
Trusted=false
`

const noFlagInfo = `[General]
Name=Freshly Paired
`

// Trusted=true outside the General section must not count.
const wrongSectionInfo = `[General]
Name=Sneaky

[DeviceID]
Trusted=true
`

func TestTrusted(t *testing.T) {
	root := t.TempDir()
	writeInfo(t, root, "B8:27:EB:AA:BB:CC", "DC:2C:26:01:02:03", trustedInfo)
	writeInfo(t, root, "B8:27:EB:AA:BB:CC", "DC:2C:26:0A:0B:0C", untrustedInfo)
	writeInfo(t, root, "B8:27:EB:AA:BB:CC", "DC:2C:26:11:22:33", noFlagInfo)
	writeInfo(t, root, "B8:27:EB:AA:BB:CC", "DC:2C:26:44:55:66", wrongSectionInfo)
	// Same peer trusted on a second adapter only.
	writeInfo(t, root, "B8:27:EB:DD:EE:FF", "DC:2C:26:77:88:99", trustedInfo)

	store := bluez.Store{Root: root}

	type testCase struct {
		name     string
		addr     string
		expected bool
	}

	cases := []testCase{
		{"trusted peer", "DC:2C:26:01:02:03", true},
		{"explicitly untrusted peer", "DC:2C:26:0A:0B:0C", false},
		{"paired but never trusted", "DC:2C:26:11:22:33", false},
		{"trusted flag in wrong section", "DC:2C:26:44:55:66", false},
		{"unknown peer", "DC:2C:26:FF:FF:FF", false},
		{"trusted via second adapter", "DC:2C:26:77:88:99", true},
		{"lowercase address", "dc:2c:26:01:02:03", true},
		{"dash separated address", "DC-2C-26-01-02-03", true},
		{"malformed address", "not-a-mac", false},
		{"empty address", "", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, store.Trusted(c.addr))
		})
	}
}

func TestTrustedMissingRoot(t *testing.T) {
	store := bluez.Store{Root: filepath.Join(t.TempDir(), "nope")}
	assert.False(t, store.Trusted("DC:2C:26:01:02:03"))
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "DC:2C:26:01:02:03", bluez.NormalizeAddress(" dc-2c-26-01-02-03 "))
	assert.Equal(t, "DC:2C:26:01:02:03", bluez.NormalizeAddress("DC:2C:26:01:02:03"))
	assert.Equal(t, "", bluez.NormalizeAddress("DC:2C:26:01:02"))
	assert.Equal(t, "", bluez.NormalizeAddress("hello"))
}
