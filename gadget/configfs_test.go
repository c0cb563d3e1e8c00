package gadget_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/hidrelay/device"
	_ "github.com/Alia5/hidrelay/device/consumer"
	_ "github.com/Alia5/hidrelay/device/keyboard"
	_ "github.com/Alia5/hidrelay/device/mouse"
	"github.com/Alia5/hidrelay/gadget"
)

// fakeSysfs redirects configfs and UDC discovery to scratch directories
// seeded with one controller.
func fakeSysfs(t *testing.T) string {
	t.Helper()
	cfsRoot := t.TempDir()
	udcDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(udcDir, "fe980000.usb"), 0o755))
	t.Cleanup(gadget.SetConfigfsRootForTest(cfsRoot))
	t.Cleanup(gadget.SetUDCClassDirForTest(udcDir))
	return cfsRoot
}

func TestSetupBuildsGadgetTree(t *testing.T) {
	root := fakeSysfs(t)
	require.NoError(t, gadget.Setup(discardLogger()))

	gdir := filepath.Join(root, "hidrelay")
	for _, attr := range []struct{ file, want string }{
		{"idVendor", "0x1d6b"},
		{"idProduct", "0x0104"},
		{"UDC", "fe980000.usb"},
	} {
		b, err := os.ReadFile(filepath.Join(gdir, attr.file))
		require.NoError(t, err, attr.file)
		assert.Equal(t, attr.want, string(b), attr.file)
	}

	gadgets := device.Gadgets()
	require.Len(t, gadgets, 3)
	for _, g := range gadgets {
		fn := fmt.Sprintf("hid.usb%d", g.Index)
		fnDir := filepath.Join(gdir, "functions", fn)

		length, err := os.ReadFile(filepath.Join(fnDir, "report_length"))
		require.NoError(t, err, fn)
		assert.Equal(t, strconv.Itoa(g.ReportLength), string(length), fn)

		desc, err := os.ReadFile(filepath.Join(fnDir, "report_desc"))
		require.NoError(t, err, fn)
		assert.Equal(t, g.Descriptor, desc, fn)

		_, err = os.Lstat(filepath.Join(gdir, "configs", "c.1", fn))
		assert.NoError(t, err, fn)
	}
}

func TestSetupRequiresConfigfs(t *testing.T) {
	t.Cleanup(gadget.SetConfigfsRootForTest(filepath.Join(t.TempDir(), "missing")))

	err := gadget.Setup(discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "libcomposite")
}

func TestSetupFailsWithoutUDC(t *testing.T) {
	t.Cleanup(gadget.SetConfigfsRootForTest(t.TempDir()))
	t.Cleanup(gadget.SetUDCClassDirForTest(t.TempDir()))

	err := gadget.Setup(discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no udc controller")
}

func TestTeardownWithoutGadget(t *testing.T) {
	t.Cleanup(gadget.SetConfigfsRootForTest(t.TempDir()))

	assert.NoError(t, gadget.Teardown(discardLogger()))
}
