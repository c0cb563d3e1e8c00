package gadget

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Alia5/hidrelay/device"
)

var configfsRoot = "/sys/kernel/config/usb_gadget"

const (
	gadgetDir = "hidrelay"

	// Linux Foundation multifunction composite gadget IDs.
	idVendor  = "0x1d6b"
	idProduct = "0x0104"
)

// ConfigfsPath returns the configfs directory of the composite gadget.
func ConfigfsPath() string {
	return filepath.Join(configfsRoot, gadgetDir)
}

// Setup creates the composite HID gadget under configfs, one function per
// registered gadget definition, and binds it to the first available UDC.
// Requires root and the libcomposite module.
func Setup(logger *slog.Logger) error {
	if _, err := os.Stat(configfsRoot); err != nil {
		return fmt.Errorf("configfs not available, is libcomposite loaded: %w", err)
	}
	root := ConfigfsPath()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create gadget dir: %w", err)
	}

	attrs := []struct{ name, value string }{
		{"idVendor", idVendor},
		{"idProduct", idProduct},
		{"bcdDevice", "0x0100"},
		{"bcdUSB", "0x0200"},
	}
	for _, a := range attrs {
		if err := writeAttr(root, a.name, a.value); err != nil {
			return err
		}
	}

	strDir := filepath.Join(root, "strings", "0x409")
	if err := os.MkdirAll(strDir, 0o755); err != nil {
		return fmt.Errorf("create strings dir: %w", err)
	}
	for _, a := range []struct{ name, value string }{
		{"serialnumber", "0123456789"},
		{"manufacturer", "hidrelay"},
		{"product", "hidrelay composite HID"},
	} {
		if err := writeAttr(strDir, a.name, a.value); err != nil {
			return err
		}
	}

	cfgDir := filepath.Join(root, "configs", "c.1")
	cfgStrDir := filepath.Join(cfgDir, "strings", "0x409")
	if err := os.MkdirAll(cfgStrDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := writeAttr(cfgStrDir, "configuration", "HID relay"); err != nil {
		return err
	}
	if err := writeAttr(cfgDir, "MaxPower", "250"); err != nil {
		return err
	}

	// Functions are created in index order so the kernel hands out hidg
	// node numbers matching each definition's default node.
	for _, g := range device.Gadgets() {
		fn := functionName(g)
		fnDir := filepath.Join(root, "functions", fn)
		if err := os.MkdirAll(fnDir, 0o755); err != nil {
			return fmt.Errorf("create function %s: %w", fn, err)
		}
		if err := writeAttr(fnDir, "protocol", strconv.Itoa(int(g.Protocol))); err != nil {
			return err
		}
		if err := writeAttr(fnDir, "subclass", strconv.Itoa(int(g.Subclass))); err != nil {
			return err
		}
		if err := writeAttr(fnDir, "report_length", strconv.Itoa(g.ReportLength)); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(fnDir, "report_desc"), g.Descriptor, 0o644); err != nil {
			return fmt.Errorf("write report descriptor for %s: %w", fn, err)
		}
		if err := os.Symlink(fnDir, filepath.Join(cfgDir, fn)); err != nil && !os.IsExist(err) {
			return fmt.Errorf("link function %s: %w", fn, err)
		}
		logger.Info("created gadget function",
			slog.String("function", fn),
			slog.String("node", g.DefaultNode()))
	}

	udc, err := FirstUDC()
	if err != nil {
		return err
	}
	if err := writeAttr(root, "UDC", udc); err != nil {
		return fmt.Errorf("bind udc %s: %w", udc, err)
	}
	logger.Info("gadget bound", slog.String("udc", udc))
	return nil
}

// Teardown unbinds the gadget from its UDC and removes the configfs tree.
// Missing pieces are skipped so a partial setup can be cleaned up.
func Teardown(logger *slog.Logger) error {
	root := ConfigfsPath()
	if _, err := os.Stat(root); os.IsNotExist(err) {
		logger.Info("gadget not configured")
		return nil
	}

	// Unbind first; the kernel refuses to remove a bound gadget.
	if err := writeAttr(root, "UDC", "\n"); err != nil {
		logger.Warn("unbind udc", slog.Any("error", err))
	}

	cfgDir := filepath.Join(root, "configs", "c.1")
	for _, g := range device.Gadgets() {
		fn := functionName(g)
		if err := os.Remove(filepath.Join(cfgDir, fn)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("unlink function %s: %w", fn, err)
		}
		if err := os.Remove(filepath.Join(root, "functions", fn)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove function %s: %w", fn, err)
		}
	}

	for _, dir := range []string{
		filepath.Join(cfgDir, "strings", "0x409"),
		cfgDir,
		filepath.Join(root, "strings", "0x409"),
		root,
	} {
		if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", dir, err)
		}
	}
	logger.Info("gadget removed")
	return nil
}

func functionName(g device.Gadget) string {
	return fmt.Sprintf("hid.usb%d", g.Index)
}

func writeAttr(dir, name, value string) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
