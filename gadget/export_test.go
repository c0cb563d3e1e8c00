package gadget

import "log/slog"

// NewTestWriter builds a Writer around an in-memory device file.
func NewTestWriter(name string, f deviceFile, logger *slog.Logger) *Writer {
	return &Writer{name: name, logger: logger, f: f}
}

// SetConfigfsRootForTest points gadget setup at a scratch directory.
func SetConfigfsRootForTest(dir string) (restore func()) {
	old := configfsRoot
	configfsRoot = dir
	return func() { configfsRoot = old }
}

// SetUDCClassDirForTest points UDC discovery at a scratch directory.
func SetUDCClassDirForTest(dir string) (restore func()) {
	old := udcClassDir
	udcClassDir = dir
	return func() { udcClassDir = old }
}
