package evdev

import "path/filepath"

// InputDir is the directory the kernel creates input device nodes in.
const InputDir = "/dev/input"

// Info identifies one input device node. Uniq carries the Bluetooth MAC
// for BT peripherals and is empty for most wired devices.
type Info struct {
	Path string
	Name string
	Phys string
	Uniq string
}

// List enumerates the available input device nodes. Nodes that cannot be
// opened (insufficient permissions, vanished between glob and open) are
// skipped silently.
func List() ([]Info, error) {
	paths, err := filepath.Glob(InputDir + "/event*")
	if err != nil {
		return nil, err
	}
	infos := make([]Info, 0, len(paths))
	for _, p := range paths {
		d, err := Open(p)
		if err != nil {
			continue
		}
		infos = append(infos, d.Info())
		_ = d.Close()
	}
	return infos, nil
}
