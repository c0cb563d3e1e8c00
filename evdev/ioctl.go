package evdev

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl request encoding from asm-generic/ioctl.h.
const (
	iocWrite = 1
	iocRead  = 2

	iocNrShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNrShift | size<<iocSizeShift
}

// EVIOCGRAB takes the grab flag as the argument word itself, not a pointer.
var eviocgrab = ioc(iocWrite, 'E', 0x90, unsafe.Sizeof(int32(0)))

const (
	eviocgnameNr = 0x06
	eviocgphysNr = 0x07
	eviocguniqNr = 0x08
)

func (d *Device) ioctlWord(req, arg uintptr) error {
	raw, err := d.f.SyscallConn()
	if err != nil {
		return err
	}
	var errno unix.Errno
	cerr := raw.Control(func(fd uintptr) {
		_, _, errno = unix.Syscall(unix.SYS_IOCTL, fd, req, arg)
	})
	if cerr != nil {
		return cerr
	}
	if errno != 0 {
		return errno
	}
	return nil
}

// ioctlString fetches a string attribute such as the device name. Devices
// without the attribute report an error, mapped to an empty string by the
// callers.
func (d *Device) ioctlString(nr uintptr) (string, error) {
	buf := make([]byte, 256)
	req := ioc(iocRead, 'E', nr, uintptr(len(buf)))

	raw, err := d.f.SyscallConn()
	if err != nil {
		return "", err
	}
	var n uintptr
	var errno unix.Errno
	cerr := raw.Control(func(fd uintptr) {
		n, _, errno = unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(unsafe.Pointer(&buf[0])))
	})
	if cerr != nil {
		return "", cerr
	}
	if errno != 0 {
		return "", errno
	}
	if n > 0 && buf[n-1] == 0 {
		n--
	}
	return string(buf[:n]), nil
}
