//go:build linux

package linux

import (
	"errors"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// =============================================================================
// Usbfs Argument Structures
// =============================================================================

// bulkTransfer represents a bulk transfer request.
// This must match the kernel's struct usbdevfs_bulktransfer layout.
type bulkTransfer struct {
	endpoint uint32  // Endpoint address
	length   uint32  // Data length
	timeout  uint32  // Timeout in milliseconds
	data     uintptr // Data buffer pointer
}

// disconnectClaim represents a disconnect-and-claim request.
// This must match the kernel's struct usbdevfs_disconnect_claim layout.
type disconnectClaim struct {
	iface  uint32    // Interface number
	flags  uint32    // DisconnectClaim* flags
	driver [256]byte // NUL-terminated driver name
}

// =============================================================================
// Raw Syscall Wrappers
// =============================================================================

// openDevice opens a USB device file for read/write access.
func openDevice(path string) (int, error) {
	return unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
}

// closeDevice closes a device file descriptor.
func closeDevice(fd int) error {
	return unix.Close(fd)
}

// ioctlRaw performs a raw ioctl syscall.
func ioctlRaw(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// ioctlRetval performs an ioctl syscall and returns the result value.
func ioctlRetval(fd int, req uintptr, arg unsafe.Pointer) (int, error) {
	r, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return int(r), errno
	}
	return int(r), nil
}

// =============================================================================
// USBDEVFS Operations
// =============================================================================

// doBulkTransfer performs a synchronous bulk transfer.
func doBulkTransfer(fd int, endpoint uint8, data []byte, timeout uint32) (int, error) {
	bulk := bulkTransfer{
		endpoint: uint32(endpoint),
		length:   uint32(len(data)),
		timeout:  timeout,
	}
	if len(data) > 0 {
		bulk.data = uintptr(unsafe.Pointer(&data[0]))
	}

	n, err := ioctlRetval(fd, ioctlUsbdevfsBulk, unsafe.Pointer(&bulk))
	runtime.KeepAlive(data)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// claimInterface claims exclusive access to an interface.
func claimInterface(fd int, iface uint8) error {
	ifaceNum := uint32(iface)
	return ioctlRaw(fd, ioctlUsbdevfsClaimInterface, unsafe.Pointer(&ifaceNum))
}

// releaseInterface releases a previously claimed interface.
func releaseInterface(fd int, iface uint8) error {
	ifaceNum := uint32(iface)
	return ioctlRaw(fd, ioctlUsbdevfsReleaseInterface, unsafe.Pointer(&ifaceNum))
}

// disconnectAndClaim detaches any kernel driver other than usbfs from the
// interface and claims it in one step.
func disconnectAndClaim(fd int, iface uint8) error {
	dc := disconnectClaim{
		iface: uint32(iface),
		flags: DisconnectClaimExceptDriver,
	}
	copy(dc.driver[:], usbfsDriverName)
	return ioctlRaw(fd, ioctlUsbdevfsDisconnectClaim, unsafe.Pointer(&dc))
}

// =============================================================================
// Error Helpers
// =============================================================================

// isErrno reports whether err is the given errno value.
func isErrno(err error, errno unix.Errno) bool {
	var e unix.Errno
	return errors.As(err, &e) && e == errno
}

// isNoDevice returns true if the error indicates the device was disconnected.
func isNoDevice(err error) bool {
	return isErrno(err, unix.ENODEV)
}

// isPipe returns true if the error indicates a stall (EPIPE).
func isPipe(err error) bool {
	return isErrno(err, unix.EPIPE)
}

// isTimeout returns true if the usbfs transfer timed out.
func isTimeout(err error) bool {
	return isErrno(err, unix.ETIMEDOUT)
}

// isNotSupported returns true if the kernel does not know the ioctl.
func isNotSupported(err error) bool {
	return isErrno(err, unix.ENOTTY) || isErrno(err, unix.EINVAL)
}
