// Package linux provides a USB transport for Linux using usbfs.
//
// This transport uses sysfs (/sys/bus/usb/devices/) for device discovery
// and the usbfs interface (/dev/bus/usb/) for device access. It is pure
// Go with no cgo dependencies; system calls go through
// [golang.org/x/sys/unix].
//
// # Requirements
//
// The user running the boot host must have read/write access to the USB
// device nodes in /dev/bus/usb/. This typically requires either:
//   - Running as root
//   - A udev rule granting access to the Broadcom boot ROM devices (vendor
//     0a5c) to the user or group
//
// # Transfers
//
// Bulk transfers are synchronous USBDEVFS_BULK ioctls, one per call. The
// transfer timeout is applied by the kernel; zero waits indefinitely.
// Interfaces are claimed with USBDEVFS_DISCONNECT_CLAIM, which detaches a
// bound kernel driver in the same step, falling back to a plain claim on
// kernels that lack it.
package linux
