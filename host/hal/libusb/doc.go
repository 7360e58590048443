// Package libusb implements the hal.Bus and hal.Handle interfaces over
// libusb-1.0 using github.com/google/gousb.
//
// It is the portable alternative to the Linux usbfs backend and requires
// cgo and the libusb development headers at build time. Builds without
// cgo leave the package empty.
package libusb
