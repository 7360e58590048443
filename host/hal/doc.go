// Package hal defines the USB transport capability consumed by the boot
// host.
//
// The boot host never schedules transfers or enforces timeouts itself.
// It needs exactly three things from a transport: a list of attached
// devices with their identifiers, exclusive access to one of them, and
// blocking bulk transactions on fixed endpoints.
//
// # Interface Overview
//
//   - [Bus] lists attached devices and opens them
//   - [Handle] claims interfaces and performs bulk transfers
//
// Two implementations are provided:
//
//   - [github.com/ardnew/usbboot/host/hal/linux]: pure Go over Linux
//     sysfs and usbfs
//   - [github.com/ardnew/usbboot/host/hal/libusb]: libusb via gousb, for
//     platforms without usbfs
//
// Timeouts and retries, if any, belong to the implementation.
package hal
