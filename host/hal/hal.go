package hal

import (
	"context"
	"fmt"
)

// Speed represents the USB connection speed.
type Speed uint8

// USB speed constants.
const (
	SpeedUnknown Speed = iota // Not connected or unknown
	SpeedLow                  // Low Speed (1.5 Mbit/s)
	SpeedFull                 // Full Speed (12 Mbit/s)
	SpeedHigh                 // High Speed (480 Mbit/s)
	SpeedSuper                // SuperSpeed (5 Gbit/s) or faster
)

// String returns a human-readable speed name.
func (s Speed) String() string {
	switch s {
	case SpeedLow:
		return "Low Speed"
	case SpeedFull:
		return "Full Speed"
	case SpeedHigh:
		return "High Speed"
	case SpeedSuper:
		return "SuperSpeed"
	default:
		return "Unknown"
	}
}

// EndpointIn is the direction bit of an IN (device to host) endpoint
// address.
const EndpointIn = 0x80

// DeviceInfo describes an attached USB device as reported by the bus,
// before it is opened.
type DeviceInfo struct {
	BusNumber    uint8  // Bus the device is attached to
	DeviceNumber uint8  // Address on that bus
	VendorID     uint16 // idVendor
	ProductID    uint16 // idProduct
	Serial       string // iSerialNumber string, empty if unknown
	Speed        Speed  // Connection speed
	Path         string // Backend-specific node, e.g. /dev/bus/usb/001/004
}

// String returns a short identification of the device.
func (d DeviceInfo) String() string {
	return fmt.Sprintf("%03d/%03d %04x:%04x", d.BusNumber, d.DeviceNumber, d.VendorID, d.ProductID)
}

// Bus enumerates and opens USB devices.
type Bus interface {
	// Devices lists the devices currently attached.
	Devices(ctx context.Context) ([]DeviceInfo, error)

	// Open opens a device for exclusive access.
	Open(ctx context.Context, info DeviceInfo) (Handle, error)
}

// Handle is an open USB device.
//
// A Handle is used by one session at a time and need not be safe for
// concurrent use.
type Handle interface {
	// ClaimInterface claims an interface, detaching any kernel driver
	// bound to it.
	ClaimInterface(iface uint8) error

	// ReleaseInterface releases a previously claimed interface.
	ReleaseInterface(iface uint8) error

	// BulkTransfer performs one blocking bulk transaction on endpoint.
	// The direction comes from the endpoint address: IN endpoints fill
	// data, OUT endpoints send it. Returns the number of bytes moved.
	BulkTransfer(ctx context.Context, endpoint uint8, data []byte) (int, error)

	// Close releases all resources held by the handle.
	Close() error
}
