package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ardnew/usbboot/host/hal"
	"github.com/ardnew/usbboot/pkg"
)

// Session is an open, claimed boot stub. It is the bulk channel the file
// server talks through. A Session is not safe for concurrent use.
type Session struct {
	VendorID    uint16
	ProductID   uint16
	Generation  Generation
	Serial      string
	OutEndpoint uint8 // Bulk OUT endpoint number
	InEndpoint  uint8 // Bulk IN endpoint address, direction bit set
	Interface   uint8 // Claimed interface

	// ID is a random identifier used to correlate log records.
	ID string

	info   hal.DeviceInfo
	handle hal.Handle
}

// newSession wraps a claimed handle.
func newSession(h hal.Handle, info hal.DeviceInfo, gen Generation) *Session {
	out, in := gen.Endpoints()
	return &Session{
		VendorID:    info.VendorID,
		ProductID:   info.ProductID,
		Generation:  gen,
		Serial:      info.Serial,
		OutEndpoint: out,
		InEndpoint:  in,
		Interface:   gen.Interface(),
		ID:          uuid.NewString(),
		info:        info,
		handle:      h,
	}
}

// Device returns the bus description of the device.
func (s *Session) Device() hal.DeviceInfo {
	return s.info
}

// Write sends p to the device in one bulk OUT transaction. An empty p is
// sent as a zero-length packet.
func (s *Session) Write(ctx context.Context, p []byte) (int, error) {
	n, err := s.handle.BulkTransfer(ctx, s.OutEndpoint, p)
	if err != nil {
		return n, pkg.NewError(pkg.KindTransfer, "bulk write",
			fmt.Sprintf("endpoint 0x%02x, %d bytes", s.OutEndpoint, len(p)), err)
	}
	return n, nil
}

// Read receives at most len(p) bytes in one bulk IN transaction.
func (s *Session) Read(ctx context.Context, p []byte) (int, error) {
	n, err := s.handle.BulkTransfer(ctx, s.InEndpoint, p)
	if err != nil {
		return n, pkg.NewError(pkg.KindTransfer, "bulk read",
			fmt.Sprintf("endpoint 0x%02x", s.InEndpoint), err)
	}
	return n, nil
}

// Close releases the interface and closes the device.
func (s *Session) Close() error {
	rerr := s.handle.ReleaseInterface(s.Interface)
	cerr := s.handle.Close()
	pkg.LogDebug(pkg.ComponentLocator, "session closed", "session", s.ID)
	return errors.Join(rerr, cerr)
}

// String returns the session id.
func (s *Session) String() string {
	return s.ID
}
