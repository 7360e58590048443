//go:build cgo

package libusb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/gousb"

	"github.com/ardnew/usbboot/host/hal"
	"github.com/ardnew/usbboot/pkg"
)

// Bus implements hal.Bus over a libusb context.
type Bus struct {
	ctx     *gousb.Context
	timeout time.Duration // Per-transfer timeout, zero waits indefinitely
}

// NewBus creates a libusb context. The caller must Close the bus when done.
func NewBus(timeout time.Duration) *Bus {
	return &Bus{
		ctx:     gousb.NewContext(),
		timeout: timeout,
	}
}

// Close releases the libusb context.
func (b *Bus) Close() error {
	return b.ctx.Close()
}

// Devices lists attached devices. Serial numbers are read from devices
// the process is allowed to open and left empty otherwise.
func (b *Bus) Devices(ctx context.Context) ([]hal.DeviceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var infos []hal.DeviceInfo
	devs, err := b.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		infos = append(infos, descInfo(desc))
		return true
	})
	for _, dev := range devs {
		for i := range infos {
			if infos[i].BusNumber == uint8(dev.Desc.Bus) && infos[i].DeviceNumber == uint8(dev.Desc.Address) {
				if s, serr := dev.SerialNumber(); serr == nil {
					infos[i].Serial = s
				}
			}
		}
		dev.Close()
	}
	if err != nil {
		// Open failures on unrelated devices are expected without privileges.
		pkg.LogDebug(pkg.ComponentHAL, "libusb open failures during scan", "error", err)
	}

	pkg.LogDebug(pkg.ComponentHAL, "libusb scan complete", "devices", len(infos))
	return infos, nil
}

// Open opens the device at info's bus and address.
func (b *Bus) Open(ctx context.Context, info hal.DeviceInfo) (hal.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	devs, err := b.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Bus == int(info.BusNumber) && desc.Address == int(info.DeviceNumber)
	})
	if len(devs) == 0 {
		if err == nil {
			err = pkg.ErrNoDevice
		}
		return nil, fmt.Errorf("open %s: %w", info, mapError(err))
	}
	for _, extra := range devs[1:] {
		extra.Close()
	}

	dev := devs[0]
	if err := dev.SetAutoDetach(true); err != nil {
		pkg.LogDebug(pkg.ComponentHAL, "auto-detach unavailable", "device", info.String(), "error", err)
	}

	pkg.LogDebug(pkg.ComponentHAL, "device opened", "device", info.String())
	return &handle{
		dev:     dev,
		info:    info,
		timeout: b.timeout,
		ifaces:  make(map[uint8]*gousb.Interface),
		in:      make(map[uint8]*gousb.InEndpoint),
		out:     make(map[uint8]*gousb.OutEndpoint),
	}, nil
}

// descInfo converts a gousb device descriptor.
func descInfo(desc *gousb.DeviceDesc) hal.DeviceInfo {
	return hal.DeviceInfo{
		BusNumber:    uint8(desc.Bus),
		DeviceNumber: uint8(desc.Address),
		VendorID:     uint16(desc.Vendor),
		ProductID:    uint16(desc.Product),
		Speed:        speed(desc.Speed),
		Path:         fmt.Sprintf("libusb:%d:%d", desc.Bus, desc.Address),
	}
}

// speed converts a gousb speed.
func speed(s gousb.Speed) hal.Speed {
	switch s {
	case gousb.SpeedLow:
		return hal.SpeedLow
	case gousb.SpeedFull:
		return hal.SpeedFull
	case gousb.SpeedHigh:
		return hal.SpeedHigh
	case gousb.SpeedSuper:
		return hal.SpeedSuper
	default:
		return hal.SpeedUnknown
	}
}

// =============================================================================
// Handle
// =============================================================================

// handle is an open libusb device. It implements hal.Handle.
type handle struct {
	dev     *gousb.Device
	info    hal.DeviceInfo
	timeout time.Duration

	mu     sync.Mutex
	cfg    *gousb.Config
	ifaces map[uint8]*gousb.Interface
	in     map[uint8]*gousb.InEndpoint
	out    map[uint8]*gousb.OutEndpoint
	closed bool
}

// ClaimInterface claims alternate setting 0 of iface in the active
// configuration.
func (h *handle) ClaimInterface(iface uint8) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return pkg.ErrNoDevice
	}
	if _, ok := h.ifaces[iface]; ok {
		return nil
	}

	if h.cfg == nil {
		num, err := h.dev.ActiveConfigNum()
		if err != nil {
			return mapError(err)
		}
		cfg, err := h.dev.Config(num)
		if err != nil {
			return mapError(err)
		}
		h.cfg = cfg
	}

	intf, err := h.cfg.Interface(int(iface), 0)
	if err != nil {
		return mapError(err)
	}
	h.ifaces[iface] = intf

	pkg.LogDebug(pkg.ComponentHAL, "interface claimed", "device", h.info.String(), "interface", iface)
	return nil
}

// ReleaseInterface releases iface and, once no interface remains, the
// configuration.
func (h *handle) ReleaseInterface(iface uint8) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	intf, ok := h.ifaces[iface]
	if !ok {
		return nil
	}
	intf.Close()
	delete(h.ifaces, iface)
	clear(h.in)
	clear(h.out)

	if len(h.ifaces) == 0 && h.cfg != nil {
		err := h.cfg.Close()
		h.cfg = nil
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

// BulkTransfer performs one bulk transaction on endpoint.
func (h *handle) BulkTransfer(ctx context.Context, endpoint uint8, data []byte) (int, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if endpoint&hal.EndpointIn != 0 {
		ep, err := h.inEndpoint(endpoint)
		if err != nil {
			return 0, err
		}
		n, err := ep.ReadContext(ctx, data)
		if err != nil {
			return n, mapError(err)
		}
		return n, nil
	}

	ep, err := h.outEndpoint(endpoint)
	if err != nil {
		return 0, err
	}
	n, err := ep.WriteContext(ctx, data)
	if err != nil {
		return n, mapError(err)
	}
	return n, nil
}

// inEndpoint returns the cached IN endpoint, resolving it from the
// claimed interfaces on first use.
func (h *handle) inEndpoint(addr uint8) (*gousb.InEndpoint, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, pkg.ErrNoDevice
	}
	if ep, ok := h.in[addr]; ok {
		return ep, nil
	}
	for _, intf := range h.ifaces {
		if ep, err := intf.InEndpoint(int(addr & 0x0F)); err == nil {
			h.in[addr] = ep
			return ep, nil
		}
	}
	return nil, fmt.Errorf("%w: 0x%02x", pkg.ErrInvalidEndpoint, addr)
}

// outEndpoint returns the cached OUT endpoint, resolving it from the
// claimed interfaces on first use.
func (h *handle) outEndpoint(addr uint8) (*gousb.OutEndpoint, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, pkg.ErrNoDevice
	}
	if ep, ok := h.out[addr]; ok {
		return ep, nil
	}
	for _, intf := range h.ifaces {
		if ep, err := intf.OutEndpoint(int(addr & 0x0F)); err == nil {
			h.out[addr] = ep
			return ep, nil
		}
	}
	return nil, fmt.Errorf("%w: 0x%02x", pkg.ErrInvalidEndpoint, addr)
}

// Close releases all interfaces and closes the device.
func (h *handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	for iface, intf := range h.ifaces {
		intf.Close()
		delete(h.ifaces, iface)
	}
	var errs []error
	if h.cfg != nil {
		errs = append(errs, h.cfg.Close())
		h.cfg = nil
	}
	h.mu.Unlock()

	errs = append(errs, h.dev.Close())
	pkg.LogDebug(pkg.ComponentHAL, "device closed", "device", h.info.String())
	return errors.Join(errs...)
}

// mapError converts libusb errors and transfer statuses to transport
// errors.
func mapError(err error) error {
	switch {
	case errors.Is(err, gousb.ErrorNoDevice), errors.Is(err, gousb.TransferNoDevice):
		return fmt.Errorf("%w: %v", pkg.ErrNoDevice, err)
	case errors.Is(err, gousb.ErrorPipe), errors.Is(err, gousb.TransferStall):
		return fmt.Errorf("%w: %v", pkg.ErrStall, err)
	case errors.Is(err, gousb.ErrorTimeout), errors.Is(err, gousb.TransferTimedOut),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", pkg.ErrTimeout, err)
	case errors.Is(err, gousb.ErrorBusy):
		return fmt.Errorf("%w: %v", pkg.ErrBusy, err)
	case errors.Is(err, gousb.ErrorNotSupported):
		return fmt.Errorf("%w: %v", pkg.ErrNotSupported, err)
	default:
		return err
	}
}

// Ensure Bus implements hal.Bus.
var _ hal.Bus = (*Bus)(nil)

// Ensure handle implements hal.Handle.
var _ hal.Handle = (*handle)(nil)
