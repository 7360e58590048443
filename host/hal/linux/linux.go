//go:build linux

package linux

import (
	"context"
	"fmt"

	"github.com/ardnew/usbboot/host/hal"
	"github.com/ardnew/usbboot/pkg"
)

// Bus implements the hal.Bus interface for Linux using sysfs and usbfs.
type Bus struct {
	sysfsRoot string // Normally SysfsUSBPath
	devfsRoot string // Normally DevfsUSBPath

	// Transfer timeout in milliseconds
	transferTimeout uint32
}

// Option configures a Bus.
type Option func(*Bus)

// WithTransferTimeout sets the usbfs transfer timeout in milliseconds.
// Zero waits indefinitely.
func WithTransferTimeout(ms uint32) Option {
	return func(b *Bus) { b.transferTimeout = ms }
}

// WithRoots overrides the sysfs and devfs base paths.
func WithRoots(sysfsRoot, devfsRoot string) Option {
	return func(b *Bus) {
		b.sysfsRoot = sysfsRoot
		b.devfsRoot = devfsRoot
	}
}

// NewBus creates a new Linux USB bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		sysfsRoot:       SysfsUSBPath,
		devfsRoot:       DevfsUSBPath,
		transferTimeout: DefaultTransferTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Devices lists the USB devices currently known to sysfs.
func (b *Bus) Devices(ctx context.Context) ([]hal.DeviceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	devices, err := scanUSBDevices(b.sysfsRoot, b.devfsRoot)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", b.sysfsRoot, err)
	}

	infos := make([]hal.DeviceInfo, 0, len(devices))
	for i := range devices {
		infos = append(infos, devices[i].halInfo())
	}

	pkg.LogDebug(pkg.ComponentHAL, "sysfs scan complete", "devices", len(infos))
	return infos, nil
}

// Open opens the device node for exclusive access.
func (b *Bus) Open(ctx context.Context, info hal.DeviceInfo) (hal.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := newDeviceConn(info, b.transferTimeout)
	if err != nil {
		return nil, err
	}

	pkg.LogDebug(pkg.ComponentHAL, "device opened",
		"device", info.String(),
		"path", info.Path,
		"speed", info.Speed.String(),
	)
	return conn, nil
}

// =============================================================================
// Interface Compliance
// =============================================================================

// Ensure Bus implements hal.Bus.
var _ hal.Bus = (*Bus)(nil)
