//go:build linux

package linux

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/ardnew/usbboot/host/hal"
	"github.com/ardnew/usbboot/pkg"
)

// bulkFunc submits one USBDEVFS_BULK request.
type bulkFunc func(fd int, endpoint uint8, data []byte, timeout uint32) (int, error)

// =============================================================================
// Device Connection
// =============================================================================

// deviceConn is an open usbfs device node. It implements hal.Handle.
type deviceConn struct {
	fd      int            // File descriptor for /dev/bus/usb/BBB/DDD
	info    hal.DeviceInfo // Device information
	timeout uint32         // Transfer timeout in milliseconds
	bulk    bulkFunc       // Normally doBulkTransfer
	chunk   int            // Largest OUT request, normally MaxBulkChunk

	// Interface claiming
	claimedMask uint16     // Bitmask of claimed interfaces
	claimMu     sync.Mutex // Protects claimedMask

	// State
	closed bool       // Set once Close has run
	mu     sync.Mutex // Protects closed
}

// newDeviceConn opens the device node named by info.Path.
func newDeviceConn(info hal.DeviceInfo, timeout uint32) (*deviceConn, error) {
	fd, err := openDevice(info.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", info.Path, err)
	}

	return &deviceConn{
		fd:      fd,
		info:    info,
		timeout: timeout,
		bulk:    doBulkTransfer,
		chunk:   MaxBulkChunk,
	}, nil
}

// Close releases claimed interfaces and closes the device node.
func (d *deviceConn) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	// Release all claimed interfaces
	d.claimMu.Lock()
	for i := 0; i < MaxInterfacesPerDevice; i++ {
		if d.claimedMask&(1<<i) != 0 {
			releaseInterface(d.fd, uint8(i))
		}
	}
	d.claimedMask = 0
	d.claimMu.Unlock()

	pkg.LogDebug(pkg.ComponentHAL, "device closed", "device", d.info.String())
	return closeDevice(d.fd)
}

// isClosed returns true if Close has been called.
func (d *deviceConn) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// =============================================================================
// Interface Claiming
// =============================================================================

// ClaimInterface claims an interface, detaching any kernel driver first.
func (d *deviceConn) ClaimInterface(iface uint8) error {
	if iface >= MaxInterfacesPerDevice {
		return pkg.ErrInvalidEndpoint
	}
	if d.isClosed() {
		return pkg.ErrNoDevice
	}

	d.claimMu.Lock()
	defer d.claimMu.Unlock()

	mask := uint16(1) << iface
	if d.claimedMask&mask != 0 {
		// Already claimed
		return nil
	}

	err := disconnectAndClaim(d.fd, iface)
	if err != nil && isNotSupported(err) {
		// Kernels before 3.10 lack DISCONNECT_CLAIM
		err = claimInterface(d.fd, iface)
	}
	if err != nil {
		return d.mapError(err)
	}

	d.claimedMask |= mask
	pkg.LogDebug(pkg.ComponentHAL, "interface claimed", "device", d.info.String(), "interface", iface)
	return nil
}

// ReleaseInterface releases a previously claimed interface.
func (d *deviceConn) ReleaseInterface(iface uint8) error {
	if iface >= MaxInterfacesPerDevice {
		return pkg.ErrInvalidEndpoint
	}

	d.claimMu.Lock()
	defer d.claimMu.Unlock()

	mask := uint16(1) << iface
	if d.claimedMask&mask == 0 {
		// Not claimed
		return nil
	}

	if err := releaseInterface(d.fd, iface); err != nil {
		return d.mapError(err)
	}

	d.claimedMask &= ^mask
	return nil
}

// =============================================================================
// Transfers
// =============================================================================

// BulkTransfer performs one synchronous bulk transfer. The kernel applies
// the connection timeout; ctx is only checked before submission.
//
// OUT data larger than the chunk size is submitted as consecutive
// requests in order. The count returned is the total accepted, and the
// first short request ends the transfer.
func (d *deviceConn) BulkTransfer(ctx context.Context, endpoint uint8, data []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if d.isClosed() {
		return 0, pkg.ErrNoDevice
	}
	if endpoint&0x0F == 0 {
		return 0, pkg.ErrInvalidEndpoint
	}

	if endpoint&hal.EndpointIn != 0 || len(data) <= d.chunk {
		n, err := d.bulk(d.fd, endpoint, data, d.timeout)
		if err != nil {
			return 0, d.mapError(err)
		}
		return n, nil
	}

	total := 0
	for total < len(data) {
		piece := data[total:min(total+d.chunk, len(data))]
		n, err := d.bulk(d.fd, endpoint, piece, d.timeout)
		total += n
		if err != nil {
			return total, d.mapError(err)
		}
		if n < len(piece) {
			break
		}
	}
	return total, nil
}

// mapError converts usbfs errno values to transport errors.
func (d *deviceConn) mapError(err error) error {
	switch {
	case isNoDevice(err):
		return fmt.Errorf("%w: %v", pkg.ErrNoDevice, err)
	case isPipe(err):
		return fmt.Errorf("%w: %v", pkg.ErrStall, err)
	case isTimeout(err):
		return fmt.Errorf("%w: %v", pkg.ErrTimeout, err)
	case isErrno(err, unix.EBUSY):
		return fmt.Errorf("%w: %v", pkg.ErrBusy, err)
	default:
		return err
	}
}

// Ensure deviceConn implements hal.Handle.
var _ hal.Handle = (*deviceConn)(nil)
