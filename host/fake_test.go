package host

import (
	"context"
	"errors"
	"sync"

	"github.com/ardnew/usbboot/host/hal"
	"github.com/ardnew/usbboot/pkg"
)

// =============================================================================
// In-Memory Bus for Testing
// =============================================================================

// fakeBus implements hal.Bus over a fixed device list.
type fakeBus struct {
	devices    []hal.DeviceInfo
	devicesErr error
	openErr    error
	claimErr   error

	mu     sync.Mutex
	scans  int
	opened []*fakeHandle
	onScan func(n int) // Called with the scan count before returning
}

func (b *fakeBus) Devices(ctx context.Context) ([]hal.DeviceInfo, error) {
	b.mu.Lock()
	b.scans++
	n := b.scans
	b.mu.Unlock()

	if b.onScan != nil {
		b.onScan(n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.devicesErr != nil {
		return nil, b.devicesErr
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]hal.DeviceInfo(nil), b.devices...), nil
}

func (b *fakeBus) Open(ctx context.Context, info hal.DeviceInfo) (hal.Handle, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	h := &fakeHandle{info: info, claimErr: b.claimErr, claimed: map[uint8]bool{}}
	b.mu.Lock()
	b.opened = append(b.opened, h)
	b.mu.Unlock()
	return h, nil
}

func (b *fakeBus) add(info hal.DeviceInfo) {
	b.mu.Lock()
	b.devices = append(b.devices, info)
	b.mu.Unlock()
}

// transfer records one bulk transaction.
type transfer struct {
	endpoint uint8
	data     []byte
}

// fakeHandle implements hal.Handle. IN transfers are served from reads;
// OUT transfers are recorded.
type fakeHandle struct {
	info     hal.DeviceInfo
	claimErr error
	claimed  map[uint8]bool
	closed   bool

	reads     [][]byte
	transfers []transfer
	bulkErr   error
	shortBy   int // OUT transfers report this many bytes fewer than sent
}

func (h *fakeHandle) ClaimInterface(iface uint8) error {
	if h.claimErr != nil {
		return h.claimErr
	}
	h.claimed[iface] = true
	return nil
}

func (h *fakeHandle) ReleaseInterface(iface uint8) error {
	delete(h.claimed, iface)
	return nil
}

func (h *fakeHandle) BulkTransfer(ctx context.Context, endpoint uint8, data []byte) (int, error) {
	if h.closed {
		return 0, pkg.ErrNoDevice
	}
	if h.bulkErr != nil {
		return 0, h.bulkErr
	}
	if endpoint&hal.EndpointIn != 0 {
		if len(h.reads) == 0 {
			return 0, pkg.ErrTimeout
		}
		n := copy(data, h.reads[0])
		h.reads = h.reads[1:]
		h.transfers = append(h.transfers, transfer{endpoint: endpoint})
		return n, nil
	}
	h.transfers = append(h.transfers, transfer{endpoint: endpoint, data: append([]byte(nil), data...)})
	n := len(data) - h.shortBy
	if n < 0 {
		n = 0
	}
	return n, nil
}

func (h *fakeHandle) Close() error {
	if h.closed {
		return errors.New("already closed")
	}
	h.closed = true
	return nil
}

var (
	_ hal.Bus    = (*fakeBus)(nil)
	_ hal.Handle = (*fakeHandle)(nil)
)
