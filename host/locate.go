package host

import (
	"context"
	"fmt"
	"time"

	"github.com/ardnew/usbboot/host/hal"
	"github.com/ardnew/usbboot/pkg"
)

// Filter selects a candidate device.
type Filter struct {
	vendorID uint16
	serial   string
	bySerial bool
}

// ByVendor matches the first accepted stub with the given vendor id.
func ByVendor(vendorID uint16) Filter {
	return Filter{vendorID: vendorID}
}

// BySerial matches the accepted stub whose serial number is exactly
// serial. The vendor id must be BroadcomVendorID.
func BySerial(serial string) Filter {
	return Filter{vendorID: BroadcomVendorID, serial: serial, bySerial: true}
}

// String describes the filter for logs.
func (f Filter) String() string {
	if f.bySerial {
		return fmt.Sprintf("serial %q", f.serial)
	}
	return fmt.Sprintf("vendor %04x", f.vendorID)
}

// match reports whether info passes the filter and its generation.
func (f Filter) match(info hal.DeviceInfo) (Generation, bool) {
	if info.VendorID != f.vendorID {
		return GenerationUnknown, false
	}
	if f.bySerial && info.Serial != f.serial {
		return GenerationUnknown, false
	}
	return Classify(info.ProductID)
}

// Candidates lists attached devices that pass the filter, in bus
// enumeration order.
func Candidates(ctx context.Context, bus hal.Bus, filter Filter) ([]hal.DeviceInfo, error) {
	devices, err := bus.Devices(ctx)
	if err != nil {
		return nil, pkg.NewError(pkg.KindTransfer, "locate", "enumerate bus", err)
	}

	var out []hal.DeviceInfo
	for _, info := range devices {
		if _, ok := filter.match(info); ok {
			out = append(out, info)
		}
	}
	return out, nil
}

// Locate opens the first attached device passing filter, claims the
// interface of its generation, and returns the session. It fails with
// pkg.KindNotFound when no device matches and pkg.KindTransfer when
// the match cannot be opened or claimed.
func Locate(ctx context.Context, bus hal.Bus, filter Filter) (*Session, error) {
	devices, err := bus.Devices(ctx)
	if err != nil {
		return nil, pkg.NewError(pkg.KindTransfer, "locate", "enumerate bus", err)
	}

	for _, info := range devices {
		gen, ok := filter.match(info)
		if !ok {
			continue
		}

		pkg.LogDebug(pkg.ComponentLocator, "candidate found",
			"device", info.String(),
			"generation", gen.String(),
			"serial", info.Serial,
		)
		return open(ctx, bus, info, gen)
	}

	return nil, pkg.NewError(pkg.KindNotFound, "locate", filter.String(), nil)
}

// Wait calls Locate every interval until a device is found, an error other
// than pkg.KindNotFound occurs, or ctx is done.
func Wait(ctx context.Context, bus hal.Bus, filter Filter, interval time.Duration) (*Session, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logged := false
	for {
		s, err := Locate(ctx, bus, filter)
		if pkg.KindOf(err) != pkg.KindNotFound {
			return s, err
		}
		if !logged {
			pkg.LogInfo(pkg.ComponentLocator, "waiting for device", "filter", filter.String())
			logged = true
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// open opens info and claims the generation's interface.
func open(ctx context.Context, bus hal.Bus, info hal.DeviceInfo, gen Generation) (*Session, error) {
	h, err := bus.Open(ctx, info)
	if err != nil {
		return nil, pkg.NewError(pkg.KindTransfer, "locate", "open "+info.String(), err)
	}

	iface := gen.Interface()
	if err := h.ClaimInterface(iface); err != nil {
		h.Close()
		return nil, pkg.NewError(pkg.KindTransfer, "locate",
			fmt.Sprintf("claim interface %d of %s", iface, info), err)
	}

	s := newSession(h, info, gen)
	pkg.LogInfo(pkg.ComponentLocator, "device opened",
		"session", s.ID,
		"device", info.String(),
		"generation", gen.String(),
		"out", s.OutEndpoint,
		"in", s.InEndpoint,
	)
	return s, nil
}
