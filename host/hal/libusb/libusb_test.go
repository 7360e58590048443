//go:build cgo

package libusb

import (
	"context"
	"errors"
	"testing"

	"github.com/google/gousb"

	"github.com/ardnew/usbboot/host/hal"
	"github.com/ardnew/usbboot/pkg"
)

func TestSpeed(t *testing.T) {
	tests := []struct {
		in   gousb.Speed
		want hal.Speed
	}{
		{gousb.SpeedLow, hal.SpeedLow},
		{gousb.SpeedFull, hal.SpeedFull},
		{gousb.SpeedHigh, hal.SpeedHigh},
		{gousb.SpeedSuper, hal.SpeedSuper},
		{gousb.SpeedUnknown, hal.SpeedUnknown},
	}

	for _, tt := range tests {
		if got := speed(tt.in); got != tt.want {
			t.Errorf("speed(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDescInfo(t *testing.T) {
	desc := &gousb.DeviceDesc{
		Bus:     3,
		Address: 17,
		Speed:   gousb.SpeedHigh,
		Vendor:  0x0a5c,
		Product: 0x2711,
	}

	info := descInfo(desc)
	want := hal.DeviceInfo{
		BusNumber:    3,
		DeviceNumber: 17,
		VendorID:     0x0a5c,
		ProductID:    0x2711,
		Speed:        hal.SpeedHigh,
		Path:         "libusb:3:17",
	}
	if info != want {
		t.Errorf("descInfo() = %+v, want %+v", info, want)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no device", gousb.ErrorNoDevice, pkg.ErrNoDevice},
		{"transfer no device", gousb.TransferNoDevice, pkg.ErrNoDevice},
		{"pipe", gousb.ErrorPipe, pkg.ErrStall},
		{"stall", gousb.TransferStall, pkg.ErrStall},
		{"timeout", gousb.ErrorTimeout, pkg.ErrTimeout},
		{"timed out", gousb.TransferTimedOut, pkg.ErrTimeout},
		{"deadline", context.DeadlineExceeded, pkg.ErrTimeout},
		{"busy", gousb.ErrorBusy, pkg.ErrBusy},
		{"not supported", gousb.ErrorNotSupported, pkg.ErrNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapError(tt.in); !errors.Is(got, tt.want) {
				t.Errorf("mapError(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	other := errors.New("other")
	if got := mapError(other); got != other {
		t.Errorf("mapError(other) = %v, want passthrough", got)
	}
}
