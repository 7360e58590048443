//go:build linux

package linux

import (
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"
)

// =============================================================================
// Limit Constant Tests
// =============================================================================

func TestMaxInterfacesPerDevice(t *testing.T) {
	// claimedMask is a uint16
	if MaxInterfacesPerDevice > 16 {
		t.Errorf("MaxInterfacesPerDevice = %d, should not exceed 16", MaxInterfacesPerDevice)
	}
}

// =============================================================================
// Path Constant Tests
// =============================================================================

func TestSysfsUSBPath(t *testing.T) {
	expected := "/sys/bus/usb/devices"
	if SysfsUSBPath != expected {
		t.Errorf("SysfsUSBPath = %q, want %q", SysfsUSBPath, expected)
	}
}

func TestDevfsUSBPath(t *testing.T) {
	expected := "/dev/bus/usb"
	if DevfsUSBPath != expected {
		t.Errorf("DevfsUSBPath = %q, want %q", DevfsUSBPath, expected)
	}
}

// =============================================================================
// Ioctl Number Tests
// =============================================================================

func TestIoctlNumbers(t *testing.T) {
	tests := []struct {
		name     string
		value    uintptr
		expected uintptr
	}{
		{"USBDEVFS_CLAIMINTERFACE", ioctlUsbdevfsClaimInterface, 0x8004550f},
		{"USBDEVFS_RELEASEINTERFACE", ioctlUsbdevfsReleaseInterface, 0x80045510},
		{"USBDEVFS_DISCONNECT_CLAIM", ioctlUsbdevfsDisconnectClaim, 0x8108551b},
	}

	bulk := uintptr(0xc0105502) // 32-bit pointers
	if unsafe.Sizeof(uintptr(0)) == 8 {
		bulk = 0xc0185502
	}
	tests = append(tests, struct {
		name     string
		value    uintptr
		expected uintptr
	}{"USBDEVFS_BULK", ioctlUsbdevfsBulk, bulk})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != tt.expected {
				t.Errorf("%s = 0x%08x, want 0x%08x", tt.name, tt.value, tt.expected)
			}
		})
	}
}

func TestDisconnectClaimLayout(t *testing.T) {
	if got := unsafe.Sizeof(disconnectClaim{}); got != 264 {
		t.Errorf("sizeof(disconnectClaim) = %d, want 264", got)
	}
}

// =============================================================================
// Error Helper Tests
// =============================================================================

func TestErrnoHelpers(t *testing.T) {
	if !isNoDevice(unix.ENODEV) {
		t.Error("isNoDevice(ENODEV) = false")
	}
	if !isPipe(unix.EPIPE) {
		t.Error("isPipe(EPIPE) = false")
	}
	if !isTimeout(unix.ETIMEDOUT) {
		t.Error("isTimeout(ETIMEDOUT) = false")
	}
	if !isNotSupported(unix.ENOTTY) {
		t.Error("isNotSupported(ENOTTY) = false")
	}
	if isNoDevice(unix.EPIPE) || isPipe(nil) || isTimeout(unix.EIO) {
		t.Error("errno helpers matched the wrong errno")
	}
}
