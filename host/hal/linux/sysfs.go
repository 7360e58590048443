//go:build linux

package linux

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ardnew/usbboot/host/hal"
)

// =============================================================================
// USB Device Information
// =============================================================================

// usbDeviceInfo holds information about a USB device discovered via sysfs.
type usbDeviceInfo struct {
	devfsPath string    // Path in /dev/bus/usb
	busNum    uint8     // Bus number
	devNum    uint8     // Device number
	vendorID  uint16    // USB Vendor ID
	productID uint16    // USB Product ID
	serial    string    // iSerialNumber string, empty if absent
	speed     hal.Speed // Device speed
}

// halInfo converts the sysfs record to the transport-neutral form.
func (d *usbDeviceInfo) halInfo() hal.DeviceInfo {
	return hal.DeviceInfo{
		BusNumber:    d.busNum,
		DeviceNumber: d.devNum,
		VendorID:     d.vendorID,
		ProductID:    d.productID,
		Serial:       d.serial,
		Speed:        d.speed,
		Path:         d.devfsPath,
	}
}

// =============================================================================
// Sysfs Parsing
// =============================================================================

// scanUSBDevices scans sysfs for USB devices. sysfsRoot is normally
// SysfsUSBPath and devfsRoot DevfsUSBPath.
func scanUSBDevices(sysfsRoot, devfsRoot string) ([]usbDeviceInfo, error) {
	entries, err := os.ReadDir(sysfsRoot)
	if err != nil {
		return nil, err
	}

	var devices []usbDeviceInfo

	for _, entry := range entries {
		name := entry.Name()

		// USB devices have names like "1-1", "1-1.2", etc.
		// Skip entries that are:
		// - Hub port entries (usb1, usb2, etc.)
		// - Interface entries (1-1:1.0)
		if strings.HasPrefix(name, "usb") {
			continue
		}
		if strings.Contains(name, ":") {
			continue
		}

		// Parse device information
		devPath := filepath.Join(sysfsRoot, name)
		info, err := parseUSBDevice(devPath, devfsRoot)
		if err != nil {
			continue // Skip devices we can't parse
		}

		devices = append(devices, info)
	}

	return devices, nil
}

// parseUSBDevice parses USB device information from sysfs.
func parseUSBDevice(sysfsPath, devfsRoot string) (usbDeviceInfo, error) {
	var info usbDeviceInfo

	// Read bus number
	busNum, err := readSysfsUint8(filepath.Join(sysfsPath, "busnum"))
	if err != nil {
		return info, err
	}
	info.busNum = busNum

	// Read device number
	devNum, err := readSysfsUint8(filepath.Join(sysfsPath, "devnum"))
	if err != nil {
		return info, err
	}
	info.devNum = devNum

	// Construct devfs path
	info.devfsPath = formatDevfsPath(devfsRoot, info.busNum, info.devNum)

	// Read vendor ID
	vendorID, err := readSysfsHexUint16(filepath.Join(sysfsPath, "idVendor"))
	if err == nil {
		info.vendorID = vendorID
	}

	// Read product ID
	productID, err := readSysfsHexUint16(filepath.Join(sysfsPath, "idProduct"))
	if err == nil {
		info.productID = productID
	}

	// Read serial number; devices without iSerialNumber have no file
	serial, err := readSysfsString(filepath.Join(sysfsPath, "serial"))
	if err == nil {
		info.serial = serial
	}

	// Read speed
	speedStr, err := readSysfsString(filepath.Join(sysfsPath, "speed"))
	if err == nil {
		info.speed = parseSpeed(speedStr)
	}

	return info, nil
}

// =============================================================================
// Sysfs Read Helpers
// =============================================================================

// readSysfsString reads a string from a sysfs attribute file.
func readSysfsString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// readSysfsUint reads an unsigned decimal integer from a sysfs attribute file.
func readSysfsUint(path string, bitSize int) (uint64, error) {
	s, err := readSysfsString(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(s, 10, bitSize)
}

// readSysfsUint8 reads an unsigned decimal uint8 from a sysfs attribute file.
func readSysfsUint8(path string) (uint8, error) {
	v, err := readSysfsUint(path, 8)
	if err != nil {
		return 0, err
	}
	if v > 0xFF {
		return 0, os.ErrInvalid
	}
	return uint8(v), nil
}

// readSysfsHex reads a hexadecimal value from a sysfs attribute file.
func readSysfsHex(path string, bitSize int) (uint64, error) {
	s, err := readSysfsString(path)
	if err != nil {
		return 0, err
	}
	// Remove any "0x" prefix
	s = strings.TrimPrefix(s, "0x")
	return strconv.ParseUint(s, 16, bitSize)
}

// readSysfsHexUint16 reads a hexadecimal uint16 from a sysfs attribute file.
func readSysfsHexUint16(path string) (uint16, error) {
	v, err := readSysfsHex(path, 16)
	if err != nil {
		return 0, err
	}
	if v > 0xFFFF {
		return 0, os.ErrInvalid
	}
	return uint16(v), nil
}

// =============================================================================
// Path Helpers
// =============================================================================

// formatDevfsPath constructs a /dev/bus/usb path from bus and device numbers.
func formatDevfsPath(devfsRoot string, busNum, devNum uint8) string {
	// Path format: <root>/BBB/DDD where BBB and DDD are zero-padded
	buf := make([]byte, len(devfsRoot)+8)
	n := copy(buf, devfsRoot)
	buf[n] = '/'
	n++
	n += formatPadded(buf[n:], busNum, 3)
	buf[n] = '/'
	n++
	n += formatPadded(buf[n:], devNum, 3)
	return string(buf[:n])
}

// formatPadded formats a number with zero-padding to a fixed width.
func formatPadded(buf []byte, val uint8, width int) int {
	// Convert to string
	s := strconv.FormatUint(uint64(val), 10)

	// Pad with zeros
	padding := width - len(s)
	for i := 0; i < padding && i < len(buf); i++ {
		buf[i] = '0'
	}

	// Copy digits
	copy(buf[padding:], s)
	return width
}

// =============================================================================
// Speed Parsing
// =============================================================================

// parseSpeed converts a sysfs speed string to a hal.Speed value.
func parseSpeed(s string) hal.Speed {
	switch s {
	case "1.5":
		return hal.SpeedLow
	case "12":
		return hal.SpeedFull
	case "480":
		return hal.SpeedHigh
	case "5000", "10000", "20000":
		return hal.SpeedSuper
	default:
		return hal.SpeedUnknown
	}
}
