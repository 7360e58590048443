//go:build !linux

package main

import (
	"fmt"
	"runtime"

	"github.com/ardnew/usbboot/host/hal"
	"github.com/ardnew/usbboot/internal/config"
	"github.com/ardnew/usbboot/pkg"
)

// openUSBFS reports that usbfs exists only on Linux.
func openUSBFS(cfg *config.Config) (hal.Bus, func(), error) {
	return nil, nil, fmt.Errorf("usbfs backend on %s: %w (use -backend libusb)", runtime.GOOS, pkg.ErrNotSupported)
}
