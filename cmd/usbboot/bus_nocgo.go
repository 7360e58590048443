//go:build !cgo

package main

import (
	"fmt"

	"github.com/ardnew/usbboot/host/hal"
	"github.com/ardnew/usbboot/internal/config"
	"github.com/ardnew/usbboot/pkg"
)

// openLibUSB reports that the libusb backend needs a cgo build.
func openLibUSB(cfg *config.Config) (hal.Bus, func(), error) {
	return nil, nil, fmt.Errorf("libusb backend: %w (built without cgo)", pkg.ErrNotSupported)
}
