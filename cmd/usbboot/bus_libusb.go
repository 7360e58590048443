//go:build cgo

package main

import (
	"github.com/ardnew/usbboot/host/hal"
	"github.com/ardnew/usbboot/host/hal/libusb"
	"github.com/ardnew/usbboot/internal/config"
)

// openLibUSB returns the libusb transport.
func openLibUSB(cfg *config.Config) (hal.Bus, func(), error) {
	bus := libusb.NewBus(cfg.TransferTimeout)
	return bus, func() { bus.Close() }, nil
}
