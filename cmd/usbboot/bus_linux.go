//go:build linux

package main

import (
	"github.com/ardnew/usbboot/host/hal"
	"github.com/ardnew/usbboot/host/hal/linux"
	"github.com/ardnew/usbboot/internal/config"
)

// openUSBFS returns the usbfs transport.
func openUSBFS(cfg *config.Config) (hal.Bus, func(), error) {
	ms := uint32(cfg.TransferTimeout.Milliseconds())
	return linux.NewBus(linux.WithTransferTimeout(ms)), func() {}, nil
}
