package main

import (
	"fmt"

	"github.com/ardnew/usbboot/host/hal"
	"github.com/ardnew/usbboot/internal/config"
)

// openBus returns the configured transport and its release function.
func openBus(cfg *config.Config) (hal.Bus, func(), error) {
	switch cfg.Backend {
	case config.BackendLibUSB:
		return openLibUSB(cfg)
	case config.BackendUSBFS:
		return openUSBFS(cfg)
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
	}
}
