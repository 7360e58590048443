//go:build linux

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/usbboot/host/hal/linux"
	"github.com/ardnew/usbboot/internal/config"
)

func TestOpenBus_USBFS(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = config.BackendUSBFS

	bus, closeBus, err := openBus(&cfg)
	require.NoError(t, err)
	defer closeBus()
	assert.IsType(t, &linux.Bus{}, bus)
}
