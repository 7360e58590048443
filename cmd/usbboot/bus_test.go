package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/usbboot/internal/config"
)

func TestOpenBus_UnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "winusb"

	bus, closeBus, err := openBus(&cfg)
	require.ErrorIs(t, err, config.ErrUnknownBackend)
	assert.Nil(t, bus)
	assert.Nil(t, closeBus)
}
