package host

import (
	"fmt"

	"github.com/ardnew/usbboot/host/hal"
)

// BroadcomVendorID is the USB vendor id presented by the boot-ROM stub.
const BroadcomVendorID uint16 = 0x0a5c

// Generation identifies the SoC family of an attached stub.
type Generation uint8

// SoC generations.
const (
	GenerationUnknown Generation = iota
	GenerationBCM2835            // Legacy stubs, BCM2835 through BCM2837
	GenerationBCM2711
	GenerationBCM2712
)

// String returns the SoC family name.
func (g Generation) String() string {
	switch g {
	case GenerationBCM2835:
		return "BCM2835"
	case GenerationBCM2711:
		return "BCM2711"
	case GenerationBCM2712:
		return "BCM2712"
	default:
		return fmt.Sprintf("Generation(%d)", uint8(g))
	}
}

// Endpoints returns the bulk OUT endpoint and IN endpoint address used by
// the generation. The IN address has hal.EndpointIn set.
func (g Generation) Endpoints() (out, in uint8) {
	switch g {
	case GenerationBCM2835:
		return 1, 2 | hal.EndpointIn
	case GenerationBCM2711, GenerationBCM2712:
		return 3, 4 | hal.EndpointIn
	default:
		return 0, 0
	}
}

// Interface returns the interface number claimed for the generation.
func (g Generation) Interface() uint8 {
	if g == GenerationBCM2835 {
		return 0
	}
	return 1
}

// products maps accepted product ids to their generation. It is never
// modified after initialization.
var products = map[uint16]Generation{
	0x2763: GenerationBCM2835,
	0x2764: GenerationBCM2835,
	0x2711: GenerationBCM2711,
	0x2712: GenerationBCM2712,
}

// Classify returns the generation of a product id, and false if the id is
// not an accepted stub.
func Classify(productID uint16) (Generation, bool) {
	g, ok := products[productID]
	return g, ok
}
