// Package host locates a SoC waiting in its boot-ROM USB stub and opens a
// bulk session to it.
//
// It is platform-agnostic and reaches hardware through the [hal.Bus] and
// [hal.Handle] interfaces defined in the github.com/ardnew/usbboot/host/hal
// package. Two backends exist: host/hal/linux (usbfs) and host/hal/libusb.
//
// # Generations
//
// The product id of the stub identifies the SoC generation, and the
// generation fixes the bulk endpoint pair and interface:
//
//	PID     Generation  OUT  IN   Interface
//	0x2763  BCM2835     1    2    0
//	0x2764  BCM2835     1    2    0
//	0x2711  BCM2711     3    4    1
//	0x2712  BCM2712     3    4    1
//
// IN endpoint addresses carry the direction bit, so endpoint 4 is read at
// address 0x84.
//
// # Usage
//
//	bus := linux.NewBus()
//	s, err := host.Locate(ctx, bus, host.ByVendor(host.BroadcomVendorID))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	n, err := s.Read(ctx, buf)
//
// Each Read and Write is exactly one bulk transaction. Failures are
// [pkg.KindTransfer] errors wrapping the transport cause.
package host
