package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ardnew/usbboot/archive"
	"github.com/ardnew/usbboot/duid"
	"github.com/ardnew/usbboot/host"
	"github.com/ardnew/usbboot/internal/config"
)

// list prints attached devices in boot mode.
func list(ctx context.Context, cfg *config.Config, w io.Writer) error {
	bus, closeBus, err := openBus(cfg)
	if err != nil {
		return err
	}
	defer closeBus()

	devices, err := host.Candidates(ctx, bus, host.ByVendor(cfg.VendorID))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BUS/DEV\tID\tGENERATION\tOUT\tIN\tSERIAL")
	for _, d := range devices {
		gen, _ := host.Classify(d.ProductID)
		out, in := gen.Endpoints()
		fmt.Fprintf(tw, "%03d/%03d\t%04x:%04x\t%s\t%d\t0x%02x\t%s\n",
			d.BusNumber, d.DeviceNumber, d.VendorID, d.ProductID, gen, out, in, d.Serial)
	}
	return tw.Flush()
}

// decode prints the decoded identity of each argument.
func decode(args []string, w io.Writer) error {
	if len(args) == 0 {
		return usageError("decode: identity words required")
	}
	for _, words := range args {
		s, err := duid.Decode(words)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, s)
	}
	return nil
}

// listArchive prints the entries of a boot archive.
func listArchive(args []string, w io.Writer) error {
	if len(args) != 1 {
		return usageError("ls: exactly one archive required")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	err := archive.Scan(args[0], func(e archive.Entry) error {
		_, err := fmt.Fprintf(tw, "%d\t%s\t\n", e.Size, e.Name)
		return err
	})
	if err != nil {
		return err
	}
	return tw.Flush()
}
