package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/usbboot/host"
	"github.com/ardnew/usbboot/host/hal"
	"github.com/ardnew/usbboot/internal/config"
	"github.com/ardnew/usbboot/metadata"
	"github.com/ardnew/usbboot/pkg"
	"github.com/ardnew/usbboot/server"
	"github.com/ardnew/usbboot/source"
)

// serve boots the configured devices, concurrently when several serials
// are given. With Loop set it starts over after every round until ctx is
// cancelled.
func serve(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return usageError(err.Error())
	}

	bus, closeBus, err := openBus(cfg)
	if err != nil {
		return err
	}
	defer closeBus()

	src := source.New(source.Config{Archive: cfg.Archive, Directory: cfg.Directory})
	filters := deviceFilters(cfg)

	for {
		err := serveRound(ctx, cfg, bus, src, filters)
		if !cfg.Loop {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			pkg.LogWarn(pkg.ComponentCLI, "round failed, continuing", "error", err)
		}

		// Let the device drop off the bus before it is looked for again.
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(cfg.PollInterval):
		}
	}
}

// deviceFilters returns one device filter per configured serial, or a vendor
// filter when none is configured.
func deviceFilters(cfg *config.Config) []host.Filter {
	if len(cfg.Serials) == 0 {
		return []host.Filter{host.ByVendor(cfg.VendorID)}
	}
	out := make([]host.Filter, 0, len(cfg.Serials))
	for _, s := range cfg.Serials {
		out = append(out, host.BySerial(s))
	}
	return out
}

// serveRound serves one session per filter and waits for all of them.
func serveRound(ctx context.Context, cfg *config.Config, bus hal.Bus, src *source.Source, filters []host.Filter) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range filters {
		g.Go(func() error {
			return serveDevice(gctx, cfg, bus, src, f)
		})
	}
	return g.Wait()
}

// serveDevice locates one device and serves it until Done.
func serveDevice(ctx context.Context, cfg *config.Config, bus hal.Bus, src server.Source, f host.Filter) error {
	var (
		s   *host.Session
		err error
	)
	if cfg.Wait || cfg.Loop {
		s, err = host.Wait(ctx, bus, f, cfg.PollInterval)
	} else {
		s, err = host.Locate(ctx, bus, f)
	}
	if err != nil {
		return err
	}
	defer s.Close()

	if cfg.MetadataDir != "" {
		if err := writeMetadata(cfg.MetadataDir, s, cfg.Properties); err != nil {
			// Metadata is informational; serving continues.
			pkg.LogWarn(pkg.ComponentCLI, "metadata not written", "session", s.ID, "error", err)
		}
	}

	start := time.Now()
	if err := server.Serve(ctx, s, src); err != nil {
		return fmt.Errorf("device %s: %w", s.Device(), err)
	}

	pkg.LogInfo(pkg.ComponentCLI, "device booted",
		"session", s.ID,
		"serial", s.Serial,
		"generation", s.Generation.String(),
		"elapsed", time.Since(start),
	)
	return nil
}

// writeMetadata records the session identity as <serial>.json, followed
// by the configured NAME=VALUE properties in order.
func writeMetadata(dir string, s *host.Session, extra []string) error {
	if s.Serial == "" {
		return errors.New("device has no serial number")
	}
	props := []metadata.Property{
		{Name: "SERIAL_NUM", Value: s.Serial},
		{Name: "VENDOR_ID", Value: fmt.Sprintf("%04x", s.VendorID)},
		{Name: "PRODUCT_ID", Value: fmt.Sprintf("%04x", s.ProductID)},
		{Name: "GENERATION", Value: s.Generation.String()},
		{Name: "BUS", Value: strconv.Itoa(int(s.Device().BusNumber))},
		{Name: "SESSION", Value: s.ID},
	}
	for _, p := range extra {
		name, value, err := config.ParseProperty(p)
		if err != nil {
			return err
		}
		props = append(props, metadata.Property{Name: name, Value: value})
	}

	path, err := metadata.Write(dir, s.Serial, props)
	if err != nil {
		return err
	}
	pkg.LogInfo(pkg.ComponentCLI, "metadata written", "session", s.ID, "path", path)
	return nil
}
