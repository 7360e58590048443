package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment variable name.
const EnvPrefix = "USBBOOT_"

// setting binds one option name to a Config field. The same name is used
// for the flag and, upper-cased with EnvPrefix, for the environment.
type setting struct {
	name   string
	usage  string
	isBool bool
	set    func(c *Config, v string) error
	reset  func(c *Config) // List settings only; clears values from lower layers
}

var settings = []setting{
	{
		name:  "directory",
		usage: "serve boot files from `DIR`",
		set:   func(c *Config, v string) error { c.Directory = v; return nil },
	},
	{
		name:  "archive",
		usage: "serve boot files from tar `FILE`",
		set:   func(c *Config, v string) error { c.Archive = v; return nil },
	},
	{
		name:  "serial",
		usage: "serve the device with `SERIAL` (repeatable, or comma-separated)",
		reset: func(c *Config) { c.Serials = nil },
		set: func(c *Config, v string) error {
			for _, s := range strings.Split(v, ",") {
				if s = strings.TrimSpace(s); s != "" {
					c.Serials = append(c.Serials, s)
				}
			}
			return nil
		},
	},
	{
		name:  "vendor",
		usage: "match devices with hexadecimal vendor `ID` when no serial is given",
		set: func(c *Config, v string) error {
			id, err := parseHex16(v)
			if err != nil {
				return err
			}
			c.VendorID = id
			return nil
		},
	},
	{
		name:  "backend",
		usage: "USB backend: usbfs or libusb",
		set:   func(c *Config, v string) error { c.Backend = strings.ToLower(v); return nil },
	},
	{
		name:  "timeout",
		usage: "bulk transfer `DURATION`, 0 waits indefinitely",
		set:   durationSetter(func(c *Config) *time.Duration { return &c.TransferTimeout }),
	},
	{
		name:   "wait",
		usage:  "wait for a device to appear",
		isBool: true,
		set:    boolSetter(func(c *Config) *bool { return &c.Wait }),
	},
	{
		name:   "loop",
		usage:  "keep serving devices until interrupted",
		isBool: true,
		set:    boolSetter(func(c *Config) *bool { return &c.Loop }),
	},
	{
		name:  "poll",
		usage: "device poll `DURATION` while waiting",
		set:   durationSetter(func(c *Config) *time.Duration { return &c.PollInterval }),
	},
	{
		name:  "metadata",
		usage: "write <serial>.json device metadata to `DIR`",
		set:   func(c *Config, v string) error { c.MetadataDir = v; return nil },
	},
	{
		name:  "property",
		usage: "add `NAME=VALUE` to device metadata (repeatable)",
		reset: func(c *Config) { c.Properties = nil },
		set: func(c *Config, v string) error {
			if _, _, err := ParseProperty(v); err != nil {
				return err
			}
			c.Properties = append(c.Properties, v)
			return nil
		},
	},
	{
		name:  "log-level",
		usage: "log `LEVEL`: debug, info, warn or error",
		set:   func(c *Config, v string) error { c.LogLevel = v; return nil },
	},
	{
		name:  "log-format",
		usage: "log `FORMAT`: text or json",
		set:   func(c *Config, v string) error { c.LogFormat = v; return nil },
	},
}

// envName returns the environment variable for a setting name.
func envName(name string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// parseHex16 parses a 16-bit hexadecimal value with optional 0x prefix.
func parseHex16(v string) (uint16, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(v), "0x"), "0X")
	n, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid hexadecimal id %q", v)
	}
	return uint16(n), nil
}

func durationSetter(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}
