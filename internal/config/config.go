// Package config assembles the usbboot configuration.
//
// Values are layered, later layers overriding earlier ones:
//
//  1. built-in defaults
//  2. a YAML file named by -config or USBBOOT_CONFIG
//  3. USBBOOT_* environment variables, optionally read from a dotenv
//     file named by -env
//  4. command-line flags
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ardnew/usbboot/pkg"
)

// Transport backends.
const (
	BackendUSBFS  = "usbfs"
	BackendLibUSB = "libusb"
)

// Validation errors.
var (
	ErrNoSource       = errors.New("one of directory or archive is required")
	ErrTwoSources     = errors.New("directory and archive are mutually exclusive")
	ErrUnknownBackend = errors.New("unknown backend")
)

// Config is the complete usbboot configuration.
type Config struct {
	Directory       string        `yaml:"directory"`        // Boot files directory
	Archive         string        `yaml:"archive"`          // Boot files tar archive
	Serials         []string      `yaml:"serials"`          // Devices to serve, empty serves the first found
	VendorID        uint16        `yaml:"vendor_id"`        // Vendor matched when no serial is given
	Backend         string        `yaml:"backend"`          // usbfs or libusb
	TransferTimeout time.Duration `yaml:"transfer_timeout"` // Per bulk transfer, zero waits indefinitely
	Wait            bool          `yaml:"wait"`             // Poll until a device appears
	Loop            bool          `yaml:"loop"`             // Serve devices until interrupted
	PollInterval    time.Duration `yaml:"poll_interval"`    // Device poll period
	MetadataDir     string        `yaml:"metadata_dir"`     // Where <serial>.json files are written
	Properties      []string      `yaml:"properties"`       // Extra NAME=VALUE metadata entries
	LogLevel        string        `yaml:"log_level"`        // debug, info, warn or error
	LogFormat       string        `yaml:"log_format"`       // text or json
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		VendorID:     0x0a5c,
		Backend:      BackendUSBFS,
		PollInterval: 500 * time.Millisecond,
		LogLevel:     "warn",
		LogFormat:    "text",
	}
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the
// file leave c unchanged; unknown keys are an error.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for serving.
func (c *Config) Validate() error {
	switch {
	case c.Directory == "" && c.Archive == "":
		return ErrNoSource
	case c.Directory != "" && c.Archive != "":
		return ErrTwoSources
	}
	return c.ValidateCommon()
}

// ValidateCommon checks the settings every command depends on.
func (c *Config) ValidateCommon() error {
	switch c.Backend {
	case BackendUSBFS, BackendLibUSB:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if c.TransferTimeout < 0 {
		return fmt.Errorf("transfer timeout must not be negative: %v", c.TransferTimeout)
	}
	for _, p := range c.Properties {
		if _, _, err := ParseProperty(p); err != nil {
			return err
		}
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive: %v", c.PollInterval)
	}
	if _, err := pkg.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if _, ok := pkg.ParseLogFormat(c.LogFormat); !ok {
		return fmt.Errorf("log format: unknown %q", c.LogFormat)
	}
	return nil
}

// ParseProperty splits a NAME=VALUE metadata entry. The value may be
// empty or contain further '=' characters; the name may not be empty.
func ParseProperty(s string) (name, value string, err error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return "", "", fmt.Errorf("property %q: want NAME=VALUE", s)
	}
	return strings.TrimSpace(name), value, nil
}

// ApplyLogging configures pkg logging from the configuration.
func (c *Config) ApplyLogging() error {
	level, err := pkg.ParseLogLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	format, ok := pkg.ParseLogFormat(c.LogFormat)
	if !ok {
		return fmt.Errorf("log format: unknown %q", c.LogFormat)
	}
	pkg.SetLogLevel(level)
	pkg.SetLogFormat(format)
	return nil
}
