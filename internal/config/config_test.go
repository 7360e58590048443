package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// env returns a LookupFunc over vars.
func env(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, uint16(0x0a5c), cfg.VendorID)
	assert.Equal(t, BackendUSBFS, cfg.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Zero(t, cfg.TransferTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.NoError(t, cfg.ValidateCommon())
	assert.ErrorIs(t, cfg.Validate(), ErrNoSource)
}

func TestLoad_Flags(t *testing.T) {
	l := NewLoader("usbboot")
	cfg, err := l.Load([]string{
		"-directory", "/srv/boot",
		"-serial", "a,b",
		"-serial", "c",
		"-vendor", "0x1234",
		"-backend", "LIBUSB",
		"-timeout", "2s",
		"-wait",
		"-loop",
		"-poll", "100ms",
		"-metadata", "/tmp/meta",
		"-log-level", "debug",
		"-log-format", "json",
		"list", "extra",
	}, env(nil))
	require.NoError(t, err)

	assert.Equal(t, "/srv/boot", cfg.Directory)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Serials)
	assert.Equal(t, uint16(0x1234), cfg.VendorID)
	assert.Equal(t, BackendLibUSB, cfg.Backend)
	assert.Equal(t, 2*time.Second, cfg.TransferTimeout)
	assert.True(t, cfg.Wait)
	assert.True(t, cfg.Loop)
	assert.Equal(t, 100*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "/tmp/meta", cfg.MetadataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"list", "extra"}, l.Args())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	file := writeFile(t, "usbboot.yaml", `
archive: /from/file.tar
serials: [f1, f2]
vendor_id: 0x0a5c
transfer_timeout: 3s
poll_interval: 1s
log_level: info
`)

	vars := env(map[string]string{
		"USBBOOT_CONFIG":    file,
		"USBBOOT_SERIAL":    "e1",
		"USBBOOT_POLL":      "250ms",
		"USBBOOT_LOG_LEVEL": "error",
	})

	cfg, err := NewLoader("usbboot").Load([]string{"-log-level", "debug"}, vars)
	require.NoError(t, err)

	assert.Equal(t, "/from/file.tar", cfg.Archive, "file over default")
	assert.Equal(t, 3*time.Second, cfg.TransferTimeout, "file over default")
	assert.Equal(t, []string{"e1"}, cfg.Serials, "env replaces file list")
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval, "env over file")
	assert.Equal(t, "debug", cfg.LogLevel, "flag over env")
}

func TestLoad_FlagSerialsReplaceEnv(t *testing.T) {
	cfg, err := NewLoader("usbboot").Load(
		[]string{"-serial", "x"},
		env(map[string]string{"USBBOOT_SERIAL": "y,z"}),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, cfg.Serials)
}

func TestLoad_Properties(t *testing.T) {
	file := writeFile(t, "usbboot.yaml", "properties: [\"SITE=lab\"]\n")

	tests := []struct {
		name string
		args []string
		vars map[string]string
		want []string
	}{
		{"file", nil, map[string]string{"USBBOOT_CONFIG": file}, []string{"SITE=lab"}},
		{
			"env replaces file",
			nil,
			map[string]string{"USBBOOT_CONFIG": file, "USBBOOT_PROPERTY": "FACTORY_UUID=c65f"},
			[]string{"FACTORY_UUID=c65f"},
		},
		{
			"flags replace env",
			[]string{"-property", "FACTORY_UUID=2038", "-property", "NOTE=a=b"},
			map[string]string{"USBBOOT_PROPERTY": "FACTORY_UUID=c65f"},
			[]string{"FACTORY_UUID=2038", "NOTE=a=b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewLoader("usbboot").Load(tt.args, env(tt.vars))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Properties)
		})
	}
}

func TestParseProperty(t *testing.T) {
	tests := []struct {
		in    string
		name  string
		value string
		ok    bool
	}{
		{"FACTORY_UUID=c65f_2038", "FACTORY_UUID", "c65f_2038", true},
		{" SITE =lab", "SITE", "lab", true},
		{"EMPTY=", "EMPTY", "", true},
		{"EQ=a=b", "EQ", "a=b", true},
		{"NOVALUE", "", "", false},
		{"=value", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		name, value, err := ParseProperty(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseProperty(%q) error = %v, want ok %v", tt.in, err, tt.ok)
			continue
		}
		if name != tt.name || value != tt.value {
			t.Errorf("ParseProperty(%q) = %q, %q, want %q, %q", tt.in, name, value, tt.name, tt.value)
		}
	}
}

func TestLoad_ConfigFlagOverridesEnv(t *testing.T) {
	fromEnv := writeFile(t, "env.yaml", "directory: /env\n")
	fromFlag := writeFile(t, "flag.yaml", "directory: /flag\n")

	cfg, err := NewLoader("usbboot").Load(
		[]string{"-config", fromFlag},
		env(map[string]string{"USBBOOT_CONFIG": fromEnv}),
	)
	require.NoError(t, err)
	assert.Equal(t, "/flag", cfg.Directory)
}

func TestLoad_Dotenv(t *testing.T) {
	dotenv := writeFile(t, ".env", "USBBOOT_ARCHIVE=/dotenv/boot.tar\nUSBBOOT_BACKEND=libusb\n")

	cfg, err := NewLoader("usbboot").Load(
		[]string{"-env", dotenv},
		env(map[string]string{"USBBOOT_BACKEND": "usbfs"}),
	)
	require.NoError(t, err)
	assert.Equal(t, "/dotenv/boot.tar", cfg.Archive)
	assert.Equal(t, BackendUSBFS, cfg.Backend, "process environment wins over dotenv")
}

func TestLoad_Errors(t *testing.T) {
	badYAML := writeFile(t, "bad.yaml", "unknown_key: 1\n")

	tests := []struct {
		name string
		args []string
		vars map[string]string
	}{
		{"bad vendor flag", []string{"-vendor", "xyz"}, nil},
		{"bad duration flag", []string{"-timeout", "soon"}, nil},
		{"unknown flag", []string{"-nope"}, nil},
		{"missing config", []string{"-config", filepath.Join(t.TempDir(), "absent.yaml")}, nil},
		{"unknown yaml key", []string{"-config", badYAML}, nil},
		{"missing dotenv", []string{"-env", filepath.Join(t.TempDir(), "absent.env")}, nil},
		{"bad env bool", nil, map[string]string{"USBBOOT_WAIT": "maybe"}},
		{"bad env vendor", nil, map[string]string{"USBBOOT_VENDOR": "0x10000"}},
		{"bad property flag", []string{"-property", "novalue"}, nil},
		{"bad env property", nil, map[string]string{"USBBOOT_PROPERTY": "=x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader("usbboot")
			l.FlagSet().SetOutput(io.Discard)
			_, err := l.Load(tt.args, env(tt.vars))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_Empty(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.LoadFile(writeFile(t, "empty.yaml", "")))
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		ok      bool
	}{
		{"directory", func(c *Config) { c.Directory = "/boot" }, nil, true},
		{"archive", func(c *Config) { c.Archive = "/boot.tar" }, nil, true},
		{"none", func(c *Config) {}, ErrNoSource, false},
		{"both", func(c *Config) { c.Directory, c.Archive = "/a", "/b" }, ErrTwoSources, false},
		{"backend", func(c *Config) { c.Directory, c.Backend = "/a", "winusb" }, ErrUnknownBackend, false},
		{"negative timeout", func(c *Config) { c.Directory, c.TransferTimeout = "/a", -time.Second }, nil, false},
		{"zero poll", func(c *Config) { c.Directory, c.PollInterval = "/a", 0 }, nil, false},
		{"log level", func(c *Config) { c.Directory, c.LogLevel = "/a", "loud" }, nil, false},
		{"log format", func(c *Config) { c.Directory, c.LogFormat = "/a", "xml" }, nil, false},
		{"property", func(c *Config) { c.Directory, c.Properties = "/a", []string{"BAD"} }, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "USBBOOT_LOG_LEVEL", envName("log-level"))
	assert.Equal(t, "USBBOOT_DIRECTORY", envName("directory"))
}

func TestParseHex16(t *testing.T) {
	tests := []struct {
		in   string
		want uint16
		ok   bool
	}{
		{"0a5c", 0x0a5c, true},
		{"0x0a5c", 0x0a5c, true},
		{"0XFFFF", 0xffff, true},
		{" 2711 ", 0x2711, true},
		{"10000", 0, false},
		{"", 0, false},
		{"zz", 0, false},
	}

	for _, tt := range tests {
		got, err := parseHex16(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("parseHex16(%q) = %#x, %v; want %#x, ok=%v", tt.in, got, err, tt.want, tt.ok)
		}
	}
}
