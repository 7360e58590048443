package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// flagValue is one flag occurrence, kept in command-line order.
type flagValue struct {
	setting *setting
	value   string
}

// Loader parses flags and assembles a Config from every layer.
type Loader struct {
	fs         *flag.FlagSet
	configPath string
	envPath    string
	given      []flagValue
}

// NewLoader returns a loader whose flags are registered on a new flag set
// named name.
func NewLoader(name string) *Loader {
	l := &Loader{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	l.fs.StringVar(&l.configPath, "config", "", "read YAML configuration from `FILE`")
	l.fs.StringVar(&l.envPath, "env", "", "read USBBOOT_* variables from dotenv `FILE`")

	for i := range settings {
		s := &settings[i]
		record := func(v string) error {
			// Validate now so the flag package reports the bad flag.
			var scratch Config
			if err := s.set(&scratch, v); err != nil {
				return err
			}
			l.given = append(l.given, flagValue{setting: s, value: v})
			return nil
		}
		if s.isBool {
			l.fs.BoolFunc(s.name, s.usage, record)
		} else {
			l.fs.Func(s.name, s.usage, record)
		}
	}
	return l
}

// FlagSet returns the flag set, for usage output.
func (l *Loader) FlagSet() *flag.FlagSet {
	return l.fs
}

// Args returns the arguments remaining after flags.
func (l *Loader) Args() []string {
	return l.fs.Args()
}

// Load parses args and returns the layered configuration. lookup reads
// the process environment; nil means os.LookupEnv. Variables in the
// process environment take precedence over the dotenv file.
func (l *Loader) Load(args []string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	l.given = l.given[:0]
	if err := l.fs.Parse(args); err != nil {
		return Config{}, err
	}

	if l.envPath != "" {
		dotenv, err := godotenv.Read(l.envPath)
		if err != nil {
			return Config{}, fmt.Errorf("dotenv file: %w", err)
		}
		lookup = chain(lookup, dotenv)
	}

	cfg := Default()

	path := l.configPath
	if path == "" {
		path, _ = lookup(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.LoadEnv(lookup); err != nil {
		return Config{}, err
	}

	reset := make(map[*setting]bool)
	for _, g := range l.given {
		if g.setting.reset != nil && !reset[g.setting] {
			g.setting.reset(&cfg)
			reset[g.setting] = true
		}
		if err := g.setting.set(&cfg, g.value); err != nil {
			return Config{}, fmt.Errorf("-%s: %w", g.setting.name, err)
		}
	}
	return cfg, nil
}

// LoadEnv overlays USBBOOT_* variables onto c. A list in the environment
// replaces any list from the file. USBBOOT_PROPERTY holds a single entry.
func (c *Config) LoadEnv(lookup LookupFunc) error {
	for i := range settings {
		s := &settings[i]
		key := envName(s.name)
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		if s.reset != nil {
			s.reset(c)
		}
		if err := s.set(c, v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// chain looks up key in lookup, then in vars.
func chain(lookup LookupFunc, vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}
}
