// Package source serves boot files from a tar archive or a directory.
package source

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/ardnew/usbboot/archive"
	"github.com/ardnew/usbboot/pkg"
)

// Config selects the boot file backend. Exactly one field should be set;
// if both are, the archive is used.
type Config struct {
	Archive   string // Path to a tar archive
	Directory string // Path to a flat directory
}

// Source answers size and content lookups for boot files. It holds no
// mutable state and may be shared by concurrent sessions.
type Source struct {
	cfg Config
}

// New returns a Source for cfg. An empty Config is accepted; every lookup
// on it then fails with pkg.ErrSourceNotConfigured.
func New(cfg Config) *Source {
	return &Source{cfg: cfg}
}

// Config returns the configuration the source was built with.
func (s *Source) Config() Config {
	return s.cfg
}

// Configured reports whether a backend is set.
func (s *Source) Configured() bool {
	return s.cfg.Archive != "" || s.cfg.Directory != ""
}

// Size returns the length of the named boot file.
func (s *Source) Size(name string) (int64, error) {
	switch {
	case s.cfg.Archive != "":
		return archive.Size(s.cfg.Archive, name)
	case s.cfg.Directory != "":
		f, err := s.openFile(name)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		size, err := f.Seek(0, io.SeekEnd)
		if err != nil {
			return 0, pkg.NewError(pkg.KindIO, "source seek", name, err)
		}
		return size, nil
	default:
		return 0, errNotConfigured("source size")
	}
}

// Bytes returns the contents of the named boot file.
func (s *Source) Bytes(name string) ([]byte, error) {
	switch {
	case s.cfg.Archive != "":
		return archive.Lookup(s.cfg.Archive, name)
	case s.cfg.Directory != "":
		f, err := s.openFile(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, pkg.NewError(pkg.KindIO, "source read", name, err)
		}
		return data, nil
	default:
		return nil, errNotConfigured("source read")
	}
}

// openFile opens name beneath the configured directory. Names that would
// resolve outside the directory are rejected by os.Root.
func (s *Source) openFile(name string) (*os.File, error) {
	root, err := os.OpenRoot(s.cfg.Directory)
	if err != nil {
		return nil, pkg.NewError(pkg.KindIO, "source open", s.cfg.Directory, err)
	}
	defer root.Close()

	f, err := root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, pkg.NewError(pkg.KindNotFound, "source open", name, err)
		}
		return nil, pkg.NewError(pkg.KindIO, "source open", name, err)
	}

	if st, err := f.Stat(); err == nil && st.IsDir() {
		f.Close()
		return nil, pkg.NewError(pkg.KindNotFound, "source open", name+" is a directory", nil)
	}

	pkg.LogDebug(pkg.ComponentSource, "file opened", "dir", s.cfg.Directory, "name", name)
	return f, nil
}

func errNotConfigured(op string) error {
	return pkg.NewError(pkg.KindSourceNotConfigured, op, "no archive or directory set", nil)
}
