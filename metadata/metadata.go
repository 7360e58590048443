// Package metadata writes per-device property files.
//
// A file is named <serial>.json and holds one JSON object whose members
// appear in the order they were added. The FACTORY_UUID property is
// stored decoded when its words decode cleanly, and raw otherwise.
package metadata

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/ardnew/usbboot/duid"
	"github.com/ardnew/usbboot/pkg"
)

// FactoryUUID names the property holding identity words.
const FactoryUUID = "FACTORY_UUID"

// Property is one name/value pair.
type Property struct {
	Name  string
	Value string
}

// Writer emits one metadata file incrementally.
type Writer struct {
	f    *os.File
	w    *bufio.Writer
	path string
	n    int
}

// Create creates dir/<serial>.json, replacing any previous file. The
// serial must name a file directly inside dir.
func Create(dir, serial string) (*Writer, error) {
	if serial == "" {
		return nil, pkg.NewError(pkg.KindIO, "metadata create", "empty serial", nil)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, pkg.NewError(pkg.KindIO, "metadata create", dir, err)
	}
	defer root.Close()

	name := serial + ".json"
	f, err := root.Create(name)
	if err != nil {
		return nil, pkg.NewError(pkg.KindIO, "metadata create", name, err)
	}

	w := &Writer{f: f, w: bufio.NewWriter(f), path: filepath.Join(dir, name)}
	w.w.WriteString("{")
	return w, nil
}

// Path returns the file path.
func (w *Writer) Path() string {
	return w.path
}

// Add appends a property.
func (w *Writer) Add(name, value string) error {
	if name == FactoryUUID {
		value = decodeIdentity(value)
	}

	k, err := json.Marshal(name)
	if err != nil {
		return pkg.NewError(pkg.KindIO, "metadata add", name, err)
	}
	v, err := json.Marshal(value)
	if err != nil {
		return pkg.NewError(pkg.KindIO, "metadata add", name, err)
	}

	if w.n > 0 {
		w.w.WriteByte(',')
	}
	w.w.WriteString("\n\t")
	w.w.Write(k)
	w.w.WriteString(": ")
	w.w.Write(v)
	w.n++
	return nil
}

// Close terminates the object and closes the file.
func (w *Writer) Close() error {
	w.w.WriteString("\n}\n")
	err := errors.Join(w.w.Flush(), w.f.Close())
	if err != nil {
		return pkg.NewError(pkg.KindIO, "metadata close", w.path, err)
	}
	pkg.LogDebug(pkg.ComponentMetadata, "metadata written", "path", w.path, "properties", w.n)
	return nil
}

// Write writes props to dir/<serial>.json in order and returns the path.
func Write(dir, serial string, props []Property) (string, error) {
	w, err := Create(dir, serial)
	if err != nil {
		return "", err
	}
	for _, p := range props {
		if err := w.Add(p.Name, p.Value); err != nil {
			w.f.Close()
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return w.path, nil
}

// decodeIdentity decodes identity words, falling back to the raw value.
func decodeIdentity(words string) string {
	s, err := duid.Decode(words)
	if err != nil {
		pkg.LogDebug(pkg.ComponentMetadata, "identity not decoded", "value", words, "error", err)
		return words
	}
	return s
}
