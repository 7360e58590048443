package archive

import (
	"errors"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/usbboot/pkg"
)

// Header layout. Only the name and size fields are interpreted.
const (
	BlockSize  = 512 // Header and payload alignment
	HeaderSize = 257 // Bytes read per header, through the link name field

	nameOffset = 0
	nameLen    = 100
	sizeOffset = 124
	sizeLen    = 12
)

// Entry describes one archive member found while scanning.
type Entry struct {
	Name   string // Name field, NUL padding removed
	Size   int64  // Declared payload length
	Offset int64  // Payload start within the archive
}

// errStop ends a scan early without error.
var errStop = errors.New("stop scan")

// Lookup returns the payload of the first entry whose name equals name,
// ignoring ASCII letter case.
//
// It fails with pkg.ErrCorrupted if a header scanned before the match
// declares more payload than the archive holds, and with pkg.ErrNotFound
// if no entry matches.
func Lookup(path, name string) ([]byte, error) {
	var data []byte
	err := find(path, name, func(f *os.File, e Entry) error {
		data = make([]byte, e.Size)
		if _, err := io.ReadFull(f, data); err != nil {
			return pkg.NewError(pkg.KindIO, "archive read", e.Name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Size returns the declared payload length of the entry Lookup would
// return, without reading the payload.
func Size(path, name string) (int64, error) {
	var size int64
	err := find(path, name, func(_ *os.File, e Entry) error {
		size = e.Size
		return nil
	})
	if err != nil {
		return 0, err
	}
	return size, nil
}

// Scan calls fn for every named entry in archive order. Headers with an
// empty name field, such as the zero blocks that end an archive, are not
// reported. A non-nil error from fn ends the scan and is returned.
func Scan(path string, fn func(Entry) error) error {
	f, size, err := open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return scan(f, size, func(e Entry) error {
		if e.Name == "" {
			return nil
		}
		return fn(e)
	})
}

// find scans for name and calls match with the file positioned at the
// start of the matching payload.
func find(path, name string, match func(*os.File, Entry) error) error {
	if name == "" {
		return pkg.NewError(pkg.KindNotFound, "archive lookup", "empty file name", nil)
	}

	f, size, err := open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var found bool
	err = scan(f, size, func(e Entry) error {
		if !equalFoldASCII(e.Name, name) {
			return nil
		}
		found = true
		if err := match(f, e); err != nil {
			return err
		}
		return errStop
	})
	if err != nil {
		return err
	}
	if !found {
		return pkg.NewError(pkg.KindNotFound, "archive lookup", name+" not in "+path, nil)
	}

	pkg.LogDebug(pkg.ComponentArchive, "entry found", "archive", path, "name", name)
	return nil
}

// open opens the archive and reports its length.
func open(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, pkg.NewError(pkg.KindIO, "archive open", path, err)
	}
	size, err := f.Seek(0, io.SeekEnd)
	if err == nil {
		_, err = f.Seek(0, io.SeekStart)
	}
	if err != nil {
		f.Close()
		return nil, 0, pkg.NewError(pkg.KindIO, "archive seek", path, err)
	}
	return f, size, nil
}

// scan walks the headers of an archive of the given length. visit is
// called with the file positioned at the entry's payload; scan then skips
// the payload rounded up to the block size. Returning errStop from visit
// ends the scan with nil.
func scan(f *os.File, archiveSize int64, visit func(Entry) error) error {
	var hdr [HeaderSize]byte
	for {
		if _, err := io.ReadFull(f, hdr[:]); err != nil {
			return nil
		}

		pos, err := f.Seek(BlockSize-HeaderSize, io.SeekCurrent)
		if err != nil {
			return pkg.NewError(pkg.KindIO, "archive seek", "", err)
		}
		if pos == archiveSize {
			return nil
		}

		e := Entry{
			Name:   parseName(hdr[nameOffset : nameOffset+nameLen]),
			Offset: pos,
		}
		size := parseSize(hdr[sizeOffset : sizeOffset+sizeLen])
		if pos > archiveSize || size > uint64(archiveSize-pos) {
			return pkg.NewError(pkg.KindCorrupted, "archive scan",
				"entry "+strconv.Quote(e.Name)+" declares "+strconv.FormatUint(size, 10)+
					" bytes at offset "+strconv.FormatInt(pos, 10)+
					" of "+strconv.FormatInt(archiveSize, 10), nil)
		}
		e.Size = int64(size)

		if err := visit(e); err != nil {
			if errors.Is(err, errStop) {
				return nil
			}
			return err
		}

		if _, err := f.Seek(e.Offset+roundUp(e.Size), io.SeekStart); err != nil {
			return pkg.NewError(pkg.KindIO, "archive seek", e.Name, err)
		}
	}
}

// parseName decodes the name field. Invalid UTF-8 yields the empty name.
func parseName(b []byte) string {
	if !utf8.Valid(b) {
		return ""
	}
	return strings.Trim(string(b), "\x00")
}

// parseSize decodes the octal size field. Text that is not valid UTF-8,
// is empty, or does not parse yields zero.
func parseSize(b []byte) uint64 {
	if !utf8.Valid(b) {
		return 0
	}
	s := strings.TrimSpace(strings.Trim(string(b), "\x00"))
	s = strings.TrimPrefix(s, "+")
	v, err := strconv.ParseUint(s, 8, 64)
	if err != nil {
		return 0
	}
	return v
}

// roundUp rounds n up to a multiple of BlockSize.
func roundUp(n int64) int64 {
	if n > math.MaxInt64-BlockSize {
		return math.MaxInt64 &^ (BlockSize - 1)
	}
	return (n + BlockSize - 1) &^ (BlockSize - 1)
}

// equalFoldASCII reports whether a and b are equal under ASCII case
// folding. Non-ASCII bytes must match exactly.
func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
