package pkg

import (
	"errors"
	"strings"
)

// Failure kind sentinels. Every error returned by the boot core wraps
// exactly one of these.
var (
	// ErrNotFound indicates a device or boot file could not be located.
	ErrNotFound = errors.New("not found")

	// ErrCorrupted indicates an archive header declares more payload than
	// the archive holds.
	ErrCorrupted = errors.New("corrupted archive")

	// ErrIO indicates a storage open, seek, or read failure.
	ErrIO = errors.New("I/O error")

	// ErrTransfer indicates a USB transport fault.
	ErrTransfer = errors.New("transfer error")

	// ErrDecode indicates an identity symbol outside the C40 alphabet.
	ErrDecode = errors.New("decode error")

	// ErrSourceNotConfigured indicates neither an archive nor a directory
	// was configured as the boot file source.
	ErrSourceNotConfigured = errors.New("file source not configured")
)

// USB transport errors. These appear wrapped inside ErrTransfer failures.
var (
	// ErrStall indicates an endpoint stall condition.
	ErrStall = errors.New("endpoint stalled")

	// ErrTimeout indicates a transfer timeout.
	ErrTimeout = errors.New("transfer timeout")

	// ErrNoDevice indicates the device is not present.
	ErrNoDevice = errors.New("device not present")

	// ErrInvalidEndpoint indicates an invalid endpoint address.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrBusy indicates the resource is busy.
	ErrBusy = errors.New("resource busy")

	// ErrNotSupported indicates an unsupported operation or feature.
	ErrNotSupported = errors.New("not supported")

	// ErrShortTransfer indicates fewer bytes moved than requested.
	ErrShortTransfer = errors.New("short transfer")
)

// Kind classifies a failure.
type Kind int

// Failure kinds.
const (
	KindUnknown             Kind = iota // Not a classified failure
	KindNotFound                        // Device or file missing
	KindCorrupted                       // Archive size overrun
	KindIO                              // Storage fault
	KindTransfer                        // Bulk I/O fault
	KindDecode                          // Identity symbol out of range
	KindSourceNotConfigured             // No file source set
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindCorrupted:
		return "corrupted"
	case KindIO:
		return "io"
	case KindTransfer:
		return "transfer"
	case KindDecode:
		return "decode"
	case KindSourceNotConfigured:
		return "source-not-configured"
	default:
		return "unknown"
	}
}

// Sentinel returns the sentinel error for the kind, or nil for KindUnknown.
func (k Kind) Sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindCorrupted:
		return ErrCorrupted
	case KindIO:
		return ErrIO
	case KindTransfer:
		return ErrTransfer
	case KindDecode:
		return ErrDecode
	case KindSourceNotConfigured:
		return ErrSourceNotConfigured
	default:
		return nil
	}
}

// Error is a classified failure. Op names the failing operation, Detail
// carries diagnostic text and Err the underlying cause, if any.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	Err    error
}

// NewError returns a failure of the given kind.
func NewError(kind Kind, op, detail string, err error) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if s := e.Kind.Sentinel(); s != nil {
		b.WriteString(s.Error())
	} else {
		b.WriteString(e.Kind.String())
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause to
// errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the kind of the first classified failure in err's
// chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
