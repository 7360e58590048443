package server

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Message layout.
const (
	// FilenameSize is the width of the NUL-padded filename field.
	FilenameSize = 256

	// MessageSize is the length of one request message.
	MessageSize = 4 + FilenameSize
)

// ErrMalformedRequest indicates a request message that cannot be decoded.
var ErrMalformedRequest = errors.New("malformed request")

// Command is a request command tag.
type Command uint32

// Commands.
const (
	GetFileSize Command = 0
	ReadFile    Command = 1
	Done        Command = 2
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case GetFileSize:
		return "GetFileSize"
	case ReadFile:
		return "ReadFile"
	case Done:
		return "Done"
	default:
		return fmt.Sprintf("Command(%d)", uint32(c))
	}
}

// Request is one decoded device request.
type Request struct {
	Command  Command
	Filename string
}

// DecodeRequest decodes a request message: a little-endian uint32 command
// followed by a NUL-padded filename. The filename ends at the first NUL or
// at the end of the field. Messages shorter than the command word, and
// unknown commands, fail with ErrMalformedRequest.
func DecodeRequest(b []byte) (Request, error) {
	if len(b) < 4 {
		return Request{}, fmt.Errorf("%w: %d bytes", ErrMalformedRequest, len(b))
	}

	cmd := Command(binary.LittleEndian.Uint32(b))
	if cmd > Done {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformedRequest, cmd)
	}

	name := b[4:min(len(b), MessageSize)]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return Request{Command: cmd, Filename: string(name)}, nil
}

// Encode returns the message for r, as the device would send it. Names
// longer than FilenameSize are truncated.
func (r Request) Encode() []byte {
	b := make([]byte, MessageSize)
	binary.LittleEndian.PutUint32(b, uint32(r.Command))
	copy(b[4:], r.Filename)
	return b
}
