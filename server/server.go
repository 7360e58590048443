package server

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/ardnew/usbboot/pkg"
)

// ErrTerminated is returned by Handle once the server has terminated.
var ErrTerminated = errors.New("server terminated")

// Channel is the bulk channel to the device. Each call is one bulk
// transaction.
type Channel interface {
	Read(ctx context.Context, p []byte) (int, error)
	Write(ctx context.Context, p []byte) (int, error)
}

// Source provides boot files by name.
type Source interface {
	Size(name string) (int64, error)
	Bytes(name string) ([]byte, error)
}

// State is the protocol state of a Server.
type State uint8

// Server states.
const (
	AwaitingCommand State = iota
	RespondingSize
	RespondingData
	Terminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case AwaitingCommand:
		return "AwaitingCommand"
	case RespondingSize:
		return "RespondingSize"
	case RespondingData:
		return "RespondingData"
	case Terminated:
		return "Terminated"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Server is the file server state machine for one device session. It is
// not safe for concurrent use.
type Server struct {
	ch    Channel
	src   Source
	state State

	session string // Log correlation, set by Serve
}

// New returns a server awaiting its first command.
func New(ch Channel, src Source) *Server {
	return &Server{ch: ch, src: src}
}

// State returns the current state.
func (s *Server) State() State {
	return s.state
}

// Handle processes exactly one request. Done terminates the server
// without I/O. Any failure also terminates the server and is returned;
// the device cannot recover from a missing reply.
func (s *Server) Handle(ctx context.Context, req Request) error {
	if s.state == Terminated {
		return ErrTerminated
	}

	var err error
	switch req.Command {
	case GetFileSize:
		s.state = RespondingSize
		err = s.respondSize(ctx, req.Filename)
	case ReadFile:
		s.state = RespondingData
		err = s.respondData(ctx, req.Filename)
	case Done:
		s.state = Terminated
		return nil
	default:
		err = fmt.Errorf("%w: %v", ErrMalformedRequest, req.Command)
	}

	if err != nil {
		s.state = Terminated
		return err
	}
	s.state = AwaitingCommand
	return nil
}

// respondSize writes the 4-byte little-endian size of name.
func (s *Server) respondSize(ctx context.Context, name string) error {
	size, err := s.src.Size(name)
	if err != nil {
		return err
	}
	if size < 0 || size > math.MaxUint32 {
		return pkg.NewError(pkg.KindIO, "get file size",
			fmt.Sprintf("%s: size %d does not fit the reply", name, size), nil)
	}

	var reply [4]byte
	binary.LittleEndian.PutUint32(reply[:], uint32(size))
	if err := s.write(ctx, "size reply", reply[:]); err != nil {
		return err
	}

	pkg.LogDebug(pkg.ComponentServer, "size sent", "session", s.session, "file", name, "size", size)
	return nil
}

// respondData writes the contents of name as one transaction.
func (s *Server) respondData(ctx context.Context, name string) error {
	data, err := s.src.Bytes(name)
	if err != nil {
		return err
	}
	if err := s.write(ctx, "file reply", data); err != nil {
		return err
	}

	pkg.LogInfo(pkg.ComponentServer, "file sent", "session", s.session, "file", name, "size", len(data))
	return nil
}

// write sends p and fails on a short write.
func (s *Server) write(ctx context.Context, what string, p []byte) error {
	n, err := s.ch.Write(ctx, p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return pkg.NewError(pkg.KindTransfer, what,
			fmt.Sprintf("wrote %d of %d bytes", n, len(p)), pkg.ErrShortTransfer)
	}
	return nil
}
