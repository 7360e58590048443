package server

import (
	"context"
	"fmt"

	"github.com/ardnew/usbboot/pkg"
)

// Serve reads and handles requests from ch until the device sends Done,
// which returns nil, or a read, decode or handling error occurs, which is
// returned. ctx is checked between requests. If ch implements
// fmt.Stringer its string identifies the session in log records.
func Serve(ctx context.Context, ch Channel, src Source) error {
	session := "-"
	if sv, ok := ch.(fmt.Stringer); ok {
		session = sv.String()
	}

	srv := New(ch, src)
	srv.session = session
	buf := make([]byte, MessageSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := ch.Read(ctx, buf)
		if err != nil {
			pkg.LogError(pkg.ComponentServer, "read request failed", "session", session, "error", err)
			return err
		}

		req, err := DecodeRequest(buf[:n])
		if err != nil {
			pkg.LogError(pkg.ComponentServer, "bad request", "session", session, "bytes", n, "error", err)
			return err
		}

		pkg.LogDebug(pkg.ComponentServer, "request",
			"session", session,
			"command", req.Command.String(),
			"file", req.Filename,
		)

		if err := srv.Handle(ctx, req); err != nil {
			pkg.LogError(pkg.ComponentServer, "request failed",
				"session", session,
				"command", req.Command.String(),
				"file", req.Filename,
				"error", err,
			)
			return err
		}

		if srv.State() == Terminated {
			pkg.LogInfo(pkg.ComponentServer, "device done", "session", session)
			return nil
		}
	}
}
