// Package pkg provides shared utilities for the usbboot host.
//
// This package contains common functionality used by the boot core, the
// USB transports, and the command-line tool:
//
//   - Structured logging via Go's standard [log/slog] package
//   - A closed set of failure kinds with sentinel errors
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with component context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentServer, "file served", "name", "start4.elf")
//
// # Errors
//
// Every failure returned by the boot core is a [*Error] carrying one
// [Kind]. Match on the kind sentinel:
//
//	if errors.Is(err, pkg.ErrCorrupted) {
//	    // Archive header overran the file
//	}
package pkg
