// Command usbboot serves boot files to SoCs waiting in USB boot mode.
//
// Usage:
//
//	usbboot [flags]                serve boot files
//	usbboot [flags] list           list attached boot-mode devices
//	usbboot [flags] decode WORDS   decode identity words
//	usbboot [flags] ls ARCHIVE     list archive entries
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardnew/usbboot/internal/config"
	"github.com/ardnew/usbboot/pkg"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one invocation and returns the exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	loader := config.NewLoader("usbboot")
	fs := loader.FlagSet()
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: usbboot [flags] [list | decode WORDS... | ls ARCHIVE]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	cfg, err := loader.Load(args, nil)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "usbboot: %v\n", err)
		return 2
	}
	if err := cfg.ValidateCommon(); err != nil {
		fmt.Fprintf(stderr, "usbboot: %v\n", err)
		return 2
	}
	if err := cfg.ApplyLogging(); err != nil {
		fmt.Fprintf(stderr, "usbboot: %v\n", err)
		return 2
	}

	rest := loader.Args()
	cmd := ""
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}

	switch cmd {
	case "":
		err = serve(ctx, &cfg)
	case "list":
		err = list(ctx, &cfg, stdout)
	case "decode":
		err = decode(rest, stdout)
	case "ls":
		err = listArchive(rest, stdout)
	default:
		fs.Usage()
		return 2
	}

	if err != nil {
		var usage usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(stderr, "usbboot: %v\n", err)
			return 2
		}
		pkg.LogError(pkg.ComponentCLI, "command failed", "command", cmd, "error", err)
		fmt.Fprintf(stderr, "usbboot: %v\n", err)
		return 1
	}
	return 0
}

// usageError reports a command-line mistake.
type usageError string

func (e usageError) Error() string { return string(e) }
