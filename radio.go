package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ble-ibeacon.klederson.com/internal/beacon"
	"ble-ibeacon.klederson.com/internal/bluetooth"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type closableStack interface {
	beacon.Stack
	Close()
}

// newLogger builds the process logger from the persistent flags. quiet
// discards output unless --log-file is set.
func newLogger(quiet bool) (*logrus.Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "invalid --log-level")
	}
	log.SetLevel(level)

	if flagLogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	switch {
	case flagLogFile != "":
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "open log file")
		}
		log.SetOutput(f)
	case quiet:
		log.SetOutput(io.Discard)
	}
	return log, nil
}

// newStack returns the simulated radio in demo mode and the system adapter
// otherwise, plus a name for display.
func newStack(log logrus.FieldLogger) (closableStack, string) {
	if flagDemo {
		return bluetooth.NewSimStack(nil), "simulated"
	}
	return bluetooth.NewAdapterStack(log), "default adapter"
}

// runUntilSignal starts c and keeps the radio running until SIGINT or
// SIGTERM. Initialization failures are fatal.
func runUntilSignal(c *beacon.Controller, stack closableStack, log *logrus.Logger) {
	if err := c.Start(); err != nil {
		log.WithError(err).Fatal("iBeacon initialization failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	if err := c.Stop(); err != nil {
		log.WithError(err).Warn("stop failed")
	}
	stack.Close()
}

// printStartFailure tells the operator why the radio did not come up. The
// monitor hides the log stream, so this goes straight to the terminal.
func printStartFailure(w io.Writer, err error) {
	fmt.Fprintf(w, "\nError: %v\n\n", err)
	if flagDemo {
		return
	}
	fmt.Fprintln(w, "Bluetooth access requires elevated permissions.")
	fmt.Fprintln(w, "Try one of:")
	fmt.Fprintln(w, "  sudo ./ble-ibeacon receiver --tui")
	fmt.Fprintln(w, "  sudo setcap cap_net_admin+ep ./ble-ibeacon")
	fmt.Fprintln(w, "  ./ble-ibeacon receiver --tui --demo    (demo mode, no hardware needed)")
}
