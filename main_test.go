package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestMonitorLoggerIsQuiet(t *testing.T) {
	flagLogLevel, flagLogFile = "info", ""
	log, err := newLogger(true)
	if err != nil {
		t.Fatal(err)
	}
	if log.Out != io.Discard {
		t.Error("monitor logger writes to the terminal")
	}

	if _, err := newLogger(false); err != nil {
		t.Fatal(err)
	}
	flagLogLevel = "loud"
	if _, err := newLogger(false); err == nil {
		t.Error("expected error for unknown level")
	}
	flagLogLevel = "info"
}

func TestPrintStartFailure(t *testing.T) {
	startErr := errors.Wrap(errors.New("permission denied"), "enable bluetooth stack")

	tests := []struct {
		demo      bool
		wantHints bool
	}{
		{false, true},
		{true, false},
	}
	for _, tc := range tests {
		flagDemo = tc.demo
		var buf bytes.Buffer
		printStartFailure(&buf, startErr)

		out := buf.String()
		if !strings.Contains(out, "Error: enable bluetooth stack: permission denied") {
			t.Errorf("demo=%v: error missing from %q", tc.demo, out)
		}
		if got := strings.Contains(out, "setcap"); got != tc.wantHints {
			t.Errorf("demo=%v: expected hints %v, got %q", tc.demo, tc.wantHints, out)
		}
	}
	flagDemo = false
}
