package ui

import (
	"strings"
	"testing"

	"ble-ibeacon.klederson.com/internal/beacon"
	"ble-ibeacon.klederson.com/internal/bluetooth"
	"ble-ibeacon.klederson.com/internal/ibeacon"
)

func TestTruncRaw(t *testing.T) {
	tests := []struct {
		in   string
		w    int
		want string
	}{
		{"abc", 5, "abc  "},
		{"abcdef", 4, "abcd"},
		{"abcd", 4, "abcd"},
	}
	for _, tc := range tests {
		if got := truncRaw(tc.in, tc.w); got != tc.want {
			t.Errorf("truncRaw(%q, %d) = %q, want %q", tc.in, tc.w, got, tc.want)
		}
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := renderSparkline([]float64{-90, -70, -50}, 10); got != "_-^" {
		t.Errorf("unexpected sparkline %q", got)
	}
	if got := renderSparkline([]float64{-90, -70, -50}, 2); len(got) != 2 {
		t.Errorf("sparkline not clipped to width: %q", got)
	}
}

func TestRenderBeaconListHeight(t *testing.T) {
	var beacons []*bluetooth.Sighting
	for i := 0; i < 20; i++ {
		beacons = append(beacons, &bluetooth.Sighting{
			Discovered: beacon.Discovered{Beacon: ibeacon.Beacon{Major: 1, Minor: uint16(i)}},
			RSSI:       -60,
			Distance:   1,
		})
	}
	out := RenderBeaconList(beacons, 40, 15, 19)
	if n := len(strings.Split(out, "\n")); n > 15 {
		t.Errorf("list rendered %d lines, want at most 15", n)
	}
	if !strings.Contains(out, ">> 1.19") {
		t.Error("cursor row is not visible")
	}
}

func TestRenderDetailPanelEmpty(t *testing.T) {
	out := RenderDetailPanel(nil, 50, 12)
	if !strings.Contains(out, "Select a beacon") {
		t.Error("empty detail panel has no hint")
	}
}

func TestMenuBarKeys(t *testing.T) {
	bar := RenderMenuBar(120, "simulated", true)
	for _, want := range []string{"[S]", "[P]", "[Q]", "RECEIVING", "simulated"} {
		if !strings.Contains(bar, want) {
			t.Errorf("menu bar lacks %q", want)
		}
	}
	if strings.Contains(bar, "detail") {
		t.Error("menu bar offers a key the monitor does not handle")
	}
}
