package bluetooth

import (
	"math"
	"testing"
	"time"

	"ble-ibeacon.klederson.com/internal/beacon"
	"ble-ibeacon.klederson.com/internal/ibeacon"
)

func discovered(minor uint16, rssi int16) beacon.Discovered {
	return beacon.Discovered{
		Address: beacon.Address{0, 0, 0, 0, 0, byte(minor)},
		Beacon: ibeacon.Beacon{
			ProximityID:   demoDeployment,
			Major:         1,
			Minor:         minor,
			MeasuredPower: -59,
		},
		RSSI: rssi,
	}
}

func TestRSSIToDistance(t *testing.T) {
	tests := []struct {
		rssi, power, want float64
	}{
		{-59, -59, 1},
		{-84, -59, 10},
		{-34, -59, 0.1},
		{5, -59, 0.1},
	}
	for _, tc := range tests {
		got := RSSIToDistance(tc.rssi, tc.power, 2.5)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("rssi=%v power=%v: expected %v, got %v", tc.rssi, tc.power, tc.want, got)
		}
	}
}

func TestStoreUpsertSmoothing(t *testing.T) {
	s := NewBeaconStore()
	s.Upsert(discovered(1, -60))
	s.Upsert(discovered(1, -70))

	if s.Count() != 1 {
		t.Fatalf("expected 1 beacon, got %d", s.Count())
	}
	b := s.Snapshot()[0]
	if math.Abs(b.RSSI-(-63)) > 1e-9 {
		t.Errorf("expected smoothed RSSI -63, got %v", b.RSSI)
	}
	if b.Count != 2 || len(b.History) != 2 {
		t.Errorf("unexpected count %d / history %v", b.Count, b.History)
	}
	if len(b.History) == 2 && (b.History[0] != -60 || b.History[1] != -70) {
		t.Errorf("history should hold raw readings, got %v", b.History)
	}
	if b.Label() != "1.1" {
		t.Errorf("unexpected label %q", b.Label())
	}
}

func TestStoreSnapshotOrder(t *testing.T) {
	s := NewBeaconStore()
	s.Upsert(discovered(1, -80))
	s.Upsert(discovered(2, -40))
	s.Upsert(discovered(3, -60))

	snap := s.Snapshot()
	for i, want := range []uint16{2, 3, 1} {
		if snap[i].Minor != want {
			t.Errorf("position %d: expected minor %d, got %d", i, want, snap[i].Minor)
		}
	}

	// snapshot is a copy
	snap[0].History[0] = 0
	if s.Snapshot()[0].History[0] != -40 {
		t.Error("snapshot shares history with the store")
	}
}

func TestStoreEvict(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewBeaconStore()
	s.now = func() time.Time { return now }

	s.Upsert(discovered(1, -60))
	now = now.Add(20 * time.Second)
	s.Upsert(discovered(2, -60))
	now = now.Add(15 * time.Second)

	if n := s.Evict(30 * time.Second); n != 1 {
		t.Errorf("expected 1 eviction, got %d", n)
	}
	if snap := s.Snapshot(); len(snap) != 1 || snap[0].Minor != 2 {
		t.Errorf("wrong beacon survived: %+v", snap)
	}
}

func TestStoreHistoryBounded(t *testing.T) {
	s := NewBeaconStore()
	for i := 0; i < 200; i++ {
		s.Upsert(discovered(1, -60))
	}
	if n := len(s.Snapshot()[0].History); n > 60 {
		t.Errorf("history grew to %d", n)
	}
}

func TestProximity(t *testing.T) {
	tests := []struct {
		d    float64
		want string
	}{
		{0.2, "immediate"},
		{1.5, "near"},
		{12, "far"},
	}
	for _, tc := range tests {
		s := Sighting{Distance: tc.d}
		if got := s.Proximity(); got != tc.want {
			t.Errorf("%v m: expected %s, got %s", tc.d, tc.want, got)
		}
	}
}
