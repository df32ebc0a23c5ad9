package bluetooth

import (
	"bytes"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ble-ibeacon.klederson.com/internal/beacon"
	"ble-ibeacon.klederson.com/internal/ibeacon"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDispatcherOrder(t *testing.T) {
	d := newDispatcher()
	defer d.close()

	var mu sync.Mutex
	var got []beacon.Event
	for i := 0; i < 3; i++ {
		d.post(beacon.UnknownEvent{Code: uint8(i)})
	}
	d.register(func(ev beacon.Event) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
		// events posted from the handler must not deadlock
		if u, ok := ev.(beacon.UnknownEvent); ok && u.Code == 2 {
			d.post(beacon.AdvStopComplete{})
		}
	})

	waitFor(t, "4 events", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 4
	})
	for i := 0; i < 3; i++ {
		if got[i] != (beacon.UnknownEvent{Code: uint8(i)}) {
			t.Errorf("event %d out of order: %+v", i, got[i])
		}
	}
	if _, ok := got[3].(beacon.AdvStopComplete); !ok {
		t.Errorf("expected AdvStopComplete last, got %T", got[3])
	}
}

func TestDispatcherDropsScanResultsWhenBacklogged(t *testing.T) {
	d := newDispatcher()
	for i := 0; i < 100; i++ {
		d.post(beacon.ScanResult{RSSI: int16(-i)})
	}
	d.post(beacon.ScanStopComplete{})

	d.mu.Lock()
	n := len(d.queue)
	_, last := d.queue[n-1].(beacon.ScanStopComplete)
	d.mu.Unlock()

	if n != 65 || !last {
		t.Errorf("expected 64 results plus the completion, got %d (completion kept: %v)", n, last)
	}
}

func TestDispatcherCloseDeliversQueued(t *testing.T) {
	d := newDispatcher()
	release := make(chan struct{})
	var n atomic.Int32
	d.register(func(ev beacon.Event) {
		if _, ok := ev.(beacon.ScanStartComplete); ok {
			<-release
		}
		n.Add(1)
	})

	d.post(beacon.ScanStartComplete{})
	d.post(beacon.ScanStopComplete{})
	d.post(beacon.AdvStopComplete{})

	closed := make(chan struct{})
	go func() {
		d.close()
		close(closed)
	}()
	close(release)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("close did not return")
	}
	if got := n.Load(); got != 3 {
		t.Errorf("expected 3 events delivered before close returned, got %d", got)
	}
}

func newTestSim() *SimStack {
	s := NewSimStack(rand.New(rand.NewSource(1)))
	s.SetTick(5 * time.Millisecond)
	s.flicker = 0
	return s
}

func TestSimStackReceiver(t *testing.T) {
	sim := newTestSim()
	defer sim.Close()

	logger, hook := test.NewNullLogger()
	c := beacon.NewController(sim, beacon.NewBuilder(logger).SetMode(beacon.Receiver).Build(), logger)

	var mu sync.Mutex
	seen := map[string]bool{}
	c.OnDiscovered(func(d beacon.Discovered) {
		mu.Lock()
		defer mu.Unlock()
		if d.ProximityID != demoDeployment {
			t.Errorf("unexpected proximity id %s", d.ProximityID)
		}
		seen[sightingKey(d)] = true
	})

	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, "scanning", sim.Scanning)
	waitFor(t, "all simulated beacons", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) >= sim.Beacons()
	})

	if err := c.Stop(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "stop log", func() bool {
		for _, e := range hook.AllEntries() {
			if e.Message == "Stop scan successfully" {
				return true
			}
		}
		return false
	})
	for _, e := range hook.AllEntries() {
		if e.Level <= logrus.ErrorLevel {
			t.Errorf("unexpected error entry: %s %v", e.Message, e.Data)
		}
	}
}

func TestSimStackSender(t *testing.T) {
	sim := newTestSim()
	defer sim.Close()

	logger, hook := test.NewNullLogger()
	params := beacon.DefaultAdvertisingParams()
	params.IntervalMin, params.IntervalMax = 0xA0, 0xF0
	b := beacon.NewBuilder(logger).SetMode(beacon.Sender).SetAdvertisingParams(params)
	id, err := b.GenerateProximityID()
	if err != nil {
		t.Fatal(err)
	}
	c := beacon.NewController(sim, b.Build(), logger)
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	waitFor(t, "advertising", func() bool {
		_, _, on := sim.OnAir()
		return on
	})
	adv, got, _ := sim.OnAir()
	if got != params {
		t.Errorf("expected params %+v, got %+v", params, got)
	}
	expected, _ := ibeacon.Encode(ibeacon.Beacon{
		ProximityID:   id,
		Major:         10167,
		Minor:         61958,
		MeasuredPower: -59,
	})
	if !bytes.Equal(adv, expected) {
		t.Errorf("expected payload % x, got % x", expected, adv)
	}
	if sim.Scanning() {
		t.Error("sender started scanning")
	}

	if err := c.Stop(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "stop log", func() bool {
		e := hook.LastEntry()
		return e != nil && e.Message == "Stop adv successfully"
	})
}

func TestSimStackEnableFailure(t *testing.T) {
	sim := newTestSim()
	defer sim.Close()
	sim.EnableErr = errors.New("controller init failed")

	c := beacon.NewController(sim, beacon.DefaultConfig(), logrus.New())
	if err := c.Start(); errors.Cause(err) != sim.EnableErr {
		t.Errorf("expected enable error, got %v", err)
	}
}

func TestSimStackRejectsOversizedPayload(t *testing.T) {
	sim := newTestSim()
	defer sim.Close()

	events := make(chan beacon.Event, 4)
	_ = sim.Enable()
	_ = sim.Register(func(ev beacon.Event) { events <- ev })
	if err := sim.SetRawAdvData(make([]byte, 32)); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		done, ok := ev.(beacon.AdvDataSetComplete)
		if !ok || done.Status != ErrPayloadTooLong {
			t.Errorf("expected AdvDataSetComplete with ErrPayloadTooLong, got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no completion event")
	}
}

func TestSimStackNotEnabled(t *testing.T) {
	sim := newTestSim()
	defer sim.Close()

	if err := sim.SetScanParams(beacon.DefaultScanParams()); err != ErrNotEnabled {
		t.Errorf("expected ErrNotEnabled, got %v", err)
	}
	if err := sim.StartAdvertising(beacon.DefaultAdvertisingParams()); err != ErrNotEnabled {
		t.Errorf("expected ErrNotEnabled, got %v", err)
	}
}

func TestParseAddress(t *testing.T) {
	want := beacon.Address{0x24, 0x0A, 0xC4, 0x01, 0x02, 0x03}
	if got := parseAddress("24:0A:C4:01:02:03"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if got := parseAddress("0f5c3a10-9f3d-4a43-9d0b-2b0bd2ab1c3e"); got != (beacon.Address{}) {
		t.Errorf("expected zero address, got %s", got)
	}
}
