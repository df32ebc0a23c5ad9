package bluetooth

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"ble-ibeacon.klederson.com/internal/beacon"
	"ble-ibeacon.klederson.com/internal/ibeacon"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"
)

var errNoScan = errors.New("bluetooth: there is no scan in progress")

// fakeHost behaves like a host whose Scan takes a while to get going: until
// it does, StopScan reports that no scan is in progress.
type fakeHost struct {
	enterDelay time.Duration

	mu        sync.Mutex
	entered   bool
	stopped   bool
	stopCalls int
	release   chan struct{}
}

func newFakeHost(enterDelay time.Duration) *fakeHost {
	return &fakeHost{enterDelay: enterDelay, release: make(chan struct{})}
}

func (h *fakeHost) Enable() error { return nil }

func (h *fakeHost) Scan(func(*bluetooth.Adapter, bluetooth.ScanResult)) error {
	time.Sleep(h.enterDelay)
	h.mu.Lock()
	h.entered = true
	h.mu.Unlock()
	<-h.release
	return nil
}

func (h *fakeHost) StopScan() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopCalls++
	if !h.entered || h.stopped {
		return errNoScan
	}
	h.stopped = true
	close(h.release)
	return nil
}

func (h *fakeHost) DefaultAdvertisement() *bluetooth.Advertisement { return nil }

func TestAdapterStopBeforeHostScanStarted(t *testing.T) {
	host := newFakeHost(30 * time.Millisecond)
	s := newAdapterStack(host, logrus.New())
	defer s.Close()

	var mu sync.Mutex
	var got []beacon.Event
	_ = s.Register(func(ev beacon.Event) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})
	if err := s.Enable(); err != nil {
		t.Fatal(err)
	}
	if err := s.StartScanning(0); err != nil {
		t.Fatal(err)
	}
	if err := s.StopScanning(); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "scan to end", func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return !s.scanning
	})
	waitFor(t, "2 events", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 2
	})

	host.mu.Lock()
	stopped, calls := host.stopped, host.stopCalls
	host.mu.Unlock()
	if !stopped {
		t.Fatal("host scan still running")
	}
	if calls < 2 {
		t.Errorf("expected the stop to be retried, got %d call(s)", calls)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("expected start and stop events only, got %+v", got)
	}
	stop, ok := got[1].(beacon.ScanStopComplete)
	if !ok || stop.Status != nil {
		t.Errorf("expected successful ScanStopComplete, got %+v", got[1])
	}
}

func TestPayloadFromElements(t *testing.T) {
	b := ibeacon.Beacon{ProximityID: ibeacon.ProximityID{0xFD, 0xA5}, Major: 3, Minor: 4, MeasuredPower: -61}
	want, _ := ibeacon.Encode(b)
	apple := ibeacon.ManufacturerElement{CompanyID: ibeacon.CompanyApple, Data: ibeacon.EncodeManufacturerData(b)}
	other := ibeacon.ManufacturerElement{CompanyID: 0x0059, Data: []byte{1, 2, 3}}

	if got := payloadFromElements([]ibeacon.ManufacturerElement{other, apple}); !bytes.Equal(got, want) {
		t.Errorf("iBeacon next to other data: expected % x, got % x", want, got)
	}

	got := payloadFromElements([]ibeacon.ManufacturerElement{other})
	if ibeacon.IsPacket(got) {
		t.Error("non-beacon data rebuilt as an iBeacon")
	}
	elems, err := ibeacon.ManufacturerData(got)
	if err != nil || len(elems) != 1 || elems[0].CompanyID != 0x0059 {
		t.Errorf("unexpected rebuilt payload % x (%v)", got, err)
	}
}
