package bluetooth

import (
	"net"
	"sync"
	"time"

	"ble-ibeacon.klederson.com/internal/beacon"
	"ble-ibeacon.klederson.com/internal/config"
	"ble-ibeacon.klederson.com/internal/ibeacon"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"
)

// hostAdapter is the part of *bluetooth.Adapter the stack uses.
type hostAdapter interface {
	Enable() error
	Scan(callback func(*bluetooth.Adapter, bluetooth.ScanResult)) error
	StopScan() error
	DefaultAdvertisement() *bluetooth.Advertisement
}

// AdapterStack drives a real BLE adapter through tinygo.org/x/bluetooth.
// The library's calls are synchronous; their outcomes are turned into
// completion events delivered on the stack's event goroutine.
type AdapterStack struct {
	adapter hostAdapter
	events  *dispatcher
	log     logrus.FieldLogger

	mu        sync.Mutex
	enabled   bool
	scanning  bool
	stopping  bool
	scanEnded chan struct{}
	advData   []byte
	scan      beacon.ScanParams
	adv       *bluetooth.Advertisement
}

// NewAdapterStack wraps the system default adapter.
func NewAdapterStack(log logrus.FieldLogger) *AdapterStack {
	return newAdapterStack(bluetooth.DefaultAdapter, log)
}

func newAdapterStack(a hostAdapter, log logrus.FieldLogger) *AdapterStack {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AdapterStack{
		adapter: a,
		events:  newDispatcher(),
		log:     log.WithField("component", "adapter"),
	}
}

func (s *AdapterStack) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled {
		return nil
	}
	if err := s.adapter.Enable(); err != nil {
		return errors.Wrap(err, "failed to enable BLE adapter (try running with sudo or setcap cap_net_admin+ep)")
	}
	s.enabled = true
	return nil
}

func (s *AdapterStack) Register(h beacon.Handler) error {
	if h == nil {
		return errors.New("nil handler")
	}
	s.events.register(h)
	return nil
}

// SetScanParams records p. The host library picks its own timing and
// duplicate filtering, so the values are advisory.
func (s *AdapterStack) SetScanParams(p beacon.ScanParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return ErrNotEnabled
	}
	s.scan = p
	s.log.WithFields(logrus.Fields{
		"interval": p.Interval,
		"window":   p.Window,
		"active":   p.Type == beacon.ScanActive,
	}).Debug("scan params recorded")
	s.events.post(beacon.ScanParamsSetComplete{})
	return nil
}

func (s *AdapterStack) StartScanning(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return ErrNotEnabled
	}
	if s.scanning {
		s.events.post(beacon.ScanStartComplete{Status: ErrBusy})
		return nil
	}
	s.scanning = true
	s.stopping = false
	s.scanEnded = make(chan struct{})

	go s.scanLoop(s.scanEnded)
	if d > 0 {
		time.AfterFunc(d, func() { _ = s.StopScanning() })
	}
	s.events.post(beacon.ScanStartComplete{})
	return nil
}

func (s *AdapterStack) scanLoop(ended chan struct{}) {
	defer close(ended)
	err := s.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		s.events.post(beacon.ScanResult{
			Search:  beacon.InquiryResult,
			Address: parseAddress(result.Address.String()),
			RSSI:    result.RSSI,
			AdvData: rawPayload(result),
		})
	})

	s.mu.Lock()
	stopped := s.stopping
	s.scanning = false
	s.mu.Unlock()

	// A scan ending without StopScanning is reported as a failed stop.
	if !stopped {
		if err == nil {
			err = ErrNotRunning
		}
		s.events.post(beacon.ScanStopComplete{Status: errors.Wrap(err, "scan ended")})
	}
}

func (s *AdapterStack) StopScanning() error {
	s.mu.Lock()
	if !s.scanning {
		s.mu.Unlock()
		s.events.post(beacon.ScanStopComplete{Status: ErrNotRunning})
		return nil
	}
	s.stopping = true
	ended := s.scanEnded
	s.mu.Unlock()

	s.events.post(beacon.ScanStopComplete{Status: s.stopScan(ended)})
	return nil
}

// stopScan stops the host scan. The scan goroutine may not have entered the
// host's Scan yet, in which case the host reports no scan in progress; the
// stop is retried until the scan ends or config.ScanStopTimeout passes.
func (s *AdapterStack) stopScan(ended <-chan struct{}) error {
	timeout := time.NewTimer(config.ScanStopTimeout)
	defer timeout.Stop()
	for {
		err := s.adapter.StopScan()
		if err == nil {
			return nil
		}
		select {
		case <-ended:
			return nil
		case <-timeout.C:
			return errors.Wrap(err, "stop scan")
		case <-time.After(config.ScanStopRetry):
		}
	}
}

func (s *AdapterStack) SetRawAdvData(adv []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return ErrNotEnabled
	}
	if len(adv) > ibeacon.MaxPayloadLength {
		s.events.post(beacon.AdvDataSetComplete{Status: ErrPayloadTooLong})
		return nil
	}
	s.advData = append([]byte(nil), adv...)
	s.events.post(beacon.AdvDataSetComplete{})
	return nil
}

// StartAdvertising advertises the manufacturer data of the raw payload at
// IntervalMin. The library adds the flags structure itself; the other
// parameters have no counterpart in its API.
func (s *AdapterStack) StartAdvertising(p beacon.AdvertisingParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return ErrNotEnabled
	}
	if s.advData == nil {
		s.events.post(beacon.AdvStartComplete{Status: ErrNoAdvData})
		return nil
	}

	elems, err := ibeacon.ManufacturerData(s.advData)
	if err != nil {
		s.events.post(beacon.AdvStartComplete{Status: err})
		return nil
	}
	opts := bluetooth.AdvertisementOptions{
		Interval: bluetooth.NewDuration(time.Duration(p.IntervalMin) * 625 * time.Microsecond),
	}
	for _, e := range elems {
		opts.ManufacturerData = append(opts.ManufacturerData, bluetooth.ManufacturerDataElement{
			CompanyID: e.CompanyID,
			Data:      e.Data,
		})
	}

	adv := s.adapter.DefaultAdvertisement()
	if err := adv.Configure(opts); err != nil {
		s.events.post(beacon.AdvStartComplete{Status: errors.Wrap(err, "configure advertisement")})
		return nil
	}
	if err := adv.Start(); err != nil {
		s.events.post(beacon.AdvStartComplete{Status: errors.Wrap(err, "start advertisement")})
		return nil
	}
	s.adv = adv
	s.events.post(beacon.AdvStartComplete{})
	return nil
}

func (s *AdapterStack) StopAdvertising() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adv == nil {
		s.events.post(beacon.AdvStopComplete{Status: ErrNotRunning})
		return nil
	}
	err := s.adv.Stop()
	if err == nil {
		s.adv = nil
	}
	s.events.post(beacon.AdvStopComplete{Status: err})
	return nil
}

// Close stops event delivery. Call it after the last stop event arrived.
func (s *AdapterStack) Close() {
	s.events.close()
}

// rawPayload returns the advertisement bytes when the host reports them and
// otherwise rebuilds them from the parsed manufacturer data.
func rawPayload(r bluetooth.ScanResult) []byte {
	if b := r.AdvertisementPayload.Bytes(); len(b) > 0 {
		return b
	}
	var elems []ibeacon.ManufacturerElement
	for _, m := range r.ManufacturerData() {
		elems = append(elems, ibeacon.ManufacturerElement{CompanyID: m.CompanyID, Data: m.Data})
	}
	return payloadFromElements(elems)
}

// payloadFromElements rebuilds a raw payload. An iBeacon element yields the
// canonical iBeacon packet even when the host also reported other elements
// of the same advertisement.
func payloadFromElements(elems []ibeacon.ManufacturerElement) []byte {
	for _, e := range elems {
		b, err := ibeacon.FromManufacturerData(e.CompanyID, e.Data)
		if err != nil {
			continue
		}
		if p, err := ibeacon.Encode(b); err == nil {
			return p
		}
	}
	p, err := ibeacon.Payload("", elems...)
	if err != nil {
		return nil
	}
	return p
}

// parseAddress reads "AA:BB:CC:DD:EE:FF". Hosts that hide addresses behind
// other identifiers yield the zero address.
func parseAddress(s string) beacon.Address {
	var a beacon.Address
	hw, err := net.ParseMAC(s)
	if err != nil || len(hw) != len(a) {
		return a
	}
	copy(a[:], hw)
	return a
}
