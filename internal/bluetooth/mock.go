package bluetooth

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"ble-ibeacon.klederson.com/internal/beacon"
	"ble-ibeacon.klederson.com/internal/config"
	"ble-ibeacon.klederson.com/internal/ibeacon"
)

// demoDeployment is the proximity id shared by the simulated beacons.
var demoDeployment = ibeacon.ProximityID{
	0xFD, 0xA5, 0x06, 0x93, 0xA4, 0xE2, 0x4F, 0xB1,
	0xAF, 0xCF, 0xC6, 0xEB, 0x07, 0x64, 0x78, 0x25,
}

var simBeaconTemplates = []struct {
	Major, Minor uint16
	Power        int8
}{
	{1, 1, -59},
	{1, 2, -59},
	{1, 3, -62},
	{2, 1, -65},
	{2, 2, -56},
	{3, 1, -59},
	{3, 7, -70},
	{10167, 61958, -59},
}

// Adverts that must not be reported as beacons.
var simNoiseCompanies = []uint16{0x0006, 0x0075, 0x00E0, 0x0059}

type simAdvertiser struct {
	addr      beacon.Address
	adv       []byte
	baseRSSI  float64
	phase     float64
	amplitude float64
	active    bool
}

// SimStack is a Stack without hardware. While scanning it reports a set of
// fake beacons nearby, plus unrelated adverts; while advertising it records
// what would be on air.
type SimStack struct {
	events  *dispatcher
	rng     *rand.Rand
	tick    time.Duration
	// chance per tick that a device walks in or out of range
	flicker float64

	mu          sync.Mutex
	enabled     bool
	nearby      []simAdvertiser
	cancel      context.CancelFunc
	advData     []byte
	advParams   beacon.AdvertisingParams
	advertising bool
	scan        beacon.ScanParams

	// EnableErr, when set, is returned by Enable.
	EnableErr error
}

// NewSimStack creates a simulated radio with random fake beacons around it.
// A nil rng uses a time-seeded source.
func NewSimStack(rng *rand.Rand) *SimStack {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &SimStack{
		events:  newDispatcher(),
		rng:     rng,
		tick:    config.SimTick,
		flicker: 0.005,
	}

	n := config.DemoBeaconMin + rng.Intn(config.DemoBeaconMax-config.DemoBeaconMin+1)
	for _, i := range rng.Perm(len(simBeaconTemplates))[:n] {
		t := simBeaconTemplates[i]
		adv, _ := ibeacon.Encode(ibeacon.Beacon{
			ProximityID:   demoDeployment,
			Major:         t.Major,
			Minor:         t.Minor,
			MeasuredPower: t.Power,
		})
		s.nearby = append(s.nearby, s.newAdvertiser(adv))
	}
	for _, c := range simNoiseCompanies {
		data := make([]byte, 4+rng.Intn(8))
		rng.Read(data)
		adv, _ := ibeacon.Payload("", ibeacon.ManufacturerElement{CompanyID: c, Data: data})
		s.nearby = append(s.nearby, s.newAdvertiser(adv))
	}
	return s
}

func (s *SimStack) newAdvertiser(adv []byte) simAdvertiser {
	var addr beacon.Address
	s.rng.Read(addr[:])
	return simAdvertiser{
		addr:      addr,
		adv:       adv,
		baseRSSI:  -45 - s.rng.Float64()*45, // -45 to -90 dBm
		phase:     s.rng.Float64() * 2 * math.Pi,
		amplitude: 3 + s.rng.Float64()*8, // 3-11 dBm fluctuation
		active:    true,
	}
}

// SetTick changes how often nearby devices advertise. Must be called before
// scanning starts.
func (s *SimStack) SetTick(d time.Duration) {
	s.tick = d
}

func (s *SimStack) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.EnableErr != nil {
		return s.EnableErr
	}
	s.enabled = true
	return nil
}

func (s *SimStack) Register(h beacon.Handler) error {
	s.events.register(h)
	return nil
}

func (s *SimStack) SetScanParams(p beacon.ScanParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return ErrNotEnabled
	}
	s.scan = p
	s.events.post(beacon.ScanParamsSetComplete{})
	return nil
}

func (s *SimStack) StartScanning(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return ErrNotEnabled
	}
	if s.cancel != nil || s.advertising {
		s.events.post(beacon.ScanStartComplete{Status: ErrBusy})
		return nil
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if d > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), d)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	s.cancel = cancel
	go s.loop(ctx)

	s.events.post(beacon.ScanStartComplete{})
	return nil
}

func (s *SimStack) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	t := 0.0
	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				_ = s.StopScanning()
			}
			return
		case <-ticker.C:
			t += s.tick.Seconds()
			s.emit(t)
		}
	}
}

func (s *SimStack) emit(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.nearby {
		a := &s.nearby[i]

		// Randomly toggle visibility (walk in/out of range)
		if s.rng.Float64() < s.flicker {
			a.active = !a.active
		}
		if !a.active {
			continue
		}

		// Sinusoidal RSSI fluctuation + noise
		rssi := a.baseRSSI + a.amplitude*math.Sin(t*0.5+a.phase) + (s.rng.Float64()-0.5)*4

		s.events.post(beacon.ScanResult{
			Search:  beacon.InquiryResult,
			Address: a.addr,
			RSSI:    int16(rssi),
			AdvData: append([]byte(nil), a.adv...),
		})
	}
}

func (s *SimStack) StopScanning() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		s.events.post(beacon.ScanStopComplete{Status: ErrNotRunning})
		return nil
	}
	s.cancel()
	s.cancel = nil
	s.events.post(beacon.ScanStopComplete{})
	return nil
}

func (s *SimStack) SetRawAdvData(adv []byte) error {
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

func (s *SimStack) StartAdvertising(p beacon.AdvertisingParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return ErrNotEnabled
	}
	switch {
	case s.advData == nil:
		s.events.post(beacon.AdvStartComplete{Status: ErrNoAdvData})
	case s.cancel != nil || s.advertising:
		s.events.post(beacon.AdvStartComplete{Status: ErrBusy})
	default:
		s.advParams = p
		s.advertising = true
		s.events.post(beacon.AdvStartComplete{})
	}
	return nil
}

func (s *SimStack) StopAdvertising() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.advertising {
		s.events.post(beacon.AdvStopComplete{Status: ErrNotRunning})
		return nil
	}
	s.advertising = false
	s.events.post(beacon.AdvStopComplete{})
	return nil
}

// OnAir returns the payload and parameters being advertised, and whether
// advertising is running.
func (s *SimStack) OnAir() ([]byte, beacon.AdvertisingParams, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.advData...), s.advParams, s.advertising
}

// Scanning reports whether a scan is running.
func (s *SimStack) Scanning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Beacons returns how many simulated iBeacons are nearby.
func (s *SimStack) Beacons() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.nearby {
		if ibeacon.IsPacket(s.nearby[i].adv) {
			n++
		}
	}
	return n
}

// Close stops scanning and event delivery.
func (s *SimStack) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.events.close()
}
