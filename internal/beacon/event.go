package beacon

import (
	"fmt"
	"time"
)

// Event is a lifecycle notification delivered by a Stack. The concrete
// types below are the only variants the Controller acts on.
type Event interface {
	event()
}

// Completion events carry a nil Status on success.
type (
	AdvDataSetComplete    struct{ Status error }
	ScanParamsSetComplete struct{ Status error }
	ScanStartComplete     struct{ Status error }
	AdvStartComplete      struct{ Status error }
	ScanStopComplete      struct{ Status error }
	AdvStopComplete       struct{ Status error }
)

// SearchEvent is the sub-event of a ScanResult.
type SearchEvent uint8

const (
	InquiryResult SearchEvent = iota
	InquiryComplete
	DiscoveryResult
)

// Address is a 48-bit device address, most significant byte first.
type Address [6]byte

func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}

// ScanResult reports one received advertisement.
type ScanResult struct {
	Search  SearchEvent
	Address Address
	RSSI    int16
	AdvData []byte // raw AD structures
}

// UnknownEvent stands for stack events this package does not model.
type UnknownEvent struct {
	Code uint8
}

func (AdvDataSetComplete) event()    {}
func (ScanParamsSetComplete) event() {}
func (ScanStartComplete) event()     {}
func (AdvStartComplete) event()      {}
func (ScanStopComplete) event()      {}
func (AdvStopComplete) event()       {}
func (ScanResult) event()            {}
func (UnknownEvent) event()          {}

// Handler receives stack events. A Stack calls it from a single goroutine,
// one event at a time.
type Handler func(Event)

// Stack is the BLE host stack the Controller drives. Every command returns
// once it has been submitted; its outcome arrives later as an Event.
type Stack interface {
	// Enable brings up the controller and host in LE-only mode.
	Enable() error
	Register(h Handler) error

	SetScanParams(p ScanParams) error
	// StartScanning scans for d, or until StopScanning when d is zero.
	StartScanning(d time.Duration) error
	StopScanning() error

	SetRawAdvData(adv []byte) error
	StartAdvertising(p AdvertisingParams) error
	StopAdvertising() error
}
