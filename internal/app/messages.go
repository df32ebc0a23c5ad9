package app

import (
	"time"

	"ble-ibeacon.klederson.com/internal/beacon"
)

// TickMsg triggers a redraw.
type TickMsg time.Time

// EvictMsg triggers beacon eviction.
type EvictMsg time.Time

// BeaconMsg carries one iBeacon reception from the controller.
type BeaconMsg struct {
	beacon.Discovered
}

// StackErrorMsg reports a failure the controller logged.
type StackErrorMsg struct {
	Message string
	Err     error
}

func (e StackErrorMsg) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}
