package bluetooth

import (
	"fmt"
	"math"
	"time"

	"ble-ibeacon.klederson.com/internal/beacon"
)

// Sighting is what the monitor knows about one beacon.
type Sighting struct {
	beacon.Discovered
	Key       string
	RSSI      float64 // smoothed
	Distance  float64 // Estimated distance in meters
	FirstSeen time.Time
	LastSeen  time.Time
	Count     int
	History   []float64 // raw RSSI, oldest first; filled in snapshots

	history *rssiWindow
}

// sightingKey identifies a beacon by what it advertises, so an advertiser
// rotating its address is still one beacon.
func sightingKey(d beacon.Discovered) string {
	return fmt.Sprintf("%s/%d/%d", d.ProximityID, d.Major, d.Minor)
}

// Label is a short display name, "major.minor".
func (s *Sighting) Label() string {
	return fmt.Sprintf("%d.%d", s.Major, s.Minor)
}

// Proximity buckets the distance the way iBeacon receivers usually report it.
func (s *Sighting) Proximity() string {
	switch {
	case s.Distance < 0.5:
		return "immediate"
	case s.Distance < 4:
		return "near"
	default:
		return "far"
	}
}

// RSSIToDistance estimates distance from RSSI using the log-distance path loss model.
// Formula: d = 10^((measuredPower - rssi) / (10 * n))
func RSSIToDistance(rssi, measuredPower, pathLossExp float64) float64 {
	if rssi >= 0 {
		return 0.1
	}
	d := math.Pow(10, (measuredPower-rssi)/(10*pathLossExp))
	if d < 0.1 {
		return 0.1
	}
	return d
}
