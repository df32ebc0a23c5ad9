package config

import "time"

const (
	// iBeacon vendor payload defaults
	DefaultMajor         = 10167 // ESP_MAJOR of the vendor SDK
	DefaultMinor         = 61958 // ESP_MINOR of the vendor SDK
	DefaultMeasuredPower = -59   // RSSI at 1 meter (dBm), 0xC5 on the wire

	// Advertising parameters (units of 0.625 ms)
	AdvIntervalMin = 0x20
	AdvIntervalMax = 0x40

	// Scan parameters (units of 0.625 ms)
	ScanInterval = 0x50
	ScanWindow   = 0x30

	// RSSI to distance estimation
	PathLossExp = 2.5 // Path loss exponent (N)

	// Beacon monitor
	BeaconTimeout  = 30 * time.Second // Remove beacons not heard for this long
	EvictInterval  = 5 * time.Second  // How often to run eviction
	SmoothingAlpha = 0.3              // EMA smoothing factor (30% new, 70% old)
	TargetFPS      = 10               // Monitor redraws per second
	HistoryLen     = 60               // RSSI samples kept per beacon

	// Stack
	EventQueueLen = 64                     // Pending scan results before new ones are dropped
	SimTick       = 500 * time.Millisecond // Simulated stack advert period

	ScanStopRetry   = 10 * time.Millisecond // Pause between attempts to stop a scan still starting
	ScanStopTimeout = 2 * time.Second       // Give up stopping a scan after this long

	// Demo mode
	DemoBeaconMin = 4 // Minimum fake beacons
	DemoBeaconMax = 7 // Maximum fake beacons

	// App
	AppName    = "BLE-IBEACON"
	AppVersion = "1.0"
)

// DefaultProximityID is the identifier advertised when none is configured.
// The vendor payload builder rejects an all-zero identifier, so byte 1 is set.
var DefaultProximityID = [16]byte{0x00, 0x0e}
