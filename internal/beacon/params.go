package beacon

import "ble-ibeacon.klederson.com/internal/config"

// AdvType is the advertising PDU type.
type AdvType uint8

const (
	AdvInd AdvType = iota
	AdvDirectIndHigh
	AdvScanInd
	AdvNonConnInd
	AdvDirectIndLow
)

// AddrType is the own-address type used on air.
type AddrType uint8

const (
	AddrPublic AddrType = iota
	AddrRandom
	AddrRPAPublic
	AddrRPARandom
)

// ChannelMap selects the primary advertising channels.
type ChannelMap uint8

const (
	Channel37  ChannelMap = 0x01
	Channel38  ChannelMap = 0x02
	Channel39  ChannelMap = 0x04
	ChannelAll ChannelMap = 0x07
)

// AdvFilterPolicy restricts who may scan or connect.
type AdvFilterPolicy uint8

const (
	AdvFilterAllowScanAnyConAny AdvFilterPolicy = iota
	AdvFilterAllowScanWlstConAny
	AdvFilterAllowScanAnyConWlst
	AdvFilterAllowScanWlstConWlst
)

// AdvertisingParams are handed to the stack when advertising starts.
// Intervals are in units of 0.625 ms, range 0x0020 to 0x4000, and are not
// validated here.
type AdvertisingParams struct {
	IntervalMin  uint16
	IntervalMax  uint16
	Type         AdvType
	OwnAddrType  AddrType
	ChannelMap   ChannelMap
	FilterPolicy AdvFilterPolicy
}

// DefaultAdvertisingParams: non-connectable, every 20-40 ms on all channels.
func DefaultAdvertisingParams() AdvertisingParams {
	return AdvertisingParams{
		IntervalMin:  config.AdvIntervalMin,
		IntervalMax:  config.AdvIntervalMax,
		Type:         AdvNonConnInd,
		OwnAddrType:  AddrPublic,
		ChannelMap:   ChannelAll,
		FilterPolicy: AdvFilterAllowScanAnyConAny,
	}
}

// ScanType is passive (listen only) or active (send scan requests).
type ScanType uint8

const (
	ScanPassive ScanType = iota
	ScanActive
)

// ScanFilterPolicy selects which advertisers are reported.
type ScanFilterPolicy uint8

const (
	ScanFilterAllowAll ScanFilterPolicy = iota
	ScanFilterAllowOnlyWlst
	ScanFilterAllowUndirectedRPADir
	ScanFilterAllowWlistRPADir
)

// ScanParams are handed to the stack before scanning. Interval and window
// are in units of 0.625 ms; window should not exceed interval.
type ScanParams struct {
	Type         ScanType
	OwnAddrType  AddrType
	FilterPolicy ScanFilterPolicy
	Interval     uint16
	Window       uint16
	Duplicate    bool // filter duplicate reports in the controller
}

func DefaultScanParams() ScanParams {
	return ScanParams{
		Type:         ScanActive,
		OwnAddrType:  AddrPublic,
		FilterPolicy: ScanFilterAllowAll,
		Interval:     config.ScanInterval,
		Window:       config.ScanWindow,
		Duplicate:    false,
	}
}
