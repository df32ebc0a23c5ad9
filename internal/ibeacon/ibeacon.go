// Package ibeacon encodes and decodes the iBeacon advertising format: a
// flags AD structure followed by Apple manufacturer-specific data carrying a
// proximity identifier, major, minor and the calibrated power at one meter.
package ibeacon

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// CompanyApple is the Bluetooth SIG company identifier owning the format.
	CompanyApple = 0x004C

	// TypeProximity and DataLength are the beacon type and length bytes that
	// open the manufacturer data of every iBeacon.
	TypeProximity = 0x02
	DataLength    = 0x15

	// PacketLength is the size of a raw iBeacon advertising payload.
	PacketLength = 30

	// ManufacturerDataLength is the size of the manufacturer data after the
	// company identifier.
	ManufacturerDataLength = 2 + DataLength
)

// head is the fixed prefix of a raw payload: flags (LE general discoverable,
// BR/EDR not supported), then the manufacturer AD header.
var head = [9]byte{
	0x02, adFlags, 0x06,
	0x1A, adManufacturerData, 0x4C, 0x00,
	TypeProximity, DataLength,
}

var (
	ErrZeroProximityID = errors.New("ibeacon: proximity id is all zero")
	ErrNotIBeacon      = errors.New("ibeacon: not an iBeacon packet")
)

// Beacon is the vendor part of an iBeacon advertisement.
type Beacon struct {
	ProximityID   ProximityID
	Major         uint16
	Minor         uint16
	MeasuredPower int8 // RSSI at 1m, dBm
}

// Encode builds the raw advertising payload for b. Major and minor are
// written big-endian.
func Encode(b Beacon) ([]byte, error) {
	if b.ProximityID.IsZero() {
		return nil, ErrZeroProximityID
	}
	p := make([]byte, 0, PacketLength)
	p = append(p, head[:len(head)-2]...)
	return append(p, EncodeManufacturerData(b)...), nil
}

// EncodeManufacturerData returns the manufacturer data of b without the
// company identifier, the form BLE host APIs usually take.
func EncodeManufacturerData(b Beacon) []byte {
	md := make([]byte, ManufacturerDataLength)
	md[0] = TypeProximity
	md[1] = DataLength
	putVendor(md[2:], b)
	return md
}

func putVendor(p []byte, b Beacon) {
	copy(p[0:16], b.ProximityID[:])
	binary.BigEndian.PutUint16(p[16:18], b.Major)
	binary.BigEndian.PutUint16(p[18:20], b.Minor)
	p[20] = uint8(b.MeasuredPower)
}

// IsPacket reports whether adv is a raw iBeacon advertising payload.
func IsPacket(adv []byte) bool {
	if len(adv) != PacketLength {
		return false
	}
	for i := range head {
		if adv[i] != head[i] {
			return false
		}
	}
	return true
}

// Parse decodes a raw iBeacon advertising payload.
func Parse(adv []byte) (Beacon, error) {
	if !IsPacket(adv) {
		return Beacon{}, ErrNotIBeacon
	}
	return vendor(adv[len(head):]), nil
}

// FromManufacturerData decodes the manufacturer data of a single AD
// structure, as reported by hosts that split advertisements into elements.
func FromManufacturerData(companyID uint16, data []byte) (Beacon, error) {
	if companyID != CompanyApple || len(data) != ManufacturerDataLength ||
		data[0] != TypeProximity || data[1] != DataLength {
		return Beacon{}, ErrNotIBeacon
	}
	return vendor(data[2:]), nil
}

func vendor(p []byte) Beacon {
	var b Beacon
	copy(b.ProximityID[:], p[0:16])
	b.Major = binary.BigEndian.Uint16(p[16:18])
	b.Minor = binary.BigEndian.Uint16(p[18:20])
	b.MeasuredPower = int8(p[20])
	return b
}
