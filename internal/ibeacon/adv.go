package ibeacon

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// MaxPayloadLength is the largest legacy advertising payload.
const MaxPayloadLength = 31

// Advertising data types
const (
	adFlags            = 0x01
	adCompleteName     = 0x09
	adManufacturerData = 0xFF
)

var ErrMalformedAD = errors.New("ibeacon: malformed advertising data")

// ManufacturerElement is one manufacturer-specific AD structure.
type ManufacturerElement struct {
	CompanyID uint16
	Data      []byte
}

// Fields splits a raw advertising payload into (type, value) pairs. A zero
// length byte ends the payload early, as controllers pad with zeroes.
func Fields(adv []byte, fn func(typ byte, value []byte)) error {
	for len(adv) > 0 {
		l := int(adv[0])
		if l == 0 {
			return nil
		}
		if l+1 > len(adv) {
			return ErrMalformedAD
		}
		fn(adv[1], adv[2:l+1])
		adv = adv[l+1:]
	}
	return nil
}

// ManufacturerData returns every manufacturer-specific structure in adv.
func ManufacturerData(adv []byte) ([]ManufacturerElement, error) {
	var out []ManufacturerElement
	err := Fields(adv, func(typ byte, v []byte) {
		if typ != adManufacturerData || len(v) < 2 {
			return
		}
		out = append(out, ManufacturerElement{
			CompanyID: binary.LittleEndian.Uint16(v),
			Data:      v[2:],
		})
	})
	return out, err
}

// Payload assembles a raw advertising payload: the LE flags, an optional
// complete local name and the given manufacturer elements. It is the
// inverse of ManufacturerData for hosts that only report parsed elements.
func Payload(name string, elems ...ManufacturerElement) ([]byte, error) {
	p := []byte{0x02, adFlags, 0x06}
	if name != "" {
		p = append(p, byte(len(name)+1), adCompleteName)
		p = append(p, name...)
	}
	for _, e := range elems {
		p = append(p, byte(len(e.Data)+3), adManufacturerData)
		p = binary.LittleEndian.AppendUint16(p, e.CompanyID)
		p = append(p, e.Data...)
	}
	if len(p) > MaxPayloadLength {
		return nil, errors.Errorf("ibeacon: payload is %d bytes, max %d", len(p), MaxPayloadLength)
	}
	return p, nil
}
