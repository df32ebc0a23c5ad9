package ibeacon

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ProximityID identifies the owner or application of a beacon. It has the
// shape of a UUID and is transmitted in the order it is written.
type ProximityID [16]byte

// NewRandomProximityID returns a random (version 4) identifier.
func NewRandomProximityID() (ProximityID, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return ProximityID{}, errors.Wrap(err, "generate proximity id")
	}
	return ProximityID(u), nil
}

// ParseProximityID accepts the canonical and bare-hex UUID forms.
func ParseProximityID(s string) (ProximityID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ProximityID{}, errors.Wrapf(err, "parse proximity id %q", s)
	}
	return ProximityID(u), nil
}

func (p ProximityID) String() string {
	return uuid.UUID(p).String()
}

func (p ProximityID) IsZero() bool {
	return p == ProximityID{}
}
