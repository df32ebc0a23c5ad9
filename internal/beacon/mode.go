package beacon

// Mode selects whether the radio transmits or listens for iBeacons. The
// radio cannot do both at once.
type Mode int

const (
	Sender Mode = iota
	Receiver
)

func (m Mode) String() string {
	if m == Receiver {
		return "receiver"
	}
	return "sender"
}

// normalize maps any value other than Receiver to Sender.
func (m Mode) normalize() Mode {
	if m == Receiver {
		return Receiver
	}
	return Sender
}
