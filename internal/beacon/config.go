package beacon

import (
	"ble-ibeacon.klederson.com/internal/config"
	"ble-ibeacon.klederson.com/internal/ibeacon"
	"github.com/sirupsen/logrus"
)

// Config is the immutable run configuration captured by a Controller.
type Config struct {
	Mode        Mode
	Beacon      ibeacon.Beacon
	Advertising AdvertisingParams
	Scan        ScanParams
}

// DefaultConfig is a Sender advertising the default identifier.
func DefaultConfig() Config {
	return Config{
		Mode: Sender,
		Beacon: ibeacon.Beacon{
			ProximityID:   config.DefaultProximityID,
			Major:         config.DefaultMajor,
			Minor:         config.DefaultMinor,
			MeasuredPower: config.DefaultMeasuredPower,
		},
		Advertising: DefaultAdvertisingParams(),
		Scan:        DefaultScanParams(),
	}
}

// Builder collects settings before the radio is started. Setters are
// last-write-wins and do not validate ranges; out-of-range values reach the
// stack unchanged and surface as stack errors.
type Builder struct {
	cfg Config
	log logrus.FieldLogger
}

// NewBuilder starts from DefaultConfig. A nil logger uses the logrus
// standard logger.
func NewBuilder(log logrus.FieldLogger) *Builder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Builder{cfg: DefaultConfig(), log: log}
}

// SetMode selects Sender or Receiver. Unrecognized values select Sender.
func (b *Builder) SetMode(m Mode) *Builder {
	b.cfg.Mode = m.normalize()
	return b
}

func (b *Builder) SetAdvertisingParams(p AdvertisingParams) *Builder {
	b.cfg.Advertising = p
	return b
}

func (b *Builder) SetScanParams(p ScanParams) *Builder {
	b.cfg.Scan = p
	return b
}

// SetProximityID sets the advertised identifier verbatim.
func (b *Builder) SetProximityID(id ibeacon.ProximityID) *Builder {
	b.cfg.Beacon.ProximityID = id
	return b
}

func (b *Builder) SetMajor(v uint16) *Builder {
	b.cfg.Beacon.Major = v
	return b
}

func (b *Builder) SetMinor(v uint16) *Builder {
	b.cfg.Beacon.Minor = v
	return b
}

func (b *Builder) SetMeasuredPower(dbm int8) *Builder {
	b.cfg.Beacon.MeasuredPower = dbm
	return b
}

// GenerateProximityID assigns a random identifier and returns it. The
// identifier is logged so an operator can configure receivers for it.
func (b *Builder) GenerateProximityID() (ibeacon.ProximityID, error) {
	id, err := ibeacon.NewRandomProximityID()
	if err != nil {
		return ibeacon.ProximityID{}, err
	}
	b.cfg.Beacon.ProximityID = id
	b.log.WithField("uuid", id.String()).Info("UUID generated and assigned")
	return id, nil
}

// Build returns a snapshot; later setter calls do not affect it.
func (b *Builder) Build() Config {
	return b.cfg
}
