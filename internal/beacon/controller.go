// Package beacon runs a BLE radio as an iBeacon sender or receiver. A
// Controller issues the first command to the stack and then reacts to the
// stack's completion events until the radio is advertising or scanning.
package beacon

import (
	"sync/atomic"

	"ble-ibeacon.klederson.com/internal/ibeacon"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrAlreadyStarted = errors.New("beacon: controller already started")
	ErrNotStarted     = errors.New("beacon: controller not started")
)

// Discovered is an iBeacon heard during a scan. It lives for one log record
// and one observer call.
type Discovered struct {
	Address Address
	ibeacon.Beacon
	RSSI int16
}

// Controller owns one radio session. It is started once; settings are
// fixed by the Config it was created with.
type Controller struct {
	stack   Stack
	cfg     Config
	log     logrus.FieldLogger
	onFound func(Discovered)
	started atomic.Bool
}

// NewController creates a controller for cfg. A nil logger uses the logrus
// standard logger.
func NewController(stack Stack, cfg Config, log logrus.FieldLogger) *Controller {
	if log == nil {
		log = logrus.StandardLogger()
	}
	cfg.Mode = cfg.Mode.normalize()
	return &Controller{
		stack: stack,
		cfg:   cfg,
		log:   log.WithField("component", "ibeacon"),
	}
}

// OnDiscovered sets a function called for every iBeacon heard in Receiver
// mode, from the stack's event goroutine. Must be called before Start.
func (c *Controller) OnDiscovered(fn func(Discovered)) {
	c.onFound = fn
}

// Config returns the configuration the controller runs with.
func (c *Controller) Config() Config {
	return c.cfg
}

// Start brings up the stack, registers the event handler and issues the
// first mode-dependent command. Any error leaves the radio unusable and is
// meant to be fatal. A payload that cannot be built is only logged: the
// radio then stays idle.
func (c *Controller) Start() error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	if err := c.stack.Enable(); err != nil {
		return errors.Wrap(err, "enable bluetooth stack")
	}

	c.log.Debug("register callback")
	if err := c.stack.Register(c.handle); err != nil {
		return errors.Wrap(err, "register gap callback")
	}

	if c.cfg.Mode == Receiver {
		c.log.Info("***Receiver Mode***")
		if err := c.stack.SetScanParams(c.cfg.Scan); err != nil {
			return errors.Wrap(err, "set scan params")
		}
		return nil
	}

	c.log.WithField("uuid", c.cfg.Beacon.ProximityID.String()).Info("***Sender Mode***")
	adv, err := ibeacon.Encode(c.cfg.Beacon)
	if err != nil {
		c.log.WithError(err).Error("Config iBeacon data failed")
		return nil
	}
	if err := c.stack.SetRawAdvData(adv); err != nil {
		return errors.Wrap(err, "set raw advertising data")
	}
	return nil
}

// Stop asks the stack to stop advertising or scanning. Completion is
// reported by the matching stop event.
func (c *Controller) Stop() error {
	if !c.started.Load() {
		return ErrNotStarted
	}
	if c.cfg.Mode == Receiver {
		return errors.Wrap(c.stack.StopScanning(), "stop scanning")
	}
	return errors.Wrap(c.stack.StopAdvertising(), "stop advertising")
}

// handle is the stack callback. Every event is handled on its own; events
// that do not apply to the current mode are dropped.
func (c *Controller) handle(ev Event) {
	switch e := ev.(type) {
	case AdvDataSetComplete:
		if c.cfg.Mode != Sender {
			return
		}
		if e.Status != nil {
			c.log.WithError(e.Status).Error("Adv data set failed")
			return
		}
		if err := c.stack.StartAdvertising(c.cfg.Advertising); err != nil {
			c.log.WithError(err).Error("Adv start failed")
		}

	case ScanParamsSetComplete:
		if c.cfg.Mode != Receiver {
			return
		}
		if e.Status != nil {
			c.log.WithError(e.Status).Error("Scan param set failed")
			return
		}
		// zero duration scans until stopped
		if err := c.stack.StartScanning(0); err != nil {
			c.log.WithError(err).Error("Scan start failed")
		}

	case ScanStartComplete:
		if e.Status != nil {
			c.log.WithError(e.Status).Error("Scan start failed")
		}

	case AdvStartComplete:
		if e.Status != nil {
			c.log.WithError(e.Status).Error("Adv start failed")
		}

	case ScanResult:
		if e.Search == InquiryResult {
			c.scanResult(e)
		}

	case ScanStopComplete:
		if e.Status != nil {
			c.log.WithError(e.Status).Error("Scan stop failed")
		} else {
			c.log.Info("Stop scan successfully")
		}

	case AdvStopComplete:
		if e.Status != nil {
			c.log.WithError(e.Status).Error("Adv stop failed")
		} else {
			c.log.Info("Stop adv successfully")
		}
	}
}

func (c *Controller) scanResult(r ScanResult) {
	b, err := ibeacon.Parse(r.AdvData)
	if err != nil {
		c.traceIgnored(r)
		return
	}

	d := Discovered{Address: r.Address, Beacon: b, RSSI: r.RSSI}
	c.log.WithFields(logrus.Fields{
		"address": d.Address.String(),
		"uuid":    d.ProximityID.String(),
		"major":   d.Major,
		"minor":   d.Minor,
		"power":   d.MeasuredPower,
		"rssi":    d.RSSI,
	}).Info("iBeacon found")

	if c.onFound != nil {
		c.onFound(d)
	}
}

func (c *Controller) traceIgnored(r ScanResult) {
	elems, _ := ibeacon.ManufacturerData(r.AdvData)
	if len(elems) == 0 {
		return
	}
	c.log.WithFields(logrus.Fields{
		"address": r.Address.String(),
		"company": ibeacon.CompanyName(elems[0].CompanyID),
	}).Trace("advert is not an iBeacon")
}
