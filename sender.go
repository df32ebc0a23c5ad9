package main

import (
	"ble-ibeacon.klederson.com/internal/beacon"
	"ble-ibeacon.klederson.com/internal/config"
	"ble-ibeacon.klederson.com/internal/ibeacon"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type senderFlags struct {
	uuid     string
	autoUUID bool
	major    uint16
	minor    uint16
	power    int8
	advMin   uint16
	advMax   uint16
}

func newSenderCmd() *cobra.Command {
	var f senderFlags

	cmd := &cobra.Command{
		Use:   "sender",
		Short: "Advertise as an iBeacon",
		Long: `Advertise a non-connectable iBeacon until interrupted.

Without --uuid or --auto-uuid the default proximity id
000e0000-0000-0000-0000-000000000000 is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSender(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.uuid, "uuid", "", "Proximity UUID to advertise")
	cmd.Flags().BoolVar(&f.autoUUID, "auto-uuid", false, "Generate a random proximity UUID")
	cmd.Flags().Uint16Var(&f.major, "major", config.DefaultMajor, "Major value")
	cmd.Flags().Uint16Var(&f.minor, "minor", config.DefaultMinor, "Minor value")
	cmd.Flags().Int8Var(&f.power, "power", config.DefaultMeasuredPower, "Measured power at 1m in dBm")
	cmd.Flags().Uint16Var(&f.advMin, "adv-min", config.AdvIntervalMin, "Minimum advertising interval (0.625ms units, 0x20-0x4000)")
	cmd.Flags().Uint16Var(&f.advMax, "adv-max", config.AdvIntervalMax, "Maximum advertising interval (0.625ms units, 0x20-0x4000)")
	cmd.MarkFlagsMutuallyExclusive("uuid", "auto-uuid")

	return cmd
}

func runSender(cmd *cobra.Command, f senderFlags) error {
	log, err := newLogger(false)
	if err != nil {
		return err
	}

	b := beacon.NewBuilder(log).
		SetMode(beacon.Sender).
		SetMajor(f.major).
		SetMinor(f.minor).
		SetMeasuredPower(f.power)

	if cmd.Flags().Changed("adv-min") || cmd.Flags().Changed("adv-max") {
		p := beacon.DefaultAdvertisingParams()
		p.IntervalMin, p.IntervalMax = f.advMin, f.advMax
		b.SetAdvertisingParams(p)
	}

	switch {
	case f.autoUUID:
		if _, err := b.GenerateProximityID(); err != nil {
			return err
		}
	case f.uuid != "":
		id, err := ibeacon.ParseProximityID(f.uuid)
		if err != nil {
			return errors.Wrap(err, "invalid --uuid")
		}
		b.SetProximityID(id)
	}

	stack, _ := newStack(log)
	runUntilSignal(beacon.NewController(stack, b.Build(), log), stack, log)
	return nil
}
