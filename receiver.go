package main

import (
	"os"

	"ble-ibeacon.klederson.com/internal/app"
	"ble-ibeacon.klederson.com/internal/beacon"
	"ble-ibeacon.klederson.com/internal/config"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type receiverFlags struct {
	passive      bool
	scanInterval uint16
	scanWindow   uint16
	dedupe       bool
	tui          bool
}

func newReceiverCmd() *cobra.Command {
	var f receiverFlags

	cmd := &cobra.Command{
		Use:   "receiver",
		Short: "Scan for iBeacons and log every packet",
		Long: `Scan continuously and log each iBeacon packet heard: device address,
proximity UUID, major, minor, measured power and RSSI.

With --tui the packets feed a live beacon table instead of the log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReceiver(f)
		},
	}

	cmd.Flags().BoolVar(&f.passive, "passive", false, "Passive scan (no scan requests)")
	cmd.Flags().Uint16Var(&f.scanInterval, "scan-interval", config.ScanInterval, "Scan interval (0.625ms units, 0x4-0x4000)")
	cmd.Flags().Uint16Var(&f.scanWindow, "scan-window", config.ScanWindow, "Scan window (0.625ms units, <= interval)")
	cmd.Flags().BoolVar(&f.dedupe, "dedupe", false, "Filter duplicate advertising reports in the controller")
	cmd.Flags().BoolVar(&f.tui, "tui", false, "Show a live beacon monitor")

	return cmd
}

func runReceiver(f receiverFlags) error {
	log, err := newLogger(f.tui)
	if err != nil {
		return err
	}

	p := beacon.DefaultScanParams()
	p.Interval, p.Window, p.Duplicate = f.scanInterval, f.scanWindow, f.dedupe
	if f.passive {
		p.Type = beacon.ScanPassive
	}
	cfg := beacon.NewBuilder(log).
		SetMode(beacon.Receiver).
		SetScanParams(p).
		Build()

	stack, source := newStack(log)
	c := beacon.NewController(stack, cfg, log)

	if !f.tui {
		runUntilSignal(c, stack, log)
		return nil
	}

	model := app.New(c, source)
	prog := tea.NewProgram(model, tea.WithAltScreen())
	if err := model.Attach(prog, log); err != nil {
		if flagLogFile == "" {
			printStartFailure(os.Stderr, err)
		}
		log.WithError(err).Fatal("iBeacon initialization failed")
	}

	_, err = prog.Run()
	stack.Close()
	return err
}
