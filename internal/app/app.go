package app

import (
	"time"

	"ble-ibeacon.klederson.com/internal/beacon"
	"ble-ibeacon.klederson.com/internal/bluetooth"
	"ble-ibeacon.klederson.com/internal/config"
	"ble-ibeacon.klederson.com/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	store      *bluetooth.BeaconStore
	controller *beacon.Controller
}

// AppModel is the root Bubble Tea model of the receiver monitor.
type AppModel struct {
	width  int
	height int

	scanning bool
	source   string
	cursor   int
	received int
	lastErr  string

	shared *shared

	// Cached snapshot
	beacons []*bluetooth.Sighting
}

// New creates a monitor for a receiver controller. source names the radio
// in the menu bar.
func New(c *beacon.Controller, source string) AppModel {
	return AppModel{
		scanning: true,
		source:   source,
		shared: &shared{
			store:      bluetooth.NewBeaconStore(),
			controller: c,
		},
	}
}

// Attach routes the controller's discoveries and the logger's errors into
// p, then starts the controller. Must be called before p.Run().
func (m *AppModel) Attach(p *tea.Program, log *logrus.Logger) error {
	m.shared.controller.OnDiscovered(func(d beacon.Discovered) {
		p.Send(BeaconMsg{d})
	})
	log.AddHook(&logHook{program: p})
	return m.shared.controller.Start()
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		evictCmd(),
	)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		m.beacons = m.shared.store.Snapshot()
		if m.cursor >= len(m.beacons) && len(m.beacons) > 0 {
			m.cursor = len(m.beacons) - 1
		}
		return m, tickCmd()

	case EvictMsg:
		m.shared.store.Evict(config.BeaconTimeout)
		return m, evictCmd()

	case BeaconMsg:
		if m.scanning {
			m.received++
			m.shared.store.Upsert(msg.Discovered)
		}
		return m, nil

	case StackErrorMsg:
		m.lastErr = msg.Error()
		return m, nil
	}

	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		_ = m.shared.controller.Stop()
		return m, tea.Quit

	case "s", "S":
		m.scanning = true

	case "p", "P":
		m.scanning = false

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.beacons)-1 {
			m.cursor++
		}

	case "home":
		m.cursor = 0

	case "end":
		if len(m.beacons) > 0 {
			m.cursor = len(m.beacons) - 1
		}
	}

	return m, nil
}

// Selected returns the beacon under the cursor, or nil.
func (m AppModel) Selected() *bluetooth.Sighting {
	if m.cursor < 0 || m.cursor >= len(m.beacons) {
		return nil
	}
	return m.beacons[m.cursor]
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing iBeacon monitor..."
	}

	bodyH := m.height - 2 // menu + status
	if bodyH < 5 {
		bodyH = 5
	}

	listW := m.width * 2 / 5
	if listW < 30 {
		listW = 30
	}
	detailW := m.width - listW
	if detailW < 24 {
		detailW = 24
	}

	menuBar := ui.RenderMenuBar(m.width, m.source, m.scanning)
	list := ui.RenderBeaconList(m.beacons, listW, bodyH, m.cursor)
	detail := ui.RenderDetailPanel(m.Selected(), detailW, bodyH)
	statusBar := ui.RenderStatusBar(m.width, m.scanning, m.shared.store.Count(), m.received, m.lastErr)

	return ui.ComposeLayout(menuBar, list, detail, statusBar)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(config.TargetFPS), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func evictCmd() tea.Cmd {
	return tea.Tick(config.EvictInterval, func(t time.Time) tea.Msg {
		return EvictMsg(t)
	})
}
