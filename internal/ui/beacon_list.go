package ui

import (
	"fmt"
	"strings"

	"ble-ibeacon.klederson.com/internal/bluetooth"
)

// RenderBeaconList renders the scrollable beacon list panel with a cursor.
// The title stays fixed at the top; only the entries scroll.
func RenderBeaconList(beacons []*bluetooth.Sighting, width, height int, cursorIndex int) string {
	innerW := width - 4
	if innerW < 10 {
		innerW = 10
	}

	title := StylePanelTitle.Render(fmt.Sprintf("BEACONS [%d]", len(beacons)))
	separator := StyleSeparator.Render(strings.Repeat("-", innerW))
	headerLines := []string{title, separator}

	// Total inner height (excluding border top+bottom)
	innerH := height - 2
	if innerH < len(headerLines)+1 {
		innerH = len(headerLines) + 1
	}
	space := innerH - len(headerLines)

	var lines []string
	if len(beacons) == 0 {
		lines = append(lines, "")
		lines = append(lines, StyleHelp.Render(" No iBeacons..."))
		lines = append(lines, StyleHelp.Render(" Waiting for scan"))
	} else {
		linesPerBeacon := 3 // 2 content + 1 blank
		maxVisible := space / linesPerBeacon
		if maxVisible < 1 {
			maxVisible = 1
		}

		// Compute viewport start so cursor is always visible
		viewStart := 0
		if cursorIndex >= maxVisible {
			viewStart = cursorIndex - maxVisible + 1
		}

		for i := viewStart; i < len(beacons) && len(lines) < space; i++ {
			lines = append(lines, renderBeaconEntry(beacons[i], innerW, i == cursorIndex)...)
		}
	}

	if len(lines) > space {
		lines = lines[:space]
	}
	for len(lines) < space {
		lines = append(lines, "")
	}

	all := append(headerLines, lines...)
	rendered := StylePanelBorder.Width(width - 2).Height(innerH).Render(strings.Join(all, "\n"))

	// lipgloss Height() only sets a minimum; clamp overflow.
	outLines := strings.Split(rendered, "\n")
	if len(outLines) > height {
		outLines = outLines[:height]
	}
	return strings.Join(outLines, "\n")
}

func renderBeaconEntry(b *bluetooth.Sighting, maxW int, isCursor bool) []string {
	cursor := "  "
	if isCursor {
		cursor = ">>"
	}
	rssiStr := fmt.Sprintf("%ddBm", int(b.RSSI))
	distStr := fmt.Sprintf("~%.1fm %s", b.Distance, b.Proximity())

	raw1 := truncRaw(fmt.Sprintf("%s %-11s %s  %s", cursor, b.Label(), rssiStr, distStr), maxW)
	raw2 := truncRaw("   "+b.ProximityID.String(), maxW)

	if isCursor {
		return []string{StyleCursorRow.Render(raw1), StyleCursorRow.Render(raw2), ""}
	}

	line1 := fmt.Sprintf("   %s %s  %s",
		StyleBeaconLabel.Render(fmt.Sprintf("%-11s", b.Label())),
		StyleBeaconRSSI.Render(rssiStr),
		StyleBeaconRSSI.Render(distStr))
	line2 := StyleBeaconUUID.Render(raw2)
	return []string{line1, line2, ""}
}

// truncRaw pads or truncates a raw string to exactly w characters.
func truncRaw(s string, w int) string {
	if len(s) > w {
		return s[:w]
	}
	if len(s) < w {
		return s + strings.Repeat(" ", w-len(s))
	}
	return s
}
