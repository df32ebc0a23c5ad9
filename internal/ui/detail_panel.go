package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"ble-ibeacon.klederson.com/internal/bluetooth"
	"github.com/charmbracelet/lipgloss"
)

// RenderDetailPanel renders everything known about the selected beacon.
// A nil beacon renders an empty panel with a hint.
func RenderDetailPanel(b *bluetooth.Sighting, width, height int) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}

	title := StylePanelTitle.Render("BEACON DETAIL")
	sep := StyleSeparator.Render(strings.Repeat("-", innerW))
	lines := []string{title, sep, ""}

	if b == nil {
		lines = append(lines, StyleHelp.Render("  Select a beacon with up/down"))
		return panel(lines, width, height)
	}

	labelSty := lipgloss.NewStyle().Foreground(ColorMidGreen)
	valSty := lipgloss.NewStyle().Foreground(ColorMatrixGreen).Bold(true)

	fields := []struct{ label, value string }{
		{"UUID", b.ProximityID.String()},
		{"Major", fmt.Sprintf("0x%04x (%d)", b.Major, b.Major)},
		{"Minor", fmt.Sprintf("0x%04x (%d)", b.Minor, b.Minor)},
		{"Power", fmt.Sprintf("%d dBm @1m", b.MeasuredPower)},
		{"Address", b.Address.String()},
		{"RSSI", fmt.Sprintf("%d dBm", int(b.RSSI))},
		{"Distance", fmt.Sprintf("~%.1fm (%s)", b.Distance, b.Proximity())},
		{"Packets", fmt.Sprintf("%d", b.Count)},
		{"First", formatSeen(b.FirstSeen)},
		{"Last", formatSeen(b.LastSeen)},
	}
	for _, f := range fields {
		lines = append(lines, labelSty.Render(fmt.Sprintf("  %-10s", f.label))+valSty.Render(f.value))
	}
	lines = append(lines, "")

	barWidth := innerW - 22
	if barWidth < 10 {
		barWidth = 10
	}
	lines = append(lines, labelSty.Render("  Signal ")+renderSignalBar(b.RSSI, barWidth))
	lines = append(lines, "")

	if len(b.History) > 0 {
		sparkW := innerW - 4
		if sparkW < 10 {
			sparkW = 10
		}
		lines = append(lines, labelSty.Render("  RSSI History:"))
		lines = append(lines, "  "+lipgloss.NewStyle().Foreground(ColorGreen).Render(renderSparkline(b.History, sparkW)))
	}

	return panel(lines, width, height)
}

func panel(lines []string, width, height int) string {
	for len(lines) < height-2 {
		lines = append(lines, "")
	}
	if len(lines) > height-2 && height > 2 {
		lines = lines[:height-2]
	}
	return StylePanelActive.Width(width - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}

func renderSignalBar(rssi float64, width int) string {
	// Map RSSI -100..-30 to 0..width filled bars
	ratio := (rssi + 100.0) / 70.0
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(math.Round(ratio * float64(width)))

	bar := strings.Repeat("|", filled) + strings.Repeat("-", width-filled)
	filledPart := lipgloss.NewStyle().Foreground(lipgloss.Color(proximityColor(rssi))).Render(bar[:filled])
	emptyPart := lipgloss.NewStyle().Foreground(ColorDimGreen).Render(bar[filled:])
	return StyleHelp.Render("[") + filledPart + emptyPart + StyleHelp.Render("]")
}

func renderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	chars := []byte{'_', '.', '-', '~', '^'}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	rng := maxV - minV
	if rng < 1 {
		rng = 1
	}

	// Take last `width` values
	start := 0
	if len(values) > width {
		start = len(values) - width
	}

	var sb strings.Builder
	for _, v := range values[start:] {
		idx := int((v - minV) / rng * float64(len(chars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		sb.WriteByte(chars[idx])
	}
	return sb.String()
}

func formatSeen(t time.Time) string {
	d := time.Since(t)
	if d < time.Second {
		return "now"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm ago", int(d.Minutes()))
}
