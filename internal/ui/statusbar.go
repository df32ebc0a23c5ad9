package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, scanning bool, tracked, received int, lastErr string) string {
	status := StyleStatusPaused.Render("[PAUSED]")
	if scanning {
		status = StyleStatusScanning.Render("[SCANNING]")
	}

	info := fmt.Sprintf(" Beacons: %d  Packets: %d", tracked, received)
	content := status + StyleStatusBar.Foreground(ColorGreen).Render(info)
	if lastErr != "" {
		content += StyleStatusBar.Foreground(ColorWarning).Render("  " + lastErr)
	}

	gap := width - lipgloss.Width(content) - 2 // horizontal padding
	if gap < 0 {
		gap = 0
	}

	return StyleStatusBar.Width(width).Render(content + strings.Repeat(" ", gap))
}
