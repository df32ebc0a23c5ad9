package ui

import "github.com/charmbracelet/lipgloss"

// ComposeLayout joins the beacon list and detail panel horizontally,
// with menu bar on top and status bar on bottom.
func ComposeLayout(menuBar, beaconList, detail, statusBar string) string {
	middle := lipgloss.JoinHorizontal(lipgloss.Top, beaconList, detail)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar)
}
