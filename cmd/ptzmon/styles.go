package main

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#00D7FF")
	colorText   = lipgloss.Color("#D0D0D0")
	colorDim    = lipgloss.Color("#6C6C6C")
	colorOK     = lipgloss.Color("#5FD75F")
	colorWarn   = lipgloss.Color("#FFAF00")
	colorError  = lipgloss.Color("#FF5F5F")
	colorBar    = lipgloss.Color("#303A40")
)

var (
	styleTitleBar = lipgloss.NewStyle().
			Background(colorBar).
			Foreground(colorAccent).
			Bold(true).
			Padding(0, 1)

	styleStatusBar = lipgloss.NewStyle().
			Background(colorBar).
			Foreground(colorText).
			Padding(0, 1)

	styleHeader = lipgloss.NewStyle().
			Foreground(colorDim).
			Bold(true)

	styleRow = lipgloss.NewStyle().
			Foreground(colorText)

	styleSelected = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	styleDim = lipgloss.NewStyle().
			Foreground(colorDim)

	styleConnected = lipgloss.NewStyle().
			Foreground(colorOK).
			Bold(true)

	styleDisconnected = lipgloss.NewStyle().
				Foreground(colorError).
				Bold(true)

	styleBarFill = lipgloss.NewStyle().
			Foreground(colorAccent)

	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

// phaseStyle colours a tracker phase.
func phaseStyle(phase string) lipgloss.Style {
	switch phase {
	case "tracking", "constant", "accelerating", "decelerating":
		return lipgloss.NewStyle().Foreground(colorOK)
	case "stationary":
		return lipgloss.NewStyle().Foreground(colorAccent)
	case "lost":
		return lipgloss.NewStyle().Foreground(colorWarn)
	default:
		return lipgloss.NewStyle().Foreground(colorDim)
	}
}

// zoneStyle colours an error zone.
func zoneStyle(zone string) lipgloss.Style {
	switch zone {
	case "dead":
		return lipgloss.NewStyle().Foreground(colorDim)
	case "normal":
		return lipgloss.NewStyle().Foreground(colorOK)
	case "urgent":
		return lipgloss.NewStyle().Foreground(colorWarn)
	default:
		return lipgloss.NewStyle().Foreground(colorError)
	}
}
