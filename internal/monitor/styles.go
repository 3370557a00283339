package monitor

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorAccent = lipgloss.Color("#00A8E8") // Blue
	colorOK     = lipgloss.Color("#43BF6D") // Green
	colorAlert  = lipgloss.Color("#FF5F5F") // Red
	colorText   = lipgloss.Color("#FFFFFF") // White
	colorSubtle = lipgloss.Color("#626262") // Gray
	colorBorder = lipgloss.Color("#3C6E91") // Steel blue
)

// Dashboard styles
var (
	// Device name in the header
	titleStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	// Secondary header text (address, stream state)
	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	// Bordered container for each dashboard section
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	// Section heading inside a panel
	panelTitleStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	// Active detector / recording-in-progress highlight
	okStyle = lipgloss.NewStyle().Foreground(colorOK).Bold(true)

	// Raised detector and error text
	alertStyle = lipgloss.NewStyle().Foreground(colorAlert).Bold(true)

	// De-emphasized values (idle detectors, placeholders)
	subtleStyle = lipgloss.NewStyle().Foreground(colorSubtle)

	// Loading spinner
	spinnerStyle = lipgloss.NewStyle().Foreground(colorAccent)

	// Help bar at the bottom of the screen
	helpStyle = lipgloss.NewStyle().
			Foreground(colorSubtle).
			Padding(1, 0, 0, 2)

	// Full-screen fatal error box
	errorBoxStyle = lipgloss.NewStyle().
			Foreground(colorAlert).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAlert).
			Padding(1, 2)
)
