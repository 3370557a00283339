package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jacobrsyntaxindustries/sunapi-go/pkg/sunapi"
)

// View renders the dashboard
func (m Model) View() string {
	if m.fatalErr != nil {
		return m.renderFatal()
	}
	if !m.loaded {
		return fmt.Sprintf("\n  %s Connecting to %s...\n", m.spinner.View(), m.client.Config().Host)
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, m.renderIdentityPanel(), m.renderStatusPanel())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		top,
		m.renderFeedPanel(),
		helpStyle.Render(m.help.View(m.keys)),
	)
}

func (m Model) renderHeader() string {
	cfg := m.client.Config()

	name := "Device"
	if m.info != nil && m.info.DeviceName != "" {
		name = m.info.DeviceName
	}

	title := titleStyle.Render(" " + name)
	addr := subtitleStyle.Render(fmt.Sprintf("%s://%s:%d", cfg.Protocol, cfg.Host, cfg.Port))
	return lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", addr)
}

func (m Model) renderIdentityPanel() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Device") + "\n")
	if m.infoErr != "" {
		b.WriteString(alertStyle.Render("! "+m.infoErr) + "\n")
	}
	if m.info != nil {
		fmt.Fprintf(&b, "Model     %s\n", m.info.Model)
		fmt.Fprintf(&b, "Serial    %s\n", m.info.SerialNumber)
		fmt.Fprintf(&b, "Firmware  %s\n", m.info.FirmwareVersion)
		fmt.Fprintf(&b, "MAC       %s\n", m.info.MACAddress)
		fmt.Fprintf(&b, "Uptime    %s\n", formatUptime(m.info.Uptime))
	}
	if m.clock != nil {
		fmt.Fprintf(&b, "Clock     %s (%s)\n", m.clock.Time.Format("15:04:05"), m.clock.SyncMode)
	} else if m.clockErr != "" {
		b.WriteString(subtleStyle.Render("clock: "+m.clockErr) + "\n")
	}
	return panelStyle.Width(m.panelWidth()).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderStatusPanel() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Detectors") + "\n")
	if m.detectErr != "" {
		b.WriteString(alertStyle.Render("! "+m.detectErr) + "\n")
	}
	if m.detectors != nil {
		fmt.Fprintf(&b, "Motion       %s\n", renderToggle(m.detectors.Motion))
		fmt.Fprintf(&b, "Tampering    %s\n", renderToggle(m.detectors.Tampering))
		fmt.Fprintf(&b, "Alarm input  %s\n", renderToggle(m.detectors.AlarmInput))
		if !m.detectors.Time.IsZero() {
			fmt.Fprintf(&b, "Last event   %s\n", m.detectors.Time.Format("15:04:05"))
		}
	}

	b.WriteString("\n" + panelTitleStyle.Render("Recording") + "\n")
	if m.recordErr != "" {
		b.WriteString(alertStyle.Render("! "+m.recordErr) + "\n")
	}
	if m.recording != nil {
		state := subtleStyle.Render("stopped")
		if m.recording.Recording {
			state = okStyle.Render("recording (" + m.recording.Mode + ")")
		}
		fmt.Fprintf(&b, "Channel %d    %s\n", m.recording.Channel, state)
	}
	return panelStyle.Width(m.panelWidth()).Render(strings.TrimRight(b.String(), "\n"))
}

func renderToggle(active bool) string {
	if active {
		return alertStyle.Render("ACTIVE")
	}
	return subtleStyle.Render("idle")
}

func (m Model) renderFeedPanel() string {
	header := lipgloss.JoinHorizontal(
		lipgloss.Bottom,
		panelTitleStyle.Render(" Events"),
		" ",
		subtitleStyle.Render("("+m.streamState+")"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, panelStyle.Render(m.feed.View()))
}

// renderFeed renders the event list, oldest first, for the viewport.
func (m Model) renderFeed() string {
	if len(m.events) == 0 {
		return subtleStyle.Render("Waiting for events...")
	}

	var b strings.Builder
	for _, ev := range m.events {
		state := subtleStyle.Render("cleared")
		if ev.Active {
			state = alertStyle.Render("raised")
		}
		fmt.Fprintf(&b, "%s  ch%d  %-18s %s\n", ev.Time.Format("15:04:05"), ev.Channel, ev.Type, state)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderFatal renders the full-screen panel for an authentication failure
// that re-polling cannot fix.
func (m Model) renderFatal() string {
	content := "✗ " + sunapi.GetShortErrorMessage(m.fatalErr) +
		"\n\n" + sunapi.GetTroubleshootingHint(m.fatalErr) +
		"\n\nPress q to quit."
	box := errorBoxStyle.Render(content)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

func (m Model) panelWidth() int {
	if m.width == 0 {
		return 40
	}
	w := (m.width - 6) / 2
	if w < 30 {
		w = 30
	}
	return w
}

// formatUptime renders an uptime in seconds as "3d 4h 12m"
func formatUptime(seconds int) string {
	if seconds <= 0 {
		return "unknown"
	}

	d := time.Duration(seconds) * time.Second
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
