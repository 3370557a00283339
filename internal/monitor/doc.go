// Package monitor implements the live terminal dashboard for a single
// SUNAPI device.
//
// The dashboard is a full-screen Bubble Tea program combining polled
// state with the pushed event stream:
//
//   - Device panel: identity (model, serial, firmware, MAC), uptime,
//     and the device clock
//   - Detectors panel: motion, tampering, and alarm input states
//   - Recording panel: per-channel recording state
//   - Events feed: scrolling log of pushed events, following the tail
//
// The polled sections refresh every few seconds and independently: a
// section that fails to refresh keeps its last known data and shows the
// failure next to it. Only a mandatory-authentication failure is fatal,
// replacing the dashboard with a full-screen error panel, since no
// amount of re-polling fixes bad credentials.
//
// # Framework Components
//
// The dashboard uses Bubble Tea framework components throughout:
//   - bubbles/spinner: Connecting indicator before the first poll
//   - bubbles/viewport: Scrolling event feed
//   - bubbles/help: Key binding help bar
//   - lipgloss: Styling and layout
//
// # Usage Example
//
//	model := monitor.NewModel(client)
//	program := tea.NewProgram(model, tea.WithAltScreen())
//
//	if _, err := program.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The Bubble Tea framework ensures thread safety through message
// passing. Device calls run as commands off the update loop; the event
// stream channel is bridged into messages one event at a time.
package monitor
