package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jacobrsyntaxindustries/sunapi-go/pkg/sunapi"
)

// refreshInterval is how often the dashboard re-polls the device.
const refreshInterval = 5 * time.Second

// maxFeedEvents bounds the event feed kept in memory.
const maxFeedEvents = 200

// Poll result messages for the four dashboard sections
type (
	deviceInfoMsg struct {
		res sunapi.Result[sunapi.DeviceInfo]
		err error
	}
	detectorsMsg struct {
		res sunapi.Result[sunapi.EventStatus]
		err error
	}
	recordingMsg struct {
		res sunapi.Result[sunapi.RecordingStatus]
		err error
	}
	clockMsg struct {
		res sunapi.Result[sunapi.DeviceTime]
		err error
	}
)

// Event stream messages
type streamOpenedMsg struct {
	events <-chan sunapi.Event
}

type streamEventMsg struct {
	event sunapi.Event
}

type streamClosedMsg struct {
	err error
}

type refreshTickMsg time.Time

// keyMap defines key bindings for the dashboard
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings shown in the help bar
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Refresh, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Refresh, k.Quit},
	}
}

// Model is the live dashboard for one device. It combines the polled
// sections (identity, detectors, recording, clock) with the pushed event
// stream, re-polling every refreshInterval.
type Model struct {
	client *sunapi.Client

	// UI state
	width  int
	height int

	spinner spinner.Model
	feed    viewport.Model
	help    help.Model
	keys    keyMap

	// loaded flips on the first poll response; until then only the
	// spinner renders. fatalErr is a mandatory-auth failure that no
	// amount of polling will fix.
	loaded   bool
	fatalErr error

	// Last known section data. A failed poll keeps the previous data
	// and surfaces its error next to the stale panel.
	info      *sunapi.DeviceInfo
	infoErr   string
	detectors *sunapi.EventStatus
	detectErr string
	recording *sunapi.RecordingStatus
	recordErr string
	clock     *sunapi.DeviceTime
	clockErr  string

	// Event stream state
	events      []sunapi.Event
	stream      <-chan sunapi.Event
	streamState string

	// ctx cancels the event stream and in-flight polls when the user
	// quits.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewModel builds the dashboard model for a connected client
func NewModel(client *sunapi.Client) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	keys := keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		client:      client,
		spinner:     s,
		feed:        viewport.New(0, 0),
		help:        help.New(),
		keys:        keys,
		streamState: "connecting",
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Init starts the first poll, the event stream, and the refresh ticker
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.pollDevice(),
		openStreamCmd(m.client, m.ctx),
		refreshTick(),
	)
}

func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

// pollDevice fetches every dashboard section in parallel. The sections
// are independent: one failing does not block the others.
func (m Model) pollDevice() tea.Cmd {
	client, ctx := m.client, m.ctx
	return tea.Batch(
		func() tea.Msg {
			res, err := client.System().DeviceInfo(ctx)
			return deviceInfoMsg{res: res, err: err}
		},
		func() tea.Msg {
			res, err := client.Events().Status(ctx)
			return detectorsMsg{res: res, err: err}
		},
		func() tea.Msg {
			// The dashboard watches the first channel
			res, err := client.Recording().Status(ctx, 0)
			return recordingMsg{res: res, err: err}
		},
		func() tea.Msg {
			res, err := client.System().Date(ctx)
			return clockMsg{res: res, err: err}
		},
	)
}

// openStreamCmd opens the pushed event stream
func openStreamCmd(client *sunapi.Client, ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		events, err := client.Events().Watch(ctx)
		if err != nil {
			return streamClosedMsg{err: err}
		}
		return streamOpenedMsg{events: events}
	}
}

// waitForEvent delivers the next pushed event from the stream channel
func waitForEvent(events <-chan sunapi.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return streamEventMsg{event: ev}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.feed.Width = msg.Width - 4
		m.feed.Height = feedHeight(msg.Height)
		m.feed.SetContent(m.renderFeed())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.pollDevice()
		}
		// Remaining keys scroll the event feed
		var cmd tea.Cmd
		m.feed, cmd = m.feed.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if m.loaded {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshTickMsg:
		return m, tea.Batch(m.pollDevice(), refreshTick())

	case deviceInfoMsg:
		m.loaded = true
		if msg.err != nil {
			m.fatalErr = msg.err
			return m, nil
		}
		if msg.res.Success {
			m.info, m.infoErr = msg.res.Data, ""
		} else {
			m.infoErr = msg.res.Error
		}
		return m, nil

	case detectorsMsg:
		m.loaded = true
		if msg.err != nil {
			m.fatalErr = msg.err
			return m, nil
		}
		if msg.res.Success {
			m.detectors, m.detectErr = msg.res.Data, ""
		} else {
			m.detectErr = msg.res.Error
		}
		return m, nil

	case recordingMsg:
		m.loaded = true
		if msg.err != nil {
			m.fatalErr = msg.err
			return m, nil
		}
		if msg.res.Success {
			m.recording, m.recordErr = msg.res.Data, ""
		} else {
			m.recordErr = msg.res.Error
		}
		return m, nil

	case clockMsg:
		m.loaded = true
		if msg.err != nil {
			m.fatalErr = msg.err
			return m, nil
		}
		if msg.res.Success {
			m.clock, m.clockErr = msg.res.Data, ""
		} else {
			m.clockErr = msg.res.Error
		}
		return m, nil

	case streamOpenedMsg:
		m.stream = msg.events
		m.streamState = "live"
		return m, waitForEvent(m.stream)

	case streamEventMsg:
		m.events = append(m.events, msg.event)
		if len(m.events) > maxFeedEvents {
			m.events = m.events[len(m.events)-maxFeedEvents:]
		}
		// Follow the tail unless the user has scrolled up
		atBottom := m.feed.AtBottom()
		m.feed.SetContent(m.renderFeed())
		if atBottom {
			m.feed.GotoBottom()
		}
		return m, waitForEvent(m.stream)

	case streamClosedMsg:
		if msg.err != nil {
			m.streamState = "unavailable: " + sunapi.GetShortErrorMessage(msg.err)
		} else {
			m.streamState = "closed"
		}
		return m, nil
	}

	return m, nil
}

// feedHeight leaves room for the header, section panels, and help bar.
func feedHeight(total int) int {
	h := total - 16
	if h < 3 {
		h = 3
	}
	return h
}
