package monitor

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jacobrsyntaxindustries/sunapi-go/pkg/sunapi"
)

func newTestModel(t *testing.T) Model {
	t.Helper()

	client, err := sunapi.NewClient(sunapi.Config{
		Host:     "127.0.0.1",
		Username: "admin",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	m := NewModel(client)
	t.Cleanup(m.cancel)
	return m
}

func asModel(t *testing.T, tm tea.Model) Model {
	t.Helper()
	m, ok := tm.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", tm)
	}
	return m
}

func TestDeviceInfoFillsIdentityPanel(t *testing.T) {
	m := newTestModel(t)

	info := sunapi.DeviceInfo{
		DeviceName:      "Lobby Camera",
		Model:           "XNV-8080R",
		SerialNumber:    "ZNKQ70GF800025X",
		FirmwareVersion: "2.21.02",
		MACAddress:      "00:16:6C:F2:B4:58",
		Uptime:          3600,
	}

	updated, _ := m.Update(deviceInfoMsg{res: sunapi.OK(info)})
	got := asModel(t, updated)

	if !got.loaded {
		t.Error("first poll response should mark the model loaded")
	}
	if got.info == nil || got.info.Model != "XNV-8080R" {
		t.Fatalf("info not stored: %+v", got.info)
	}

	view := got.View()
	for _, want := range []string{"Lobby Camera", "XNV-8080R", "ZNKQ70GF800025X", "2.21.02", "1h 0m"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFailedPollKeepsLastGoodData(t *testing.T) {
	m := newTestModel(t)

	info := sunapi.DeviceInfo{DeviceName: "Cam", Model: "SIM-2000"}
	updated, _ := m.Update(deviceInfoMsg{res: sunapi.OK(info)})
	m = asModel(t, updated)

	failure := sunapi.Fail[sunapi.DeviceInfo](sunapi.NewAPIError(503, "service unavailable"))
	updated, _ = m.Update(deviceInfoMsg{res: failure})
	m = asModel(t, updated)

	if m.info == nil || m.info.Model != "SIM-2000" {
		t.Error("failed refresh should keep the previous identity data")
	}
	if m.infoErr == "" {
		t.Error("failed refresh should record the section error")
	}
	if view := m.View(); !strings.Contains(view, "SIM-2000") {
		t.Error("stale data should still render")
	}
}

func TestAuthFailureIsFatal(t *testing.T) {
	m := newTestModel(t)

	authErr := sunapi.NewAuthError("invalid credentials")
	updated, _ := m.Update(deviceInfoMsg{res: sunapi.Fail[sunapi.DeviceInfo](authErr), err: authErr})
	got := asModel(t, updated)

	if got.fatalErr == nil {
		t.Fatal("mandatory auth failure should be fatal")
	}

	view := got.View()
	if !strings.Contains(view, "Press q to quit") {
		t.Error("fatal view should tell the user how to exit")
	}
	if !strings.Contains(view, "credentials") {
		t.Errorf("fatal view should explain the failure:\n%s", view)
	}
}

func TestDetectorAndRecordingStates(t *testing.T) {
	m := newTestModel(t)

	status := sunapi.EventStatus{Motion: true, Tampering: false, Time: time.Now()}
	updated, _ := m.Update(detectorsMsg{res: sunapi.OK(status)})
	m = asModel(t, updated)

	rec := sunapi.RecordingStatus{Channel: 0, Recording: true, Mode: "Manual"}
	updated, _ = m.Update(recordingMsg{res: sunapi.OK(rec)})
	m = asModel(t, updated)

	view := m.View()
	if !strings.Contains(view, "ACTIVE") {
		t.Error("raised motion detector should render as ACTIVE")
	}
	if !strings.Contains(view, "idle") {
		t.Error("clear tampering detector should render as idle")
	}
	if !strings.Contains(view, "recording (Manual)") {
		t.Errorf("recording state missing from view:\n%s", view)
	}
}

func TestStreamEventsAccumulateAndTrim(t *testing.T) {
	m := newTestModel(t)

	events := make(chan sunapi.Event)
	updated, cmd := m.Update(streamOpenedMsg{events: events})
	m = asModel(t, updated)

	if m.streamState != "live" {
		t.Errorf("streamState = %q, want live", m.streamState)
	}
	if cmd == nil {
		t.Fatal("opening the stream should start waiting for events")
	}

	for i := 0; i < maxFeedEvents+25; i++ {
		ev := sunapi.Event{Type: "MotionDetection", Channel: i, Active: true, Time: time.Now()}
		updated, _ = m.Update(streamEventMsg{event: ev})
		m = asModel(t, updated)
	}

	if len(m.events) != maxFeedEvents {
		t.Errorf("feed kept %d events, want cap of %d", len(m.events), maxFeedEvents)
	}
	if first := m.events[0].Channel; first != 25 {
		t.Errorf("oldest kept event has channel %d, want 25", first)
	}
}

func TestStreamClosedReportsState(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(streamClosedMsg{err: sunapi.NewAuthError("session expired")})
	m = asModel(t, updated)
	if !strings.HasPrefix(m.streamState, "unavailable") {
		t.Errorf("streamState = %q, want unavailable prefix", m.streamState)
	}

	updated, _ = m.Update(streamClosedMsg{})
	m = asModel(t, updated)
	if m.streamState != "closed" {
		t.Errorf("streamState = %q, want closed", m.streamState)
	}
}

func TestQuitKeyCancelsStreamAndQuits(t *testing.T) {
	m := newTestModel(t)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = asModel(t, updated)

	if cmd == nil {
		t.Fatal("quit key should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key should produce tea.Quit")
	}

	select {
	case <-m.ctx.Done():
	default:
		t.Error("quit should cancel the stream context")
	}
}

func TestWindowSizeResizesFeed(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = asModel(t, updated)

	if m.feed.Width != 96 {
		t.Errorf("feed width = %d, want 96", m.feed.Width)
	}
	if m.feed.Height != 24 {
		t.Errorf("feed height = %d, want 24", m.feed.Height)
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "unknown"},
		{-5, "unknown"},
		{90, "1m"},
		{3660, "1h 1m"},
		{90000, "1d 1h 0m"},
	}

	for _, tt := range tests {
		if got := formatUptime(tt.seconds); got != tt.want {
			t.Errorf("formatUptime(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
