package simulator

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// session is one issued access token.
type session struct {
	Token     string
	SessionID string
	Expiry    time.Time
}

// sessionStore tracks issued tokens and their lifetimes.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	lifetime time.Duration
}

func newSessionStore(lifetime time.Duration) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*session),
		lifetime: lifetime,
	}
}

// Issue creates and stores a new token/session pair
func (s *sessionStore) Issue() *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &session{
		Token:     uuid.NewString(),
		SessionID: uuid.NewString(),
		Expiry:    time.Now().Add(s.lifetime),
	}
	s.sessions[sess.Token] = sess
	return sess
}

// Validate reports whether the token is known and unexpired
func (s *sessionStore) Validate(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	return ok && time.Now().Before(sess.Expiry)
}

// Revoke removes one token
func (s *sessionStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// RevokeAll removes every issued token. Used to simulate server-side
// session expiry.
func (s *sessionStore) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*session)
}

// videoSource is one simulated input channel.
type videoSource struct {
	Channel    int
	Name       string
	Enabled    bool
	Resolution string
}

// videoProfile is one simulated encoding profile.
type videoProfile struct {
	Profile    int
	Channel    int
	Name       string
	Codec      string
	Resolution string
	FrameRate  int
	Bitrate    int
}

// segment is one stored recording interval.
type segment struct {
	ID      string
	Channel int
	Type    string
	From    time.Time
	To      time.Time
}

// deviceState is the mutable state of the simulated device. All access
// goes through the mutex; handlers run concurrently.
type deviceState struct {
	mu sync.Mutex

	deviceName string
	model      string
	serial     string
	firmware   string
	mac        string
	bootTime   time.Time

	timezone   string
	syncMode   string
	manualTime *time.Time

	sources  []videoSource
	profiles []videoProfile

	presets map[int]map[int]string // channel -> preset number -> name
	moving  map[int]bool

	motionActive bool
	alarms       map[int]bool

	recording map[int]bool
	segments  []segment
}

func newDeviceState() *deviceState {
	now := time.Now()
	return &deviceState{
		deviceName: "Simulated Camera",
		model:      "SIM-2000",
		serial:     "SIM2000-000001",
		firmware:   "1.00.00",
		mac:        "02:00:5E:00:00:01",
		bootTime:   now.Add(-time.Hour),
		timezone:   "UTC",
		syncMode:   "NTP",
		sources: []videoSource{
			{Channel: 0, Name: "Channel 1", Enabled: true, Resolution: "1920x1080"},
		},
		profiles: []videoProfile{
			{Profile: 1, Channel: 0, Name: "Main", Codec: "H.264", Resolution: "1920x1080", FrameRate: 30, Bitrate: 4096},
			{Profile: 2, Channel: 0, Name: "Sub", Codec: "H.264", Resolution: "640x360", FrameRate: 15, Bitrate: 512},
		},
		presets: map[int]map[int]string{
			0: {1: "Home position"},
		},
		moving:    make(map[int]bool),
		alarms:    make(map[int]bool),
		recording: make(map[int]bool),
		segments: []segment{
			{
				ID:      "seg-0001",
				Channel: 0,
				Type:    "Motion",
				From:    now.Add(-2 * time.Hour),
				To:      now.Add(-2*time.Hour + 5*time.Minute),
			},
			{
				ID:      "seg-0002",
				Channel: 0,
				Type:    "Continuous",
				From:    now.Add(-time.Hour),
				To:      now.Add(-30 * time.Minute),
			},
		},
	}
}

// uptime reports seconds since boot
func (d *deviceState) uptime() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int(time.Since(d.bootTime).Seconds())
}

// reboot resets the boot time
func (d *deviceState) reboot() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bootTime = time.Now()
	d.moving = make(map[int]bool)
}

// clock reports the simulated device time
func (d *deviceState) clock() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.manualTime != nil {
		return *d.manualTime
	}
	return time.Now()
}

// setClock pins the simulated device time
func (d *deviceState) setClock(t time.Time, timezone string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.manualTime = &t
	if timezone != "" {
		d.timezone = timezone
	}
}

// hasChannel reports whether a video source exists on the channel
func (d *deviceState) hasChannel(channel int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, src := range d.sources {
		if src.Channel == channel {
			return true
		}
	}
	return false
}

// setMoving tracks whether a channel is in continuous movement
func (d *deviceState) setMoving(channel int, moving bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.moving[channel] = moving
}

// presetEntry is one row of a channel's preset table.
type presetEntry struct {
	number int
	name   string
}

// listPresets returns the channel's presets ordered by number
func (d *deviceState) listPresets(channel int) []presetEntry {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := make([]presetEntry, 0, len(d.presets[channel]))
	for number, name := range d.presets[channel] {
		entries = append(entries, presetEntry{number: number, name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].number < entries[j].number })
	return entries
}

func (d *deviceState) presetExists(channel, number int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.presets[channel][number]
	return ok
}

func (d *deviceState) setPreset(channel, number int, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.presets[channel] == nil {
		d.presets[channel] = make(map[int]string)
	}
	if name == "" {
		name = fmt.Sprintf("Preset %d", number)
	}
	d.presets[channel][number] = name
}

// removePreset deletes a preset and reports whether it existed
func (d *deviceState) removePreset(channel, number int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.presets[channel][number]; !ok {
		return false
	}
	delete(d.presets[channel], number)
	return true
}

func (d *deviceState) setAlarm(output int, active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alarms[output] = active
}

// recordingState reports whether the channel is recording and in what mode
func (d *deviceState) recordingState(channel int) (bool, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.recording[channel] {
		return true, "Manual"
	}
	return false, "None"
}

func (d *deviceState) setRecording(channel int, recording bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recording[channel] = recording
}

// findSegments returns the stored segments on the channel overlapping
// [from, to)
func (d *deviceState) findSegments(channel int, from, to time.Time) []segment {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]segment, 0)
	for _, seg := range d.segments {
		if seg.Channel != channel {
			continue
		}
		if seg.To.Before(from) || !seg.From.Before(to) {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// factoryReset restores the device to its out-of-box state
func (d *deviceState) factoryReset() {
	fresh := newDeviceState()
	d.mu.Lock()
	defer d.mu.Unlock()

	d.deviceName = fresh.deviceName
	d.model = fresh.model
	d.serial = fresh.serial
	d.firmware = fresh.firmware
	d.mac = fresh.mac
	d.bootTime = fresh.bootTime
	d.timezone = fresh.timezone
	d.syncMode = fresh.syncMode
	d.manualTime = nil
	d.sources = fresh.sources
	d.profiles = fresh.profiles
	d.presets = fresh.presets
	d.moving = fresh.moving
	d.motionActive = false
	d.alarms = fresh.alarms
	d.recording = fresh.recording
	d.segments = fresh.segments
}
