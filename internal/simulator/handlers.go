package simulator

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jacobrsyntaxindustries/sunapi-go/internal/logging"
)

// Timestamps on the wire use the legacy firmware layout.
const wireTimeLayout = "2006-01-02 15:04:05"

// Error codes reported in response bodies, matching device firmware.
const (
	codeBadCredentials = 613
	codeInvalidParam   = 612
	codeUnsupportedOp  = 600
	codeSessionExpired = 611
	codePresetNotFound = 614
	codeMalformedBody  = 615
)

// snapshotJPEG is the still image served by the snapshot endpoint: a
// minimal JFIF header followed by an end-of-image marker.
var snapshotJPEG = []byte{
	0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00,
	0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00,
	0xFF, 0xD9,
}

// routes wires every simulated CGI module onto one mux
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/stw-cgi/attributes.cgi", s.handleAuth)
	mux.HandleFunc("/stw-cgi/system.cgi", s.authenticated(s.handleSystem))
	mux.HandleFunc("/stw-cgi/media.cgi", s.authenticated(s.handleMedia))
	mux.HandleFunc("/stw-cgi/video.cgi", s.authenticated(s.handleVideo))
	mux.HandleFunc("/stw-cgi/ptzcontrol.cgi", s.authenticated(s.handlePTZControl))
	mux.HandleFunc("/stw-cgi/ptzconfig.cgi", s.authenticated(s.handlePTZConfig))
	mux.HandleFunc("/stw-cgi/eventstatus.cgi", s.authenticated(s.handleEventStatus))
	mux.HandleFunc("/stw-cgi/eventrules.cgi", s.authenticated(s.handleEventRules))
	mux.HandleFunc("/stw-cgi/io.cgi", s.authenticated(s.handleIO))
	mux.HandleFunc("/stw-cgi/recording.cgi", s.authenticated(s.handleRecording))
	mux.HandleFunc("/stw-cgi/eventstream", s.handleEventStream)

	return s.logged(mux)
}

// statusRecorder captures the response status for the request log. It
// forwards Hijack so the websocket upgrade still works through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// logged logs every request/response pair
func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logging.LogHTTPResponse(r.RemoteAddr, rec.status)
	})
}

// bearerToken extracts the access token from the Authorization header
func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, prefix) {
		return strings.TrimPrefix(h, prefix)
	}
	return ""
}

// authenticated rejects requests that lack a live session token
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" || !s.sessions.Validate(token) {
			writeError(w, http.StatusUnauthorized, codeSessionExpired, "Access token is missing, invalid or expired")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError reports a failure in the nested shape device firmware uses
func writeError(w http.ResponseWriter, status, code int, details string) {
	writeJSON(w, status, map[string]interface{}{
		"Error": map[string]interface{}{
			"Code":    code,
			"Details": details,
		},
	})
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"Response": "OK"})
}

func writeUnsupported(w http.ResponseWriter, sub, action string) {
	writeError(w, http.StatusNotFound, codeUnsupportedOp, fmt.Sprintf("Unsupported operation: %s/%s", sub, action))
}

// decodeBody decodes a JSON request body, tolerating an empty body
func decodeBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && err.Error() == "EOF" {
		return nil
	}
	return err
}

func selector(r *http.Request) (sub, action string) {
	q := r.URL.Query()
	return q.Get("msubmenu"), q.Get("action")
}

// handleAuth serves login and logout. It is the only module reachable
// without a token.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	sub, action := selector(r)
	switch {
	case sub == "auth" && action == "login":
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := decodeBody(r, &creds); err != nil {
			writeError(w, http.StatusBadRequest, codeMalformedBody, "Malformed login request")
			return
		}
		if creds.Username != s.config.Username || creds.Password != s.config.Password {
			writeError(w, http.StatusUnauthorized, codeBadCredentials, "Invalid username or password")
			return
		}

		sess := s.sessions.Issue()
		lifetime := int(s.config.TokenLifetime / time.Second)
		if s.config.LegacyKeys {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"token":         sess.Token,
				"sessionId":     sess.SessionID,
				"tokenLifetime": strconv.Itoa(lifetime),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"AccessToken": sess.Token,
			"SessionID":   sess.SessionID,
			"ExpiresIn":   lifetime,
		})

	case sub == "auth" && action == "logout":
		if token := bearerToken(r); token != "" {
			s.sessions.Revoke(token)
		}
		writeOK(w)

	default:
		writeUnsupported(w, sub, action)
	}
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	sub, action := selector(r)
	switch {
	case sub == "deviceinfo" && action == "view":
		s.state.mu.Lock()
		name, model := s.state.deviceName, s.state.model
		serial, firmware, mac := s.state.serial, s.state.firmware, s.state.mac
		s.state.mu.Unlock()

		if s.config.LegacyKeys {
			// Old firmware does not report the MAC address here
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"Name":        name,
				"DeviceModel": model,
				"serialNum":   serial,
				"firmwareVer": firmware,
				"uptime":      strconv.Itoa(s.state.uptime()),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"DeviceName":          name,
			"Model":               model,
			"SerialNumber":        serial,
			"FirmwareVersion":     firmware,
			"ConnectedMACAddress": mac,
			"UpTime":              s.state.uptime(),
		})

	case sub == "reboot" && action == "control":
		s.state.reboot()
		writeOK(w)

	case sub == "factorydefault" && action == "control":
		s.state.factoryReset()
		s.sessions.RevokeAll()
		writeOK(w)

	case sub == "date" && action == "view":
		s.state.mu.Lock()
		tz, sync := s.state.timezone, s.state.syncMode
		s.state.mu.Unlock()
		clock := s.state.clock().Format(wireTimeLayout)

		if s.config.LegacyKeys {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"CurrentTime": clock,
				"Timezone":    tz,
				"SyncMode":    sync,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"LocalTime": clock,
			"TimeZone":  tz,
			"SyncType":  sync,
		})

	case sub == "date" && action == "set":
		var req struct {
			LocalTime string `json:"LocalTime"`
			TimeZone  string `json:"TimeZone"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeMalformedBody, "Malformed date request")
			return
		}
		t, err := time.Parse(wireTimeLayout, req.LocalTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidParam, "Invalid LocalTime: "+req.LocalTime)
			return
		}
		s.state.setClock(t, req.TimeZone)
		writeOK(w)

	default:
		writeUnsupported(w, sub, action)
	}
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	sub, action := selector(r)
	switch {
	case sub == "videosource" && action == "view":
		s.state.mu.Lock()
		sources := make([]map[string]interface{}, 0, len(s.state.sources))
		for _, src := range s.state.sources {
			sources = append(sources, s.sourcePayload(src))
		}
		s.state.mu.Unlock()

		// Single-channel firmware returns the source as a bare object
		if len(sources) == 1 {
			writeJSON(w, http.StatusOK, map[string]interface{}{"VideoSources": sources[0]})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"VideoSources": sources})

	case sub == "videoprofile" && action == "view":
		s.state.mu.Lock()
		profiles := make([]map[string]interface{}, 0, len(s.state.profiles))
		for _, p := range s.state.profiles {
			profiles = append(profiles, s.profilePayload(p))
		}
		s.state.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"VideoProfiles": profiles})

	default:
		writeUnsupported(w, sub, action)
	}
}

func (s *Server) sourcePayload(src videoSource) map[string]interface{} {
	if s.config.LegacyKeys {
		enable := "Off"
		if src.Enabled {
			enable = "On"
		}
		return map[string]interface{}{
			"channel":    strconv.Itoa(src.Channel),
			"SourceName": src.Name,
			"enable":     enable,
			"resolution": src.Resolution,
		}
	}
	return map[string]interface{}{
		"Channel":    src.Channel,
		"Name":       src.Name,
		"Enable":     src.Enabled,
		"Resolution": src.Resolution,
	}
}

func (s *Server) profilePayload(p videoProfile) map[string]interface{} {
	if s.config.LegacyKeys {
		return map[string]interface{}{
			"profile":     strconv.Itoa(p.Profile),
			"channel":     strconv.Itoa(p.Channel),
			"ProfileName": p.Name,
			"codec":       p.Codec,
			"resolution":  p.Resolution,
			"Framerate":   strconv.Itoa(p.FrameRate),
			"BitRate":     strconv.Itoa(p.Bitrate),
		}
	}
	return map[string]interface{}{
		"Profile":      p.Profile,
		"Channel":      p.Channel,
		"Name":         p.Name,
		"EncodingType": p.Codec,
		"Resolution":   p.Resolution,
		"FrameRate":    p.FrameRate,
		"Bitrate":      p.Bitrate,
	}
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	sub, action := selector(r)
	switch {
	case sub == "snapshot" && action == "view":
		channel, err := strconv.Atoi(r.URL.Query().Get("Channel"))
		if err != nil || !s.state.hasChannel(channel) {
			writeError(w, http.StatusBadRequest, codeInvalidParam, "Invalid channel")
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(snapshotJPEG)

	default:
		writeUnsupported(w, sub, action)
	}
}

func (s *Server) handlePTZControl(w http.ResponseWriter, r *http.Request) {
	sub, action := selector(r)
	switch {
	case sub == "continuous" && action == "control":
		var req struct {
			Channel int `json:"Channel"`
			Pan     int `json:"Pan"`
			Tilt    int `json:"Tilt"`
			Zoom    int `json:"Zoom"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeMalformedBody, "Malformed movement request")
			return
		}
		if !s.state.hasChannel(req.Channel) {
			writeError(w, http.StatusBadRequest, codeInvalidParam, "Invalid channel")
			return
		}
		s.state.setMoving(req.Channel, req.Pan != 0 || req.Tilt != 0 || req.Zoom != 0)
		writeOK(w)

	case sub == "stop" && action == "control":
		var req struct {
			Channel int `json:"Channel"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeMalformedBody, "Malformed stop request")
			return
		}
		s.state.setMoving(req.Channel, false)
		writeOK(w)

	case sub == "home" && action == "control":
		var req struct {
			Channel int `json:"Channel"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeMalformedBody, "Malformed home request")
			return
		}
		if !s.state.hasChannel(req.Channel) {
			writeError(w, http.StatusBadRequest, codeInvalidParam, "Invalid channel")
			return
		}
		s.state.setMoving(req.Channel, false)
		writeOK(w)

	case sub == "preset" && action == "control":
		var req struct {
			Channel int `json:"Channel"`
			Preset  int `json:"Preset"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeMalformedBody, "Malformed preset request")
			return
		}
		if !s.state.presetExists(req.Channel, req.Preset) {
			writeError(w, http.StatusBadRequest, codePresetNotFound, fmt.Sprintf("Preset %d is not defined", req.Preset))
			return
		}
		writeOK(w)

	default:
		writeUnsupported(w, sub, action)
	}
}

func (s *Server) handlePTZConfig(w http.ResponseWriter, r *http.Request) {
	sub, action := selector(r)
	switch {
	case sub == "preset" && action == "view":
		channel, err := strconv.Atoi(r.URL.Query().Get("Channel"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidParam, "Invalid channel")
			return
		}
		presets := make([]map[string]interface{}, 0)
		for _, p := range s.state.listPresets(channel) {
			presets = append(presets, map[string]interface{}{
				"Preset": p.number,
				"Name":   p.name,
			})
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"Presets": presets})

	case sub == "preset" && action == "add":
		var req struct {
			Channel int    `json:"Channel"`
			Preset  int    `json:"Preset"`
			Name    string `json:"Name"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeMalformedBody, "Malformed preset request")
			return
		}
		if !s.state.hasChannel(req.Channel) || req.Preset < 1 {
			writeError(w, http.StatusBadRequest, codeInvalidParam, "Invalid channel or preset number")
			return
		}
		s.state.setPreset(req.Channel, req.Preset, req.Name)
		writeOK(w)

	case sub == "preset" && action == "remove":
		var req struct {
			Channel int `json:"Channel"`
			Preset  int `json:"Preset"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeMalformedBody, "Malformed preset request")
			return
		}
		if !s.state.removePreset(req.Channel, req.Preset) {
			writeError(w, http.StatusBadRequest, codePresetNotFound, fmt.Sprintf("Preset %d is not defined", req.Preset))
			return
		}
		writeOK(w)

	default:
		writeUnsupported(w, sub, action)
	}
}

func (s *Server) handleEventStatus(w http.ResponseWriter, r *http.Request) {
	sub, action := selector(r)
	if sub != "eventstatus" || action != "view" {
		writeUnsupported(w, sub, action)
		return
	}

	s.state.mu.Lock()
	motion := toggle(s.state.motionActive)
	alarm := toggle(s.state.alarms[1])
	s.state.mu.Unlock()
	clock := s.state.clock().Format(wireTimeLayout)

	if s.config.LegacyKeys {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"Motion":             motion,
			"TamperingDetection": "Off",
			"AlarmInput":         alarm,
			"Time":               clock,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"MotionDetection": motion,
		"Tampering":       "Off",
		"AlarmInput":      alarm,
		"EventTime":       clock,
	})
}

func toggle(on bool) string {
	if on {
		return "On"
	}
	return "Off"
}

func (s *Server) handleEventRules(w http.ResponseWriter, r *http.Request) {
	sub, action := selector(r)
	if sub != "rule" || action != "view" {
		writeUnsupported(w, sub, action)
		return
	}

	// The first rule embeds its conditions as stringified JSON, the way
	// older firmware serializes them.
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"Rules": []map[string]interface{}{
			{
				"Index":      1,
				"Name":       "Motion to FTP",
				"Enable":     "True",
				"Conditions": `[{"Type": "MotionDetection", "Channel": 0}]`,
				"Actions":    "FTP,Email",
			},
			{
				"Index":  2,
				"Name":   "Tampering alarm",
				"Enable": "False",
				"Conditions": []map[string]interface{}{
					{"Type": "Tampering", "Channel": 0},
				},
				"Actions": []string{"AlarmOutput"},
			},
		},
	})
}

func (s *Server) handleIO(w http.ResponseWriter, r *http.Request) {
	sub, action := selector(r)
	if sub != "alarmoutput" || action != "control" {
		writeUnsupported(w, sub, action)
		return
	}

	var req struct {
		AlarmOutput int    `json:"AlarmOutput"`
		State       string `json:"State"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeMalformedBody, "Malformed alarm request")
		return
	}
	if req.AlarmOutput < 1 {
		writeError(w, http.StatusBadRequest, codeInvalidParam, "Invalid alarm output")
		return
	}
	s.state.setAlarm(req.AlarmOutput, strings.EqualFold(req.State, "On"))
	writeOK(w)
}

func (s *Server) handleRecording(w http.ResponseWriter, r *http.Request) {
	sub, action := selector(r)
	switch {
	case sub == "general" && action == "view":
		channel, err := strconv.Atoi(r.URL.Query().Get("Channel"))
		if err != nil || !s.state.hasChannel(channel) {
			writeError(w, http.StatusBadRequest, codeInvalidParam, "Invalid channel")
			return
		}
		recording, mode := s.state.recordingState(channel)

		if s.config.LegacyKeys {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"channel":   strconv.Itoa(channel),
				"Recording": toggle(recording),
				"Mode":      mode,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"Channel":             channel,
			"RecordingInProgress": recording,
			"RecordingMode":       mode,
		})

	case sub == "record" && action == "control":
		var req struct {
			Channel int    `json:"Channel"`
			Mode    string `json:"Mode"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeMalformedBody, "Malformed record request")
			return
		}
		if !s.state.hasChannel(req.Channel) {
			writeError(w, http.StatusBadRequest, codeInvalidParam, "Invalid channel")
			return
		}
		switch req.Mode {
		case "Start":
			s.state.setRecording(req.Channel, true)
		case "Stop":
			s.state.setRecording(req.Channel, false)
		default:
			writeError(w, http.StatusBadRequest, codeInvalidParam, "Invalid record mode: "+req.Mode)
			return
		}
		writeOK(w)

	case sub == "search" && action == "view":
		q := r.URL.Query()
		channel, err := strconv.Atoi(q.Get("Channel"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidParam, "Invalid channel")
			return
		}
		from, err := time.Parse(wireTimeLayout, q.Get("FromDate"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidParam, "Invalid FromDate")
			return
		}
		to, err := time.Parse(wireTimeLayout, q.Get("ToDate"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidParam, "Invalid ToDate")
			return
		}

		results := make([]map[string]interface{}, 0)
		for _, seg := range s.state.findSegments(channel, from, to) {
			results = append(results, map[string]interface{}{
				"ResultID":      seg.ID,
				"Channel":       seg.Channel,
				"RecordingType": seg.Type,
				"StartTime":     seg.From.UTC().Format(wireTimeLayout),
				"EndTime":       seg.To.UTC().Format(wireTimeLayout),
			})
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"Results": results})

	default:
		writeUnsupported(w, sub, action)
	}
}
