package simulator

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jacobrsyntaxindustries/sunapi-go/internal/logging"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamConn is one open event stream. The mutex serializes writes;
// gorilla connections do not support concurrent writers.
type streamConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
	once sync.Once
	done chan struct{}
}

func (sc *streamConn) send(payload interface{}) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.conn.WriteJSON(payload)
}

func (sc *streamConn) close() {
	sc.once.Do(func() {
		close(sc.done)
		_ = sc.conn.Close()
	})
}

// handleEventStream upgrades the connection and registers it for event
// broadcasts. The stream authenticates with the same bearer token as
// the CGI surface; the check runs before the upgrade so a stale token
// is rejected with a plain 401 instead of a broken websocket.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" || !s.sessions.Validate(token) {
		writeError(w, http.StatusUnauthorized, codeSessionExpired, "Access token is missing, invalid or expired")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("Event stream upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	remoteAddr := r.RemoteAddr
	stream := &streamConn{conn: conn, done: make(chan struct{})}

	s.mu.Lock()
	s.streams[remoteAddr] = stream
	s.mu.Unlock()

	logging.LogConnection(remoteAddr, "event_stream_opened")

	// Reader loop. Clients never send messages; reading is how we notice
	// the peer closed.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			stream.close()
			s.mu.Lock()
			delete(s.streams, remoteAddr)
			s.mu.Unlock()
			logging.LogConnection(remoteAddr, "event_stream_closed")
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// PushEvent broadcasts one event payload to every open stream. Tests
// use it to deliver deterministic events.
func (s *Server) PushEvent(event map[string]interface{}) {
	eventType, _ := event["EventType"].(string)

	s.mu.Lock()
	targets := make(map[string]*streamConn, len(s.streams))
	for addr, stream := range s.streams {
		targets[addr] = stream
	}
	s.mu.Unlock()

	for addr, stream := range targets {
		if err := stream.send(event); err != nil {
			logging.Debug("Event push failed",
				zap.String("remote_addr", addr),
				zap.Error(err),
			)
			continue
		}
		logging.LogEventPush(addr, eventType)
	}
}

// generateEvents periodically toggles the motion detector and pushes
// the transition to every open stream
func (s *Server) generateEvents() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.EventInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			s.state.mu.Lock()
			s.state.motionActive = !s.state.motionActive
			active := s.state.motionActive
			s.state.mu.Unlock()

			s.PushEvent(map[string]interface{}{
				"EventType": "MotionDetection",
				"Channel":   0,
				"State":     toggle(active),
				"EventTime": time.Now().Format(wireTimeLayout),
			})
		}
	}
}
