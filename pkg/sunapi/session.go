package sunapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jacobrsyntaxindustries/sunapi-go/internal/logging"
)

// Session is the authenticated state issued by a device login.
type Session struct {
	// Token is the opaque bearer credential
	Token string

	// SessionID is an optional identifier some firmware issues alongside
	// the token
	SessionID string

	// Expiry is the instant the token stops being valid
	Expiry time.Time
}

// SessionManager holds the session shared by every feature module of a
// client. A single manager can also back several clients via WithSession
// so they reuse one login instead of copying token state around.
//
// The mutex guards the session fields for memory safety only; two
// goroutines racing past EnsureAuthenticated on the same manager may both
// log in, and the last login wins. Callers needing stricter coordination
// must serialize externally.
type SessionManager struct {
	mu      sync.Mutex
	session *Session
}

// NewSessionManager creates an empty session manager
func NewSessionManager() *SessionManager {
	return &SessionManager{}
}

// IsAuthenticated reports whether a session exists and has not expired.
// A session whose expiry equals the current instant counts as expired.
func (m *SessionManager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil && time.Now().Before(m.session.Expiry)
}

// Current returns a copy of the stored session, if any
func (m *SessionManager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

// Store replaces the session with a fresh login result. Expiry is computed
// as now plus the server-declared lifetime.
func (m *SessionManager) Store(token, sessionID string, lifetime time.Duration) Session {
	s := Session{
		Token:     token,
		SessionID: sessionID,
		Expiry:    time.Now().Add(lifetime),
	}
	m.mu.Lock()
	m.session = &s
	m.mu.Unlock()
	return s
}

// Invalidate discards the stored session
func (m *SessionManager) Invalidate() {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
}

// loginResult is the normalized shape of a login response.
type loginResult struct {
	Token     string `json:"token"`
	SessionID string `json:"sessionId"`
	ExpiresIn int    `json:"expiresIn"`
}

// loginSchema maps the field names different firmware generations use in
// their login responses.
var loginSchema = Schema{
	{Target: "token", Keys: []string{"AccessToken", "Token", "accessToken", "token"}, Coerce: AsString, Default: ""},
	{Target: "sessionId", Keys: []string{"SessionID", "SessionId", "sessionId"}, Coerce: AsString, Default: ""},
	{Target: "expiresIn", Keys: []string{"ExpiresIn", "expiresIn", "TokenLifetime", "tokenLifetime"}, Coerce: AsInt, Default: int(DefaultSessionLifetime / time.Second)},
}

// Login authenticates against the device and stores the resulting session.
// Transport failures return a connection error; anything the device rejects
// returns an authentication error carrying the server message.
func (c *Client) Login(ctx context.Context) error {
	body := map[string]string{
		"username": c.config.Username,
		"password": c.config.Password,
	}

	resp, err := c.send(ctx, http.MethodPost, epLogin.path(), epLogin.query(nil), body)
	if err != nil {
		return err
	}

	if resp.status < 200 || resp.status >= 300 {
		msg := messageFromBody(resp.body)
		if msg == "" {
			msg = "login rejected by device"
		}
		return &Error{
			Kind:       KindAuthentication,
			Message:    msg,
			StatusCode: resp.status,
			Address:    c.config.Host,
		}
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(resp.body, &raw); err != nil {
		return NewAuthError("malformed login response")
	}

	result, err := Normalize[loginResult](raw, loginSchema)
	if err != nil {
		return NewAuthError("malformed login response")
	}
	if result.Token == "" {
		return NewAuthError("login response missing token")
	}

	session := c.sessions.Store(result.Token, result.SessionID, time.Duration(result.ExpiresIn)*time.Second)
	logging.Debug("Session established",
		zap.String("host", c.config.Host),
		zap.Time("expiry", session.Expiry),
	)
	return nil
}

// Logout notifies the device and unconditionally clears the local session.
// Network failures are swallowed; the local state reset is the guarantee.
func (c *Client) Logout(ctx context.Context) {
	defer c.sessions.Invalidate()

	if _, ok := c.sessions.Current(); !ok {
		return
	}

	_, err := c.send(ctx, http.MethodPost, epLogout.path(), epLogout.query(nil), nil)
	if err != nil {
		logging.Debug("Logout notification failed", zap.Error(err))
	}
}

// EnsureAuthenticated logs in when no valid session exists. An expired
// session is discarded before the login so its token is never sent again.
func (c *Client) EnsureAuthenticated(ctx context.Context) error {
	if c.sessions.IsAuthenticated() {
		return nil
	}
	c.sessions.Invalidate()
	return c.Login(ctx)
}
