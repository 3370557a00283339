package simulator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jacobrsyntaxindustries/sunapi-go/internal/logging"
	"go.uber.org/zap"
)

// Defaults applied by New when the corresponding Config field is zero.
const (
	DefaultHost          = "0.0.0.0"
	DefaultPort          = 8080
	DefaultUsername      = "admin"
	DefaultPassword      = "4321"
	DefaultTokenLifetime = 3600 * time.Second
	DefaultEventInterval = 5 * time.Second
)

// Config holds the simulator configuration
type Config struct {
	Host          string
	Port          int
	LogLevel      string
	Username      string        // credential accepted by the login endpoint
	Password      string        // credential accepted by the login endpoint
	TokenLifetime time.Duration // lifetime of issued access tokens
	EventInterval time.Duration // period between generated events (0 = no generator)
	LegacyKeys    bool          // serve old-firmware field names in responses
}

// Server simulates a single SUNAPI device: the CGI control surface plus
// the websocket event stream. It is used by the integration tests and
// by the standalone sunapi-sim binary.
type Server struct {
	config   *Config
	sessions *sessionStore
	state    *deviceState

	mu      sync.Mutex
	streams map[string]*streamConn

	listener net.Listener
	httpSrv  *http.Server
	shutdown chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a new simulated device
func New(config *Config) (*Server, error) {
	// Initialize logging
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	if config.Host == "" {
		config.Host = DefaultHost
	}
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Username == "" {
		config.Username = DefaultUsername
	}
	if config.Password == "" {
		config.Password = DefaultPassword
	}
	if config.TokenLifetime == 0 {
		config.TokenLifetime = DefaultTokenLifetime
	}

	return &Server{
		config:   config,
		sessions: newSessionStore(config.TokenLifetime),
		state:    newDeviceState(),
		streams:  make(map[string]*streamConn),
		shutdown: make(chan struct{}),
	}, nil
}

// Handler returns the full simulated CGI surface as an http.Handler.
// Tests mount it on httptest servers; Start serves it directly.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// Start starts the simulator and blocks until shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	logging.Info("Starting SUNAPI device simulator",
		zap.String("addr", addr),
		zap.String("model", s.state.model),
		zap.String("username", s.config.Username),
		zap.Duration("token_lifetime", s.config.TokenLifetime),
		zap.Bool("legacy_keys", s.config.LegacyKeys),
	)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener
	s.httpSrv = &http.Server{Handler: s.Handler()}

	logging.Info("Simulator listening for connections",
		zap.String("addr", listener.Addr().String()),
	)

	if s.config.EventInterval > 0 {
		s.wg.Add(1)
		go s.generateEvents()
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		err := s.httpSrv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errChan <- err
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping simulator...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the simulator
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down simulator...")

	s.stopOnce.Do(func() { close(s.shutdown) })

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			logging.Error("Error shutting down HTTP server", zap.Error(err))
		}
	}

	// Close all active event streams
	s.mu.Lock()
	for addr, stream := range s.streams {
		logging.Info("Closing active event stream", zap.String("remote_addr", addr))
		stream.close()
	}
	s.mu.Unlock()

	// Wait for all goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All streams closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	case <-time.After(10 * time.Second):
		logging.Warn("Shutdown timeout after 10 seconds, forcing close")
	}

	logging.Sync()

	return nil
}

// ExpireSessions invalidates every issued token, forcing clients back
// through the login endpoint on their next request.
func (s *Server) ExpireSessions() {
	s.sessions.RevokeAll()
	logging.Info("All simulator sessions expired")
}

// GetActiveStreams returns the number of open event streams
func (s *Server) GetActiveStreams() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streams)
}
