package sunapi

import (
	"fmt"
	"time"
)

const (
	// DefaultPort is the default HTTP port for device control
	DefaultPort = 80

	// DefaultProtocol is the default URL scheme
	DefaultProtocol = "http"

	// DefaultTimeout is the default per-request timeout
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is the default value of the Retries setting
	DefaultRetries = 3

	// DefaultSessionLifetime is assumed when a login response does not
	// declare how long the token lives
	DefaultSessionLifetime = 3600 * time.Second
)

// Config holds the connection settings for one device. Credentials are
// fixed for the lifetime of a client.
type Config struct {
	// Host is the device IP address or hostname
	Host string

	// Port is the device HTTP port (default: 80)
	Port int

	// Protocol is "http" or "https" (default: "http")
	Protocol string

	// Username for device login
	Username string

	// Password for device login
	Password string

	// Timeout is the per-request timeout (default: 30s)
	Timeout time.Duration

	// Retries is accepted for configuration compatibility. The pipeline
	// performs only the single re-authentication retry described on
	// Client; the value is not otherwise consulted.
	Retries int
}

// withDefaults fills zero-valued settings with their defaults
func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Protocol == "" {
		c.Protocol = DefaultProtocol
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Retries == 0 {
		c.Retries = DefaultRetries
	}
	return c
}

// Validate checks the settings that have no usable default
func (c Config) Validate() error {
	if c.Host == "" {
		return NewValidationError("host is required")
	}
	if c.Protocol != "" && c.Protocol != "http" && c.Protocol != "https" {
		return NewValidationError(fmt.Sprintf("unsupported protocol %q (use http or https)", c.Protocol))
	}
	if c.Port < 0 || c.Port > 65535 {
		return NewValidationError(fmt.Sprintf("port %d out of range", c.Port))
	}
	return nil
}

// BaseURL returns the scheme://host:port prefix for device requests
func (c Config) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d", c.Protocol, c.Host, c.Port)
}
