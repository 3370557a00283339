package sunapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
)

// Error taxonomy for device communication

// Kind represents the category of error that occurred
type Kind int

const (
	// KindConnection indicates a transport-level failure (refused, timeout, DNS)
	KindConnection Kind = iota
	// KindAuthentication indicates the device rejected the credentials or session
	KindAuthentication
	// KindAPI indicates a non-2xx response from the device
	KindAPI
	// KindValidation indicates invalid input supplied by the caller
	KindValidation
)

// ConnectionSubtype provides more specific transport error classification
type ConnectionSubtype int

const (
	ConnectionGeneral ConnectionSubtype = iota
	ConnectionTimeout
	ConnectionRefused
	ConnectionDNS
	ConnectionHostUnreachable
	ConnectionNetworkUnreachable
)

// String returns a human-readable name for the error kind
func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "Connection Error"
	case KindAuthentication:
		return "Authentication Error"
	case KindAPI:
		return "API Error"
	case KindValidation:
		return "Validation Error"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Error represents a classified failure from a device exchange.
// StatusCode is 0 for connection errors that never produced a response.
type Error struct {
	Kind       Kind              // Category of error
	Message    string            // Human-readable error message
	StatusCode int               // HTTP status code (if a response was received)
	Err        error             // Underlying error (if any)
	Subtype    ConnectionSubtype // More specific transport error type
	Address    string            // Device address (for context)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// ClassifyTransport analyzes a transport error and returns a connection error
// with the most specific subtype it can determine
func ClassifyTransport(err error, address string) *Error {
	if err == nil {
		return nil
	}

	// Check for timeout errors
	if os.IsTimeout(err) {
		return &Error{
			Kind:    KindConnection,
			Message: "Request timed out",
			Err:     err,
			Subtype: ConnectionTimeout,
			Address: address,
		}
	}

	// Check for DNS errors
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{
			Kind:    KindConnection,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
			Subtype: ConnectionDNS,
			Address: address,
		}
	}

	// Check for connection refused and unreachable hosts
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return &Error{
				Kind:    KindConnection,
				Message: "Device refused connection",
				Err:     err,
				Subtype: ConnectionRefused,
				Address: address,
			}
		}
		if errors.Is(opErr.Err, syscall.EHOSTUNREACH) {
			return &Error{
				Kind:    KindConnection,
				Message: "Host unreachable",
				Err:     err,
				Subtype: ConnectionHostUnreachable,
				Address: address,
			}
		}
		if errors.Is(opErr.Err, syscall.ENETUNREACH) {
			return &Error{
				Kind:    KindConnection,
				Message: "Network unreachable",
				Err:     err,
				Subtype: ConnectionNetworkUnreachable,
				Address: address,
			}
		}
	}

	// Check for URL errors
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// Recursively classify the underlying error
		return ClassifyTransport(urlErr.Err, address)
	}

	// Generic connection error
	return &Error{
		Kind:    KindConnection,
		Message: "Connection failed",
		Err:     err,
		Subtype: ConnectionGeneral,
		Address: address,
	}
}

// ClassifyStatus maps a non-2xx response to an error. 401 always classifies
// as an authentication error; anything else is a generic API error carrying
// the message found in the response body, if any.
func ClassifyStatus(statusCode int, body []byte) *Error {
	if statusCode == http.StatusUnauthorized {
		return &Error{
			Kind:       KindAuthentication,
			Message:    "Device rejected credentials",
			StatusCode: statusCode,
		}
	}

	msg := messageFromBody(body)
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", statusCode)
	}
	return &Error{
		Kind:       KindAPI,
		Message:    msg,
		StatusCode: statusCode,
	}
}

// messageFromBody extracts a human-readable message from an error response
// body. Devices report errors either as a flat message field or nested under
// an Error object.
func messageFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	for _, key := range []string{"message", "Message"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}

	if nested, ok := payload["Error"].(map[string]interface{}); ok {
		for _, key := range []string{"Message", "Details", "message"} {
			if s, ok := nested[key].(string); ok && s != "" {
				return s
			}
		}
		if code, ok := nested["Code"].(float64); ok {
			return fmt.Sprintf("Device error code %d", int(code))
		}
	}

	return ""
}

// NewConnectionError creates a transport-level error with automatic classification
func NewConnectionError(message string, err error, address string) *Error {
	classified := ClassifyTransport(err, address)
	if classified != nil {
		classified.Message = message
		return classified
	}
	return &Error{
		Kind:    KindConnection,
		Message: message,
		Address: address,
	}
}

// NewAuthError creates an authentication error
func NewAuthError(message string) *Error {
	return &Error{
		Kind:       KindAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewAPIError creates a generic API error
func NewAPIError(statusCode int, message string) *Error {
	return &Error{
		Kind:       KindAPI,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: message,
	}
}

// IsConnectionError checks if an error is a transport-level error
func IsConnectionError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindConnection
	}
	return false
}

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindAuthentication
	}
	return false
}

// IsAPIError checks if an error is a generic API error
func IsAPIError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindAPI
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindValidation
	}
	return false
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}

	switch e.Kind {
	case KindConnection:
		switch e.Subtype {
		case ConnectionTimeout:
			return "Camera not responding (timeout)"
		case ConnectionRefused:
			return "Camera refused connection - is the web service enabled?"
		case ConnectionDNS:
			return "Cannot resolve camera hostname"
		case ConnectionHostUnreachable:
			return "Camera unreachable - check network connection"
		case ConnectionNetworkUnreachable:
			return "Network unreachable - check your connection"
		default:
			return "Connection error - check network"
		}
	case KindAuthentication:
		return "Authentication failed - check credentials"
	case KindAPI:
		return fmt.Sprintf("Camera error (HTTP %d)", e.StatusCode)
	case KindValidation:
		return e.Message
	default:
		return e.Message
	}
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "An unexpected error occurred. Please try again."
	}

	switch e.Kind {
	case KindConnection:
		switch e.Subtype {
		case ConnectionTimeout:
			return "The camera did not respond in time.\n" +
				"Troubleshooting:\n" +
				"  • Check that the camera is powered on (PoE or adapter)\n" +
				"  • Verify the IP address and port\n" +
				"  • Try increasing the timeout duration"
		case ConnectionRefused:
			return "The camera refused the connection.\n" +
				"Troubleshooting:\n" +
				"  • Verify the port number (default is 80)\n" +
				"  • Check that HTTP access is enabled on the camera\n" +
				"  • The camera may still be booting - wait and retry"
		case ConnectionDNS:
			return "Could not resolve the camera hostname.\n" +
				"Troubleshooting:\n" +
				"  • Use the IP address instead of hostname\n" +
				"  • Check your network DNS settings"
		default:
			return "Network communication failed.\n" +
				"Troubleshooting:\n" +
				"  • Check that you're on the same network as the camera\n" +
				"  • Try pinging the camera: ping " + e.Address
		}
	case KindAuthentication:
		return "Authentication failed.\n" +
			"Troubleshooting:\n" +
			"  • Verify the username and password\n" +
			"  • Check that the account is not locked after failed attempts\n" +
			"  • Newer firmware requires the initial password to be changed"
	case KindAPI:
		if e.StatusCode >= 500 {
			return fmt.Sprintf("The camera returned an error (HTTP %d).\n", e.StatusCode) +
				"Troubleshooting:\n" +
				"  • Try rebooting the camera\n" +
				"  • Check if a firmware update is available"
		}
		return fmt.Sprintf("The camera returned HTTP error %d. Check the request parameters.", e.StatusCode)
	case KindValidation:
		return "The request parameters are invalid. Check the error message for details."
	default:
		return "An error occurred. Please check the error message for details."
	}
}
