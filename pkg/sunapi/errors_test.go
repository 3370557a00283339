package sunapi

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

func TestClassifyTransport_Timeout(t *testing.T) {
	// Create a timeout error
	err := &url.Error{
		Op:  "Get",
		URL: "http://192.168.1.100",
		Err: &net.OpError{
			Op:  "dial",
			Net: "tcp",
			Err: &timeoutError{},
		},
	}

	clsErr := ClassifyTransport(err, "192.168.1.100")

	if clsErr == nil {
		t.Fatal("Expected Error, got nil")
	}

	if clsErr.Kind != KindConnection {
		t.Errorf("Expected kind %v, got %v", KindConnection, clsErr.Kind)
	}

	if clsErr.Subtype != ConnectionTimeout {
		t.Errorf("Expected subtype %v, got %v", ConnectionTimeout, clsErr.Subtype)
	}

	if clsErr.StatusCode != 0 {
		t.Errorf("Expected status code 0 for transport error, got %d", clsErr.StatusCode)
	}
}

func TestClassifyTransport_ConnectionRefused(t *testing.T) {
	err := &url.Error{
		Op:  "Get",
		URL: "http://192.168.1.100",
		Err: &net.OpError{
			Op:  "dial",
			Net: "tcp",
			Err: syscall.ECONNREFUSED,
		},
	}

	clsErr := ClassifyTransport(err, "192.168.1.100")

	if clsErr == nil {
		t.Fatal("Expected Error, got nil")
	}

	if clsErr.Kind != KindConnection {
		t.Errorf("Expected kind %v, got %v", KindConnection, clsErr.Kind)
	}

	if clsErr.Subtype != ConnectionRefused {
		t.Errorf("Expected subtype %v, got %v", ConnectionRefused, clsErr.Subtype)
	}
}

func TestClassifyTransport_DNS(t *testing.T) {
	err := &net.DNSError{
		Err:        "no such host",
		Name:       "camera.local",
		IsNotFound: true,
	}

	clsErr := ClassifyTransport(err, "camera.local")

	if clsErr == nil {
		t.Fatal("Expected Error, got nil")
	}

	if clsErr.Kind != KindConnection {
		t.Errorf("Expected kind %v, got %v", KindConnection, clsErr.Kind)
	}

	if clsErr.Subtype != ConnectionDNS {
		t.Errorf("Expected subtype %v, got %v", ConnectionDNS, clsErr.Subtype)
	}

	if !strings.Contains(clsErr.Message, "camera.local") {
		t.Errorf("Expected message to name the host, got %q", clsErr.Message)
	}
}

func TestClassifyTransport_HostUnreachable(t *testing.T) {
	err := &url.Error{
		Op:  "Get",
		URL: "http://192.168.1.100",
		Err: &net.OpError{
			Op:  "dial",
			Net: "tcp",
			Err: syscall.EHOSTUNREACH,
		},
	}

	clsErr := ClassifyTransport(err, "192.168.1.100")

	if clsErr == nil {
		t.Fatal("Expected Error, got nil")
	}

	if clsErr.Subtype != ConnectionHostUnreachable {
		t.Errorf("Expected subtype %v, got %v", ConnectionHostUnreachable, clsErr.Subtype)
	}
}

func TestClassifyTransport_Generic(t *testing.T) {
	clsErr := ClassifyTransport(errors.New("wire fell out"), "192.168.1.100")

	if clsErr == nil {
		t.Fatal("Expected Error, got nil")
	}

	if clsErr.Kind != KindConnection {
		t.Errorf("Expected kind %v, got %v", KindConnection, clsErr.Kind)
	}

	if clsErr.Subtype != ConnectionGeneral {
		t.Errorf("Expected subtype %v, got %v", ConnectionGeneral, clsErr.Subtype)
	}

	if clsErr.Address != "192.168.1.100" {
		t.Errorf("Address = %q, want 192.168.1.100", clsErr.Address)
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name        string
		statusCode  int
		body        string
		wantKind    Kind
		wantMessage string
	}{
		{
			name:        "401 classifies as authentication",
			statusCode:  401,
			body:        `{"Error":{"Code":613,"Message":"Session expired"}}`,
			wantKind:    KindAuthentication,
			wantMessage: "Device rejected credentials",
		},
		{
			name:        "404 with flat message field",
			statusCode:  404,
			body:        `{"message":"Submenu not found"}`,
			wantKind:    KindAPI,
			wantMessage: "Submenu not found",
		},
		{
			name:        "490 with nested error details",
			statusCode:  490,
			body:        `{"Error":{"Code":600,"Details":"Invalid parameter: Channel"}}`,
			wantKind:    KindAPI,
			wantMessage: "Invalid parameter: Channel",
		},
		{
			name:        "nested error with only a code",
			statusCode:  490,
			body:        `{"Error":{"Code":612}}`,
			wantKind:    KindAPI,
			wantMessage: "Device error code 612",
		},
		{
			name:        "500 with empty body falls back to status text",
			statusCode:  500,
			body:        "",
			wantKind:    KindAPI,
			wantMessage: "Internal Server Error",
		},
		{
			name:        "non-JSON body falls back to status text",
			statusCode:  503,
			body:        "<html>busy</html>",
			wantKind:    KindAPI,
			wantMessage: "Service Unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clsErr := ClassifyStatus(tt.statusCode, []byte(tt.body))

			if clsErr.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", clsErr.Kind, tt.wantKind)
			}

			if clsErr.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %d, want %d", clsErr.StatusCode, tt.statusCode)
			}

			if clsErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", clsErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
		want bool
	}{
		{
			name: "connection error matches IsConnectionError",
			err:  NewConnectionError("down", nil, "192.168.1.100"),
			pred: IsConnectionError,
			want: true,
		},
		{
			name: "auth error matches IsAuthError",
			err:  NewAuthError("bad password"),
			pred: IsAuthError,
			want: true,
		},
		{
			name: "API error matches IsAPIError",
			err:  NewAPIError(404, "not found"),
			pred: IsAPIError,
			want: true,
		},
		{
			name: "validation error matches IsValidationError",
			err:  NewValidationError("channel must be >= 0"),
			pred: IsValidationError,
			want: true,
		},
		{
			name: "auth error does not match IsConnectionError",
			err:  NewAuthError("bad password"),
			pred: IsConnectionError,
			want: false,
		},
		{
			name: "plain error matches nothing",
			err:  errors.New("unknown error"),
			pred: IsAuthError,
			want: false,
		},
		{
			name: "wrapped classified error still matches",
			err:  wrap(NewAuthError("bad password")),
			pred: IsAuthError,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(tt.err); got != tt.want {
				t.Errorf("predicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetShortErrorMessage(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedText string
	}{
		{
			name: "Timeout error",
			err: &Error{
				Kind:    KindConnection,
				Subtype: ConnectionTimeout,
			},
			expectedText: "Camera not responding (timeout)",
		},
		{
			name: "Connection refused",
			err: &Error{
				Kind:    KindConnection,
				Subtype: ConnectionRefused,
			},
			expectedText: "Camera refused connection - is the web service enabled?",
		},
		{
			name: "DNS error",
			err: &Error{
				Kind:    KindConnection,
				Subtype: ConnectionDNS,
			},
			expectedText: "Cannot resolve camera hostname",
		},
		{
			name: "Auth error",
			err: &Error{
				Kind: KindAuthentication,
			},
			expectedText: "Authentication failed - check credentials",
		},
		{
			name: "Host unreachable",
			err: &Error{
				Kind:    KindConnection,
				Subtype: ConnectionHostUnreachable,
			},
			expectedText: "Camera unreachable - check network connection",
		},
		{
			name: "HTTP 500",
			err: &Error{
				Kind:       KindAPI,
				StatusCode: 500,
			},
			expectedText: "Camera error (HTTP 500)",
		},
		{
			name: "Validation error",
			err: &Error{
				Kind:    KindValidation,
				Message: "preset number out of range",
			},
			expectedText: "preset number out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetShortErrorMessage(tt.err)
			if got != tt.expectedText {
				t.Errorf("GetShortErrorMessage() = %q, want %q", got, tt.expectedText)
			}
		})
	}
}

func TestGetTroubleshootingHint(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectedTexts []string // Texts that should appear in the hint
	}{
		{
			name: "Timeout error",
			err: &Error{
				Kind:    KindConnection,
				Subtype: ConnectionTimeout,
			},
			expectedTexts: []string{
				"did not respond in time",
				"Troubleshooting:",
				"powered on",
			},
		},
		{
			name: "Connection refused",
			err: &Error{
				Kind:    KindConnection,
				Subtype: ConnectionRefused,
			},
			expectedTexts: []string{
				"refused the connection",
				"port number",
				"HTTP access",
			},
		},
		{
			name: "Auth error",
			err: &Error{
				Kind: KindAuthentication,
			},
			expectedTexts: []string{
				"Authentication failed",
				"username and password",
				"locked",
			},
		},
		{
			name: "Host unreachable",
			err: &Error{
				Kind:    KindConnection,
				Subtype: ConnectionHostUnreachable,
				Address: "192.168.1.100",
			},
			expectedTexts: []string{
				"same network",
				"ping 192.168.1.100",
			},
		},
		{
			name: "HTTP 500 error",
			err: &Error{
				Kind:       KindAPI,
				StatusCode: 500,
			},
			expectedTexts: []string{
				"HTTP 500",
				"rebooting the camera",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := GetTroubleshootingHint(tt.err)

			for _, expectedText := range tt.expectedTexts {
				if !strings.Contains(hint, expectedText) {
					t.Errorf("GetTroubleshootingHint() missing expected text %q\nGot: %s", expectedText, hint)
				}
			}
		})
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindConnection, "Connection Error"},
		{KindAuthentication, "Authentication Error"},
		{KindAPI, "API Error"},
		{KindValidation, "Validation Error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("socket closed")
	clsErr := NewConnectionError("send failed", inner, "")

	if !errors.Is(clsErr, inner) {
		t.Error("Expected errors.Is to find the wrapped error")
	}

	if !strings.Contains(clsErr.Error(), "caused by") {
		t.Errorf("Error() should include the cause, got %q", clsErr.Error())
	}
}

func wrap(err error) error {
	return &url.Error{Op: "Post", URL: "http://192.168.1.100", Err: err}
}

// timeoutError is a mock error that implements timeout behavior
type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }
