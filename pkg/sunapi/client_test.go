package sunapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const (
	loginPath = "/stw-cgi/attributes.cgi"
	infoPath  = "/stw-cgi/system.cgi"
)

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(Config{Host: "192.168.1.100", Username: "admin", Password: "Secret1!"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	cfg := client.Config()
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.Protocol != DefaultProtocol {
		t.Errorf("Protocol = %q, want %q", cfg.Protocol, DefaultProtocol)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.Retries != DefaultRetries {
		t.Errorf("Retries = %d, want %d", cfg.Retries, DefaultRetries)
	}
	if client.BaseURL() != "http://192.168.1.100:80" {
		t.Errorf("BaseURL() = %q", client.BaseURL())
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing host", cfg: Config{}},
		{name: "bad protocol", cfg: Config{Host: "192.168.1.100", Protocol: "ftp"}},
		{name: "bad port", cfg: Config{Host: "192.168.1.100", Port: 70000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			if err == nil {
				t.Fatal("NewClient() should reject the config")
			}
			if !IsValidationError(err) {
				t.Errorf("error should be a validation error, got %v", err)
			}
		})
	}
}

func TestNewClientFromURL_Invalid(t *testing.T) {
	for _, raw := range []string{"://bad", "not a url", ""} {
		if _, err := NewClientFromURL(raw, "admin", "pw"); err == nil {
			t.Errorf("NewClientFromURL(%q) should fail", raw)
		}
	}
}

func TestDo_Success(t *testing.T) {
	loginCalls, opCalls := 0, 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			loginCalls++
			if auth := r.Header.Get("Authorization"); auth != "" {
				t.Errorf("login carried stale credentials: %q", auth)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"AccessToken":"tok-1","SessionID":"sess-1"}`))
		case infoPath:
			opCalls++
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if r.Header.Get("X-Session-ID") != "sess-1" {
				t.Errorf("X-Session-ID = %q, want sess-1", r.Header.Get("X-Session-ID"))
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"Model":"XND-6080"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := mustClient(t, server.URL, "admin", "Secret1!")

	res, err := Do[map[string]interface{}](context.Background(), client, http.MethodGet, epDeviceInfo.path(), nil, epDeviceInfo.query(nil))
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("Do() envelope failure: %s", res.Error)
	}
	if (*res.Data)["Model"] != "XND-6080" {
		t.Errorf("Data = %v", *res.Data)
	}
	if loginCalls != 1 || opCalls != 1 {
		t.Errorf("loginCalls = %d, opCalls = %d, want 1 and 1", loginCalls, opCalls)
	}
}

func TestDo_ReauthenticatesOnceOn401(t *testing.T) {
	loginCalls, opCalls := 0, 0
	validToken := ""
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			loginCalls++
			validToken = fmt.Sprintf("tok-%d", loginCalls)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(fmt.Sprintf(`{"AccessToken":"%s"}`, validToken)))
		case infoPath:
			opCalls++
			// The first token is revoked server-side before its expiry
			if opCalls == 1 || r.Header.Get("Authorization") != "Bearer "+validToken {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"Model":"XND-6080"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := mustClient(t, server.URL, "admin", "Secret1!")

	res, err := Do[map[string]interface{}](context.Background(), client, http.MethodGet, epDeviceInfo.path(), nil, epDeviceInfo.query(nil))
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("Do() envelope failure: %s", res.Error)
	}

	// One logical call: two operation requests, one initial login plus one re-login
	if opCalls != 2 {
		t.Errorf("opCalls = %d, want 2", opCalls)
	}
	if loginCalls != 2 {
		t.Errorf("loginCalls = %d, want 2", loginCalls)
	}
}

func TestDo_SecondUnauthorizedReturnsEnvelope(t *testing.T) {
	loginCalls, opCalls := 0, 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			loginCalls++
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(fmt.Sprintf(`{"AccessToken":"tok-%d"}`, loginCalls)))
		case infoPath:
			opCalls++
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer server.Close()

	client := mustClient(t, server.URL, "admin", "Secret1!")

	res, err := Do[map[string]interface{}](context.Background(), client, http.MethodGet, epDeviceInfo.path(), nil, epDeviceInfo.query(nil))
	if err != nil {
		t.Fatalf("Do() error = %v, want envelope-only failure", err)
	}
	if res.Success {
		t.Fatal("Do() should report failure after the retried 401")
	}
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", res.StatusCode)
	}

	// Exactly one re-login and one retry; the second 401 must not trigger more
	if loginCalls != 2 {
		t.Errorf("loginCalls = %d, want 2", loginCalls)
	}
	if opCalls != 2 {
		t.Errorf("opCalls = %d, want 2", opCalls)
	}
}

func TestDo_ReloginFailureIsHardError(t *testing.T) {
	loginCalls, opCalls := 0, 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			loginCalls++
			if loginCalls > 1 {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"Error":{"Message":"Account is locked"}}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"AccessToken":"tok-1"}`))
		case infoPath:
			opCalls++
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer server.Close()

	client := mustClient(t, server.URL, "admin", "Secret1!")

	res, err := Do[map[string]interface{}](context.Background(), client, http.MethodGet, epDeviceInfo.path(), nil, epDeviceInfo.query(nil))
	if err == nil {
		t.Fatal("Do() should surface a hard error when re-login fails")
	}
	if !IsAuthError(err) {
		t.Errorf("error should be an auth error, got %v", err)
	}
	if res.Success {
		t.Error("envelope should report failure alongside the hard error")
	}
	if opCalls != 1 {
		t.Errorf("opCalls = %d, want 1 (no retry after failed re-login)", opCalls)
	}
	if loginCalls != 2 {
		t.Errorf("loginCalls = %d, want 2", loginCalls)
	}
}

func TestDo_InitialLoginFailureIsHardError(t *testing.T) {
	opCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"Error":{"Message":"Invalid password"}}`))
		default:
			opCalls++
		}
	}))
	defer server.Close()

	client := mustClient(t, server.URL, "admin", "wrong")

	res, err := Do[map[string]interface{}](context.Background(), client, http.MethodGet, epDeviceInfo.path(), nil, epDeviceInfo.query(nil))
	if err == nil {
		t.Fatal("Do() should surface a hard error when the mandatory login fails")
	}
	if !IsAuthError(err) {
		t.Errorf("error should be an auth error, got %v", err)
	}
	if res.Success {
		t.Error("envelope should report failure")
	}
	if opCalls != 0 {
		t.Errorf("opCalls = %d, want 0 (no operation without a session)", opCalls)
	}
}

func TestDo_ConnectionFailureReturnsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client := mustClient(t, serverURL, "admin", "Secret1!")
	client.Sessions().Store("tok-1", "", time.Hour)

	res, err := Do[map[string]interface{}](context.Background(), client, http.MethodGet, epDeviceInfo.path(), nil, epDeviceInfo.query(nil))
	if err != nil {
		t.Fatalf("Do() error = %v, want transport failure captured in the envelope", err)
	}
	if res.Success {
		t.Fatal("Do() should report failure for an unreachable device")
	}
	if res.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for a transport failure", res.StatusCode)
	}
	if res.Error == "" {
		t.Error("Error should describe the transport failure")
	}
	if res.Data != nil {
		t.Error("Data should be absent on failure")
	}
}

func TestDo_APIErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"AccessToken":"tok-1"}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"Error":{"Code":600,"Details":"Storage busy"}}`))
		}
	}))
	defer server.Close()

	client := mustClient(t, server.URL, "admin", "Secret1!")

	res, err := Do[map[string]interface{}](context.Background(), client, http.MethodGet, epRecordStatus.path(), nil, epRecordStatus.query(nil))
	if err != nil {
		t.Fatalf("Do() error = %v, want envelope-only failure", err)
	}
	if res.Success {
		t.Fatal("Do() should report failure for a 503")
	}
	if res.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", res.StatusCode)
	}
	if !strings.Contains(res.Error, "Storage busy") {
		t.Errorf("Error = %q, want the device message", res.Error)
	}
}

func TestDo_EmptyBodySucceeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == loginPath {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"AccessToken":"tok-1"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := mustClient(t, server.URL, "admin", "Secret1!")

	res, err := post(context.Background(), client, epReboot.path(), nil, epReboot.query(nil))
	if err != nil {
		t.Fatalf("post() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("post() envelope failure: %s", res.Error)
	}
	if res.Data == nil {
		t.Error("Data should be a zero-value acknowledgment, not nil")
	}
}

func TestRaw_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == loginPath {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"AccessToken":"tok-1"}`))
			return
		}
		_, _ = w.Write([]byte("OK"))
	}))
	defer server.Close()

	client := mustClient(t, server.URL, "admin", "Secret1!")

	res, err := client.Raw(context.Background(), http.MethodGet, epDateView.path(), nil, epDateView.query(nil))
	if err != nil {
		t.Fatalf("Raw() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("Raw() envelope failure: %s", res.Error)
	}
	if string(*res.Data) != `"OK"` {
		t.Errorf("Data = %s, want the body quoted as a JSON string", string(*res.Data))
	}
}

func TestRawBytes_BinaryPayload(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == loginPath {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"AccessToken":"tok-1"}`))
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(jpeg)
	}))
	defer server.Close()

	client := mustClient(t, server.URL, "admin", "Secret1!")

	res, err := client.RawBytes(context.Background(), http.MethodGet, epSnapshot.path(), epSnapshot.query(nil))
	if err != nil {
		t.Fatalf("RawBytes() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("RawBytes() envelope failure: %s", res.Error)
	}
	if res.Data.ContentType != "image/jpeg" {
		t.Errorf("ContentType = %q, want image/jpeg", res.Data.ContentType)
	}
	if len(res.Data.Data) != len(jpeg) {
		t.Errorf("payload length = %d, want %d", len(res.Data.Data), len(jpeg))
	}
}

func TestWithSession_SharedAcrossClients(t *testing.T) {
	loginCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			loginCalls++
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"AccessToken":"tok-shared"}`))
		default:
			if r.Header.Get("Authorization") != "Bearer tok-shared" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	shared := NewSessionManager()
	first, err := NewClientFromURL(server.URL, "admin", "Secret1!", WithSession(shared))
	if err != nil {
		t.Fatalf("NewClientFromURL() error = %v", err)
	}
	second, err := NewClientFromURL(server.URL, "admin", "Secret1!", WithSession(shared))
	if err != nil {
		t.Fatalf("NewClientFromURL() error = %v", err)
	}

	if res, err := get(context.Background(), first, epDeviceInfo.path(), epDeviceInfo.query(nil)); err != nil || !res.Success {
		t.Fatalf("first client request failed: %v / %s", err, res.Error)
	}
	if res, err := get(context.Background(), second, epEventStatus.path(), epEventStatus.query(nil)); err != nil || !res.Success {
		t.Fatalf("second client request failed: %v / %s", err, res.Error)
	}

	if loginCalls != 1 {
		t.Errorf("loginCalls = %d, want 1 shared login", loginCalls)
	}
}
