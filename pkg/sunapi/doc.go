// Package sunapi provides a typed HTTP client for SUNAPI-style network
// surveillance devices.
//
// This package implements the authenticated request pipeline used by Wisenet
// cameras and recorders: session acquisition against the device auth
// endpoint, token-expiry detection, automatic re-authentication with a
// single retry on HTTP 401, and normalization of the loosely-typed device
// payloads into stable records. Feature modules cover device identity and
// power control, video channels and snapshots, pan/tilt/zoom, event status
// and the pushed event stream, and recording control and search.
//
// # Result Envelopes
//
// Every operation returns a Result envelope rather than a bare error:
//
//	type Result[T any] struct {
//	    Success    bool
//	    Data       *T
//	    Error      string
//	    StatusCode int
//	}
//
// Network failures, device-side errors, and input validation failures are
// all captured inside the envelope with Success set to false. The hard
// error return carries only mandatory-authentication failures: if the
// initial login or a mid-request re-login fails, no session exists and no
// meaningful envelope can be produced.
//
// # Usage Example
//
//	client, err := sunapi.NewClient(sunapi.Config{
//	    Host:     "192.168.1.100",
//	    Username: "admin",
//	    Password: "secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Logout(context.Background())
//
//	res, err := client.System().DeviceInfo(context.Background())
//	if err != nil {
//	    log.Fatal(err) // could not authenticate
//	}
//	if !res.Success {
//	    log.Fatalf("device error (%d): %s", res.StatusCode, res.Error)
//	}
//	fmt.Println(res.Data.Model, res.Data.FirmwareVersion)
//
// # Sessions
//
// A client logs in lazily on its first request and re-logs in when the
// device reports HTTP 401 or the stored token lifetime elapses. Several
// clients can share one login by injecting a common session manager:
//
//	shared := sunapi.NewSessionManager()
//	a, _ := sunapi.NewClient(cfg, sunapi.WithSession(shared))
//	b, _ := sunapi.NewClient(cfg, sunapi.WithSession(shared))
//
// # Response Normalization
//
// Device firmware returns the same logical field under different names
// depending on model and generation, numbers as strings, and booleans as
// "On"/"Off" toggles. Each endpoint declares a Schema mapping candidate
// source keys onto a typed record with fixed defaults, so callers never see
// the raw shapes.
//
// # Concurrency
//
// A client is safe for concurrent use. Two requests racing past the
// authentication check may each trigger a login; the last stored session
// wins. Requests are otherwise independent.
package sunapi
