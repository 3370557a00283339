package sunapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// ptzServer builds a fake device that accepts any login and records PTZ
// control bodies.
func ptzServer(t *testing.T, calls *int, lastBody *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"AccessToken": "tok-1"})
		default:
			*calls++
			var body map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			*lastBody = body
			w.WriteHeader(http.StatusOK)
		}
	}))
}

func TestMove_SendsVelocities(t *testing.T) {
	var calls int
	var body map[string]interface{}
	server := ptzServer(t, &calls, &body)
	defer server.Close()

	client := mustClient(t, server.URL, "admin", "secret")
	res, err := client.PTZ().Move(context.Background(), 0, 50, -25, 10)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if body["Pan"] != float64(50) || body["Tilt"] != float64(-25) || body["Zoom"] != float64(10) {
		t.Errorf("body = %v", body)
	}
}

func TestMove_VelocityValidation(t *testing.T) {
	var calls int
	var body map[string]interface{}
	server := ptzServer(t, &calls, &body)
	defer server.Close()

	client := mustClient(t, server.URL, "admin", "secret")

	tests := []struct {
		name            string
		pan, tilt, zoom int
		wantOK          bool
	}{
		{"all zero", 0, 0, 0, true},
		{"boundary low", -100, -100, -100, true},
		{"boundary high", 100, 100, 100, true},
		{"pan too high", 101, 0, 0, false},
		{"tilt too low", 0, -101, 0, false},
		{"zoom too high", 0, 0, 150, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := calls
			res, err := client.PTZ().Move(context.Background(), 0, tt.pan, tt.tilt, tt.zoom)
			if err != nil {
				t.Fatalf("Move: %v", err)
			}
			if res.Success != tt.wantOK {
				t.Errorf("Success = %v, want %v (error %q)", res.Success, tt.wantOK, res.Error)
			}
			if !tt.wantOK && calls != before {
				t.Error("invalid velocities must not reach the device")
			}
		})
	}
}

func TestStopAndHome(t *testing.T) {
	var calls int
	var body map[string]interface{}
	server := ptzServer(t, &calls, &body)
	defer server.Close()

	client := mustClient(t, server.URL, "admin", "secret")

	res, err := client.PTZ().Stop(context.Background(), 3)
	if err != nil || !res.Success {
		t.Fatalf("Stop: err=%v success=%v", err, res.Success)
	}
	if body["Channel"] != float64(3) || body["OperationType"] != "All" {
		t.Errorf("stop body = %v", body)
	}

	res, err = client.PTZ().Home(context.Background(), 3)
	if err != nil || !res.Success {
		t.Fatalf("Home: err=%v success=%v", err, res.Success)
	}
	if body["Channel"] != float64(3) {
		t.Errorf("home body = %v", body)
	}
}

func TestListPresets_Normalizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"AccessToken": "tok-1"})
		case "/stw-cgi/ptzconfig.cgi":
			_, _ = w.Write([]byte(`{
				"Presets": [
					{"Preset": 1, "Name": "Gate"},
					{"Preset": "2", "Name": "Loading Dock"},
					{"Preset": 3}
				]
			}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := mustClient(t, server.URL, "admin", "secret")
	res, err := client.PTZ().ListPresets(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListPresets: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}

	presets := *res.Data
	if len(presets) != 3 {
		t.Fatalf("len(presets) = %d, want 3", len(presets))
	}
	if presets[0].Number != 1 || presets[0].Name != "Gate" {
		t.Errorf("presets[0] = %+v", presets[0])
	}
	if presets[1].Number != 2 || presets[1].Name != "Loading Dock" {
		t.Errorf("presets[1] = %+v", presets[1])
	}
	if presets[2].Number != 3 || presets[2].Name != "Unknown" {
		t.Errorf("presets[2] = %+v", presets[2])
	}
}

func TestPresetOperations_ValidateNumber(t *testing.T) {
	var calls int
	var body map[string]interface{}
	server := ptzServer(t, &calls, &body)
	defer server.Close()

	client := mustClient(t, server.URL, "admin", "secret")
	ptz := client.PTZ()
	ctx := context.Background()

	for name, op := range map[string]func() (Result[Ack], error){
		"set":    func() (Result[Ack], error) { return ptz.SetPreset(ctx, 0, 0, "x") },
		"goto":   func() (Result[Ack], error) { return ptz.GotoPreset(ctx, 0, -1) },
		"remove": func() (Result[Ack], error) { return ptz.RemovePreset(ctx, 0, 0) },
	} {
		res, err := op()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if res.Success {
			t.Errorf("%s: expected validation failure", name)
		}
	}
	if calls != 0 {
		t.Errorf("server saw %d calls, want 0", calls)
	}
}

func TestGotoPreset_SendsPresetNumber(t *testing.T) {
	var calls int
	var body map[string]interface{}
	server := ptzServer(t, &calls, &body)
	defer server.Close()

	client := mustClient(t, server.URL, "admin", "secret")
	res, err := client.PTZ().GotoPreset(context.Background(), 1, 7)
	if err != nil || !res.Success {
		t.Fatalf("GotoPreset: err=%v success=%v", err, res.Success)
	}
	if body["Channel"] != float64(1) || body["Preset"] != float64(7) {
		t.Errorf("body = %v", body)
	}
}
