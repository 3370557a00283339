package sunapi

import (
	"reflect"
	"testing"
	"time"
)

func TestSchemaApply_KeyPriority(t *testing.T) {
	schema := Schema{
		{Target: "model", Keys: []string{"Model", "DeviceModel", "model"}, Coerce: AsString, Default: "Unknown"},
	}

	tests := []struct {
		name string
		raw  map[string]interface{}
		want string
	}{
		{
			name: "first key wins",
			raw:  map[string]interface{}{"Model": "XND-6080", "DeviceModel": "legacy"},
			want: "XND-6080",
		},
		{
			name: "falls through to second key",
			raw:  map[string]interface{}{"DeviceModel": "PNM-9000"},
			want: "PNM-9000",
		},
		{
			name: "null value counts as absent",
			raw:  map[string]interface{}{"Model": nil, "model": "QNV-7080R"},
			want: "QNV-7080R",
		},
		{
			name: "absent everywhere uses default",
			raw:  map[string]interface{}{},
			want: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := schema.Apply(tt.raw)
			if got["model"] != tt.want {
				t.Errorf("model = %v, want %v", got["model"], tt.want)
			}
		})
	}
}

func TestSchemaApply_CoercionFailureUsesDefault(t *testing.T) {
	schema := Schema{
		{Target: "uptime", Keys: []string{"Uptime"}, Coerce: AsInt, Default: 0},
	}

	got := schema.Apply(map[string]interface{}{"Uptime": "three days"})
	if got["uptime"] != 0 {
		t.Errorf("uptime = %v, want 0", got["uptime"])
	}
}

func TestObjects(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		wantLen int
	}{
		{
			name:    "single object wraps into one-element list",
			input:   map[string]interface{}{"Channel": float64(0)},
			wantLen: 1,
		},
		{
			name: "array passes through",
			input: []interface{}{
				map[string]interface{}{"Channel": float64(0)},
				map[string]interface{}{"Channel": float64(1)},
			},
			wantLen: 2,
		},
		{
			name:    "nil yields empty list",
			input:   nil,
			wantLen: 0,
		},
		{
			name:    "scalar yields empty list",
			input:   "garbage",
			wantLen: 0,
		},
		{
			name:    "non-object array entries are skipped",
			input:   []interface{}{"garbage", map[string]interface{}{"Channel": float64(2)}},
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Objects(tt.input)
			if len(got) != tt.wantLen {
				t.Errorf("len(Objects()) = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestAsString(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    string
		wantErr bool
	}{
		{name: "string passthrough", input: "XND-6080", want: "XND-6080"},
		{name: "integer number", input: float64(443), want: "443"},
		{name: "fractional number", input: 1.5, want: "1.5"},
		{name: "bool", input: true, want: "true"},
		{name: "object rejected", input: map[string]interface{}{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AsString(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AsString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("AsString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    int
		wantErr bool
	}{
		{name: "number", input: float64(3600), want: 3600},
		{name: "numeric string", input: "3600", want: 3600},
		{name: "padded numeric string", input: " 42 ", want: 42},
		{name: "non-numeric string", input: "soon", wantErr: true},
		{name: "bool rejected", input: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AsInt(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AsInt() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("AsInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAsBool(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    bool
		wantErr bool
	}{
		{name: "native true", input: true, want: true},
		{name: "On string", input: "On", want: true},
		{name: "True string", input: "True", want: true},
		{name: "numeric one string", input: "1", want: true},
		{name: "Enable string", input: "Enable", want: true},
		{name: "Off string", input: "Off", want: false},
		{name: "False string", input: "False", want: false},
		{name: "zero number", input: float64(0), want: false},
		{name: "nonzero number", input: float64(2), want: true},
		{name: "unrecognized string", input: "maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AsBool(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AsBool() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("AsBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAsTime(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    time.Time
		wantErr bool
	}{
		{
			name:  "RFC 3339",
			input: "2025-11-25T10:30:45Z",
			want:  time.Date(2025, 11, 25, 10, 30, 45, 0, time.UTC),
		},
		{
			name:  "legacy device format",
			input: "2025-11-25 10:30:45",
			want:  time.Date(2025, 11, 25, 10, 30, 45, 0, time.UTC),
		},
		{name: "garbage", input: "last tuesday", wantErr: true},
		{name: "non-string", input: float64(1732530645), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AsTime(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AsTime() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !got.(time.Time).Equal(tt.want) {
				t.Errorf("AsTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAsStringList(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    []string
		wantErr bool
	}{
		{
			name:  "array of strings",
			input: []interface{}{"H.264", "H.265"},
			want:  []string{"H.264", "H.265"},
		},
		{
			name:  "comma-joined string",
			input: "0, 1, 2",
			want:  []string{"0", "1", "2"},
		},
		{
			name:  "array of numbers",
			input: []interface{}{float64(1), float64(2)},
			want:  []string{"1", "2"},
		},
		{
			name:  "empty string yields empty list",
			input: "",
			want:  []string{},
		},
		{name: "object rejected", input: map[string]interface{}{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AsStringList(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AsStringList() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AsStringList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAsJSONList(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		wantLen int
	}{
		{
			name:    "stringified array parses",
			input:   `[{"type":"motion"},{"type":"tamper"}]`,
			wantLen: 2,
		},
		{
			name:    "malformed string degrades to empty",
			input:   "not json",
			wantLen: 0,
		},
		{
			name:    "real array passes through",
			input:   []interface{}{map[string]interface{}{"type": "motion"}},
			wantLen: 1,
		},
		{
			name:    "single object wraps",
			input:   map[string]interface{}{"type": "motion"},
			wantLen: 1,
		},
		{
			name:    "number degrades to empty",
			input:   float64(7),
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AsJSONList(tt.input)
			if err != nil {
				t.Fatalf("AsJSONList() error = %v, want nil", err)
			}
			if len(got.([]interface{})) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got.([]interface{})), tt.wantLen)
			}
		})
	}
}

func TestNormalize_TypedDecode(t *testing.T) {
	type record struct {
		Name    string   `json:"name"`
		Uptime  int      `json:"uptime"`
		Enabled bool     `json:"enabled"`
		Codecs  []string `json:"codecs"`
	}

	schema := Schema{
		{Target: "name", Keys: []string{"Name", "DeviceName"}, Coerce: AsString, Default: "Unknown"},
		{Target: "uptime", Keys: []string{"Uptime", "UpTime"}, Coerce: AsInt, Default: 0},
		{Target: "enabled", Keys: []string{"Enable"}, Coerce: AsBool, Default: false},
		{Target: "codecs", Keys: []string{"Codecs"}, Coerce: AsStringList, Default: []string{}},
	}

	raw := map[string]interface{}{
		"DeviceName": "Lobby",
		"UpTime":     "86400",
		"Enable":     "On",
		"Codecs":     []interface{}{"H.264", "MJPEG"},
	}

	got, err := Normalize[record](raw, schema)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	want := record{Name: "Lobby", Uptime: 86400, Enabled: true, Codecs: []string{"H.264", "MJPEG"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}
}

func BenchmarkSchemaApply(b *testing.B) {
	schema := Schema{
		{Target: "name", Keys: []string{"Name", "DeviceName"}, Coerce: AsString, Default: "Unknown"},
		{Target: "uptime", Keys: []string{"Uptime", "UpTime"}, Coerce: AsInt, Default: 0},
		{Target: "enabled", Keys: []string{"Enable"}, Coerce: AsBool, Default: false},
		{Target: "codecs", Keys: []string{"Codecs"}, Coerce: AsStringList, Default: []string{}},
	}
	raw := map[string]interface{}{
		"DeviceName": "Lobby",
		"UpTime":     "86400",
		"Enable":     "On",
		"Codecs":     []interface{}{"H.264", "MJPEG"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		schema.Apply(raw)
	}
}

func TestNormalize_EmptyPayloadUsesDefaults(t *testing.T) {
	type record struct {
		Name   string `json:"name"`
		Uptime int    `json:"uptime"`
	}

	schema := Schema{
		{Target: "name", Keys: []string{"Name"}, Coerce: AsString, Default: "Unknown"},
		{Target: "uptime", Keys: []string{"Uptime"}, Coerce: AsInt, Default: 0},
	}

	got, err := Normalize[record](map[string]interface{}{}, schema)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if got.Name != "Unknown" || got.Uptime != 0 {
		t.Errorf("Normalize() = %+v, want defaults", got)
	}
}
