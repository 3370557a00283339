package sunapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Normalization of raw device payloads.
//
// Device firmware returns the same logical field under different names
// depending on model and firmware generation (camelCase, PascalCase, or
// legacy abbreviations), numbers as strings, booleans as "On"/"Off", and
// embedded lists as stringified JSON. Each endpoint declares a Schema that
// maps this mess onto a stable record.

// Coercion converts a raw JSON value into its normalized representation.
// Returning an error selects the field's default instead of failing the
// whole record.
type Coercion func(v interface{}) (interface{}, error)

// Field declares how one normalized field is derived from a raw payload.
// Keys are tried in order; the first key present with a non-null value wins.
type Field struct {
	Target  string      // key in the normalized record
	Keys    []string    // candidate source keys, highest priority first
	Coerce  Coercion    // applied to the winning value
	Default interface{} // used when no key is present or coercion fails
}

// Schema is the normalization table for one entity.
type Schema []Field

// Apply maps a raw payload onto a normalized record. Missing keys and
// uncoercible values fall back to the field defaults, so Apply never fails.
func (s Schema) Apply(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(s))
	for _, f := range s {
		out[f.Target] = f.resolve(raw)
	}
	return out
}

func (f Field) resolve(raw map[string]interface{}) interface{} {
	for _, key := range f.Keys {
		v, present := raw[key]
		if !present || v == nil {
			continue
		}
		if f.Coerce == nil {
			return v
		}
		coerced, err := f.Coerce(v)
		if err != nil {
			return f.Default
		}
		return coerced
	}
	return f.Default
}

// Objects coerces an entity that may arrive as a single object or as a list
// of objects into a slice. Devices with one channel return the bare object
// where multi-channel devices return an array.
func Objects(v interface{}) []map[string]interface{} {
	switch t := v.(type) {
	case nil:
		return []map[string]interface{}{}
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
		return out
	case map[string]interface{}:
		return []map[string]interface{}{t}
	default:
		return []map[string]interface{}{}
	}
}

// Decode converts a normalized record into a typed struct. The record's
// target keys must match the struct's json tags.
func Decode[T any](record map[string]interface{}) (T, error) {
	var out T
	blob, err := json.Marshal(record)
	if err != nil {
		return out, fmt.Errorf("failed to encode normalized record: %w", err)
	}
	if err := json.Unmarshal(blob, &out); err != nil {
		return out, fmt.Errorf("failed to decode normalized record: %w", err)
	}
	return out, nil
}

// Normalize applies a schema to a raw payload and decodes the result into
// a typed record in one step.
func Normalize[T any](raw map[string]interface{}, schema Schema) (T, error) {
	return Decode[T](schema.Apply(raw))
}

// NormalizeList applies a schema to an entity that may arrive as a single
// object or a list of objects, yielding a typed slice. A nil value yields
// an empty slice.
func NormalizeList[T any](v interface{}, schema Schema) ([]T, error) {
	items := Objects(v)
	out := make([]T, 0, len(items))
	for _, item := range items {
		rec, err := Normalize[T](item, schema)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Coercions shared by the endpoint schemas.

// AsString coerces scalar values to their string form
func AsString(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		// JSON numbers decode as float64; render integers without decimals
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), nil
		}
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return nil, fmt.Errorf("cannot coerce %T to string", v)
	}
}

// AsInt coerces numbers and numeric strings to int
func AsInt(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil, fmt.Errorf("cannot coerce %q to int", t)
		}
		return n, nil
	case int:
		return t, nil
	default:
		return nil, fmt.Errorf("cannot coerce %T to int", v)
	}
}

// AsFloat coerces numbers and numeric strings to float64
func AsFloat(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot coerce %q to float", t)
		}
		return f, nil
	case int:
		return float64(t), nil
	default:
		return nil, fmt.Errorf("cannot coerce %T to float", v)
	}
}

// AsBool coerces native booleans, toggle strings ("On", "True", "1", "Yes",
// "Enable", "Enabled"), and numbers to bool
func AsBool(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case float64:
		return t != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "on", "true", "1", "yes", "enable", "enabled":
			return true, nil
		case "off", "false", "0", "no", "disable", "disabled":
			return false, nil
		default:
			return nil, fmt.Errorf("cannot coerce %q to bool", t)
		}
	default:
		return nil, fmt.Errorf("cannot coerce %T to bool", v)
	}
}

// deviceTimeLayout is the timestamp format used by camera firmware that
// predates RFC 3339 support.
const deviceTimeLayout = "2006-01-02 15:04:05"

// AsTime coerces RFC 3339 and legacy device timestamps to time.Time
func AsTime(v interface{}) (interface{}, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("cannot coerce %T to time", v)
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(deviceTimeLayout, s); err == nil {
		return ts.UTC(), nil
	}
	return nil, fmt.Errorf("cannot coerce %q to time", s)
}

// AsStringList coerces an array of scalars or a comma-joined string to a
// list of strings
func AsStringList(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, err := AsString(item)
			if err != nil {
				return nil, err
			}
			out = append(out, s.(string))
		}
		return out, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return []string{}, nil
		}
		parts := strings.Split(t, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot coerce %T to string list", v)
	}
}

// AsJSONList coerces an embedded list that may arrive as a real array, a
// single object, or a stringified JSON blob. Malformed blobs degrade to an
// empty list rather than failing the record.
func AsJSONList(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case []interface{}:
		return t, nil
	case map[string]interface{}:
		return []interface{}{t}, nil
	case string:
		var out []interface{}
		if err := json.Unmarshal([]byte(t), &out); err != nil {
			// Firmware occasionally emits truncated rule blobs
			return []interface{}{}, nil
		}
		return out, nil
	default:
		return []interface{}{}, nil
	}
}
