package sunapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// PTZ exposes pan/tilt/zoom movement and preset positions.
type PTZ struct {
	client *Client
}

// PTZ returns the pan/tilt/zoom feature module
func (c *Client) PTZ() *PTZ {
	return &PTZ{client: c}
}

// Velocity bounds for continuous movement, in device units.
const (
	MinVelocity = -100
	MaxVelocity = 100
)

func checkVelocity(axis string, v int) error {
	if v < MinVelocity || v > MaxVelocity {
		return NewValidationError(fmt.Sprintf("%s velocity must be between %d and %d, got %d", axis, MinVelocity, MaxVelocity, v))
	}
	return nil
}

// Move starts continuous movement at the given axis velocities. Movement
// continues until Stop is called. Velocities outside [-100, 100] fail
// validation before any request is issued.
func (p *PTZ) Move(ctx context.Context, channel, pan, tilt, zoom int) (Result[Ack], error) {
	for axis, v := range map[string]int{"pan": pan, "tilt": tilt, "zoom": zoom} {
		if err := checkVelocity(axis, v); err != nil {
			return Fail[Ack](err), nil
		}
	}

	body := map[string]interface{}{
		"Channel": channel,
		"Pan":     pan,
		"Tilt":    tilt,
		"Zoom":    zoom,
	}
	return post(ctx, p.client, epPTZContinuous.path(), body, epPTZContinuous.query(nil))
}

// Stop halts all movement on the channel
func (p *PTZ) Stop(ctx context.Context, channel int) (Result[Ack], error) {
	body := map[string]interface{}{
		"Channel":       channel,
		"OperationType": "All",
	}
	return post(ctx, p.client, epPTZStop.path(), body, epPTZStop.query(nil))
}

// Home moves the channel to its home position
func (p *PTZ) Home(ctx context.Context, channel int) (Result[Ack], error) {
	body := map[string]interface{}{
		"Channel": channel,
	}
	return post(ctx, p.client, epPTZHome.path(), body, epPTZHome.query(nil))
}

// Preset is one normalized stored position.
type Preset struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

var presetSchema = Schema{
	{Target: "number", Keys: []string{"Preset", "Number", "preset"}, Coerce: AsInt, Default: 0},
	{Target: "name", Keys: []string{"Name", "PresetName", "name"}, Coerce: AsString, Default: "Unknown"},
}

// ListPresets fetches the stored positions for the channel
func (p *PTZ) ListPresets(ctx context.Context, channel int) (Result[[]Preset], error) {
	query := epPresetList.query(url.Values{"Channel": []string{strconv.Itoa(channel)}})
	res, err := get(ctx, p.client, epPresetList.path(), query)
	if err != nil || !res.Success {
		return forward[[]Preset](res), err
	}

	presets, derr := NormalizeList[Preset]((*res.Data)["Presets"], presetSchema)
	if derr != nil {
		return Fail[[]Preset](&Error{Kind: KindAPI, Message: "undecodable device response", Err: derr}), nil
	}
	return OK(presets), nil
}

// SetPreset stores the current position under the given preset number
func (p *PTZ) SetPreset(ctx context.Context, channel, number int, name string) (Result[Ack], error) {
	if number < 1 {
		return Fail[Ack](NewValidationError(fmt.Sprintf("preset number must be positive, got %d", number))), nil
	}

	body := map[string]interface{}{
		"Channel": channel,
		"Preset":  number,
	}
	if name != "" {
		body["Name"] = name
	}
	return post(ctx, p.client, epPresetAdd.path(), body, epPresetAdd.query(nil))
}

// GotoPreset moves the channel to a stored position
func (p *PTZ) GotoPreset(ctx context.Context, channel, number int) (Result[Ack], error) {
	if number < 1 {
		return Fail[Ack](NewValidationError(fmt.Sprintf("preset number must be positive, got %d", number))), nil
	}

	body := map[string]interface{}{
		"Channel": channel,
		"Preset":  number,
	}
	return post(ctx, p.client, epPresetGoto.path(), body, epPresetGoto.query(nil))
}

// RemovePreset deletes a stored position
func (p *PTZ) RemovePreset(ctx context.Context, channel, number int) (Result[Ack], error) {
	if number < 1 {
		return Fail[Ack](NewValidationError(fmt.Sprintf("preset number must be positive, got %d", number))), nil
	}

	body := map[string]interface{}{
		"Channel": channel,
		"Preset":  number,
	}
	return post(ctx, p.client, epPresetRemove.path(), body, epPresetRemove.query(nil))
}
