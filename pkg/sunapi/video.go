package sunapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Video exposes channel inventory, encoding profiles, and still capture.
type Video struct {
	client *Client
}

// Video returns the video feature module
func (c *Client) Video() *Video {
	return &Video{client: c}
}

// VideoSource is one normalized input channel.
type VideoSource struct {
	Channel    int    `json:"channel"`
	Name       string `json:"name"`
	Enabled    bool   `json:"enabled"`
	Resolution string `json:"resolution"`
}

var videoSourceSchema = Schema{
	{Target: "channel", Keys: []string{"Channel", "channel", "SourceIndex"}, Coerce: AsInt, Default: 0},
	{Target: "name", Keys: []string{"Name", "SourceName", "name"}, Coerce: AsString, Default: "Unknown"},
	{Target: "enabled", Keys: []string{"Enable", "Enabled", "enable"}, Coerce: AsBool, Default: false},
	{Target: "resolution", Keys: []string{"Resolution", "resolution"}, Coerce: AsString, Default: "Unknown"},
}

// VideoProfile is one normalized encoding profile.
type VideoProfile struct {
	Profile    int    `json:"profile"`
	Channel    int    `json:"channel"`
	Name       string `json:"name"`
	Codec      string `json:"codec"`
	Resolution string `json:"resolution"`
	FrameRate  int    `json:"frameRate"`
	Bitrate    int    `json:"bitrate"`
}

var videoProfileSchema = Schema{
	{Target: "profile", Keys: []string{"Profile", "ProfileID", "profile"}, Coerce: AsInt, Default: 0},
	{Target: "channel", Keys: []string{"Channel", "channel"}, Coerce: AsInt, Default: 0},
	{Target: "name", Keys: []string{"Name", "ProfileName", "name"}, Coerce: AsString, Default: "Unknown"},
	{Target: "codec", Keys: []string{"EncodingType", "Codec", "codec"}, Coerce: AsString, Default: "Unknown"},
	{Target: "resolution", Keys: []string{"Resolution", "resolution"}, Coerce: AsString, Default: "Unknown"},
	{Target: "frameRate", Keys: []string{"FrameRate", "Framerate", "frameRate"}, Coerce: AsInt, Default: 0},
	{Target: "bitrate", Keys: []string{"Bitrate", "BitRate", "bitrate"}, Coerce: AsInt, Default: 0},
}

// ListSources fetches the device input channels. Single-channel devices
// return the source as a bare object; it is coerced to a one-element list.
func (v *Video) ListSources(ctx context.Context) (Result[[]VideoSource], error) {
	res, err := get(ctx, v.client, epVideoSources.path(), epVideoSources.query(nil))
	if err != nil || !res.Success {
		return forward[[]VideoSource](res), err
	}

	sources, derr := NormalizeList[VideoSource]((*res.Data)["VideoSources"], videoSourceSchema)
	if derr != nil {
		return Fail[[]VideoSource](&Error{Kind: KindAPI, Message: "undecodable device response", Err: derr}), nil
	}
	return OK(sources), nil
}

// ListProfiles fetches the encoding profiles across all channels
func (v *Video) ListProfiles(ctx context.Context) (Result[[]VideoProfile], error) {
	res, err := get(ctx, v.client, epVideoProfiles.path(), epVideoProfiles.query(nil))
	if err != nil || !res.Success {
		return forward[[]VideoProfile](res), err
	}

	profiles, derr := NormalizeList[VideoProfile]((*res.Data)["VideoProfiles"], videoProfileSchema)
	if derr != nil {
		return Fail[[]VideoProfile](&Error{Kind: KindAPI, Message: "undecodable device response", Err: derr}), nil
	}
	return OK(profiles), nil
}

// Snapshot captures a still JPEG from the given channel
func (v *Video) Snapshot(ctx context.Context, channel int) (Result[Binary], error) {
	if channel < 0 {
		return Fail[Binary](NewValidationError(fmt.Sprintf("channel must not be negative, got %d", channel))), nil
	}

	query := epSnapshot.query(url.Values{"Channel": []string{strconv.Itoa(channel)}})
	return v.client.RawBytes(ctx, http.MethodGet, epSnapshot.path(), query)
}
