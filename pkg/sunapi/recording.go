package sunapi

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// Recording exposes recording state, manual record control, and stored
// footage search.
type Recording struct {
	client *Client
}

// Recording returns the recording feature module
func (c *Client) Recording() *Recording {
	return &Recording{client: c}
}

// RecordingStatus is the normalized per-channel recording state.
type RecordingStatus struct {
	Channel   int    `json:"channel"`
	Recording bool   `json:"recording"`
	Mode      string `json:"mode"`
}

var recordingStatusSchema = Schema{
	{Target: "channel", Keys: []string{"Channel", "channel"}, Coerce: AsInt, Default: 0},
	{Target: "recording", Keys: []string{"RecordingInProgress", "Recording", "recording"}, Coerce: AsBool, Default: false},
	{Target: "mode", Keys: []string{"RecordingMode", "Mode", "mode"}, Coerce: AsString, Default: "Unknown"},
}

// Status fetches the recording state of a channel
func (r *Recording) Status(ctx context.Context, channel int) (Result[RecordingStatus], error) {
	query := epRecordStatus.query(url.Values{"Channel": []string{strconv.Itoa(channel)}})
	res, err := get(ctx, r.client, epRecordStatus.path(), query)
	if err != nil || !res.Success {
		return forward[RecordingStatus](res), err
	}

	status, derr := Normalize[RecordingStatus](*res.Data, recordingStatusSchema)
	if derr != nil {
		return Fail[RecordingStatus](&Error{Kind: KindAPI, Message: "undecodable device response", Err: derr}), nil
	}
	return OK(status), nil
}

// Start begins manual recording on the channel
func (r *Recording) Start(ctx context.Context, channel int) (Result[Ack], error) {
	body := map[string]interface{}{
		"Channel": channel,
		"Mode":    "Start",
	}
	return post(ctx, r.client, epRecordControl.path(), body, epRecordControl.query(nil))
}

// Stop ends manual recording on the channel
func (r *Recording) Stop(ctx context.Context, channel int) (Result[Ack], error) {
	body := map[string]interface{}{
		"Channel": channel,
		"Mode":    "Stop",
	}
	return post(ctx, r.client, epRecordControl.path(), body, epRecordControl.query(nil))
}

// RecordingSegment is one stored footage interval returned by Search.
type RecordingSegment struct {
	ID      string    `json:"id"`
	Channel int       `json:"channel"`
	Type    string    `json:"type"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
}

var recordingSegmentSchema = Schema{
	{Target: "id", Keys: []string{"ResultID", "ID", "id"}, Coerce: AsString, Default: ""},
	{Target: "channel", Keys: []string{"Channel", "channel"}, Coerce: AsInt, Default: 0},
	{Target: "type", Keys: []string{"RecordingType", "Type", "type"}, Coerce: AsString, Default: "Unknown"},
	{Target: "from", Keys: []string{"StartTime", "FromDate", "from"}, Coerce: AsTime, Default: time.Time{}},
	{Target: "to", Keys: []string{"EndTime", "ToDate", "to"}, Coerce: AsTime, Default: time.Time{}},
}

// Search lists the stored footage intervals overlapping [from, to) on the
// channel. The range end must be after its start.
func (r *Recording) Search(ctx context.Context, channel int, from, to time.Time) (Result[[]RecordingSegment], error) {
	if !to.After(from) {
		return Fail[[]RecordingSegment](NewValidationError("search range end must be after its start")), nil
	}

	query := epRecordSearch.query(url.Values{
		"Channel":  []string{strconv.Itoa(channel)},
		"FromDate": []string{from.UTC().Format(deviceTimeLayout)},
		"ToDate":   []string{to.UTC().Format(deviceTimeLayout)},
	})
	res, err := get(ctx, r.client, epRecordSearch.path(), query)
	if err != nil || !res.Success {
		return forward[[]RecordingSegment](res), err
	}

	segments, derr := NormalizeList[RecordingSegment]((*res.Data)["Results"], recordingSegmentSchema)
	if derr != nil {
		return Fail[[]RecordingSegment](&Error{Kind: KindAPI, Message: "undecodable device response", Err: derr}), nil
	}
	return OK(segments), nil
}
