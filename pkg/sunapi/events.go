package sunapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jacobrsyntaxindustries/sunapi-go/internal/logging"
	"go.uber.org/zap"
)

// Events exposes detector status polling, rule inspection, alarm output
// control, and the pushed event stream.
type Events struct {
	client *Client
}

// Events returns the event feature module
func (c *Client) Events() *Events {
	return &Events{client: c}
}

// EventStatus is the normalized snapshot of the detector states.
type EventStatus struct {
	Motion     bool      `json:"motion"`
	Tampering  bool      `json:"tampering"`
	AlarmInput bool      `json:"alarmInput"`
	Time       time.Time `json:"time"`
}

var eventStatusSchema = Schema{
	{Target: "motion", Keys: []string{"MotionDetection", "Motion", "motion"}, Coerce: AsBool, Default: false},
	{Target: "tampering", Keys: []string{"Tampering", "TamperingDetection", "tampering"}, Coerce: AsBool, Default: false},
	{Target: "alarmInput", Keys: []string{"AlarmInput", "alarmInput"}, Coerce: AsBool, Default: false},
	{Target: "time", Keys: []string{"EventTime", "Time", "time"}, Coerce: AsTime, Default: time.Time{}},
}

// Status polls the current detector states
func (e *Events) Status(ctx context.Context) (Result[EventStatus], error) {
	res, err := get(ctx, e.client, epEventStatus.path(), epEventStatus.query(nil))
	if err != nil || !res.Success {
		return forward[EventStatus](res), err
	}

	status, derr := Normalize[EventStatus](*res.Data, eventStatusSchema)
	if derr != nil {
		return Fail[EventStatus](&Error{Kind: KindAPI, Message: "undecodable device response", Err: derr}), nil
	}
	return OK(status), nil
}

// EventRule is one normalized event handling rule. Conditions arrive from
// some firmware as stringified JSON; malformed blobs degrade to an empty
// list.
type EventRule struct {
	Index      int           `json:"index"`
	Name       string        `json:"name"`
	Enabled    bool          `json:"enabled"`
	Conditions []interface{} `json:"conditions"`
	Actions    []string      `json:"actions"`
}

var eventRuleSchema = Schema{
	{Target: "index", Keys: []string{"Index", "RuleIndex", "index"}, Coerce: AsInt, Default: 0},
	{Target: "name", Keys: []string{"Name", "RuleName", "name"}, Coerce: AsString, Default: "Unknown"},
	{Target: "enabled", Keys: []string{"Enable", "Enabled", "enable"}, Coerce: AsBool, Default: false},
	{Target: "conditions", Keys: []string{"Conditions", "conditions"}, Coerce: AsJSONList, Default: []interface{}{}},
	{Target: "actions", Keys: []string{"Actions", "actions"}, Coerce: AsStringList, Default: []string{}},
}

// Rules fetches the configured event handling rules
func (e *Events) Rules(ctx context.Context) (Result[[]EventRule], error) {
	res, err := get(ctx, e.client, epEventRules.path(), epEventRules.query(nil))
	if err != nil || !res.Success {
		return forward[[]EventRule](res), err
	}

	rules, derr := NormalizeList[EventRule]((*res.Data)["Rules"], eventRuleSchema)
	if derr != nil {
		return Fail[[]EventRule](&Error{Kind: KindAPI, Message: "undecodable device response", Err: derr}), nil
	}
	return OK(rules), nil
}

// SetAlarmOutput switches a relay output on or off. Outputs are numbered
// from 1.
func (e *Events) SetAlarmOutput(ctx context.Context, output int, active bool) (Result[Ack], error) {
	if output < 1 {
		return Fail[Ack](NewValidationError(fmt.Sprintf("alarm output must be positive, got %d", output))), nil
	}

	state := "Off"
	if active {
		state = "On"
	}
	body := map[string]interface{}{
		"AlarmOutput": output,
		"State":       state,
	}
	return post(ctx, e.client, epAlarmOutput.path(), body, epAlarmOutput.query(nil))
}

// Event is one notification pushed on the device stream.
type Event struct {
	Type    string    `json:"type"`
	Channel int       `json:"channel"`
	Active  bool      `json:"active"`
	Time    time.Time `json:"time"`
}

var eventSchema = Schema{
	{Target: "type", Keys: []string{"EventType", "Type", "type"}, Coerce: AsString, Default: "Unknown"},
	{Target: "channel", Keys: []string{"Channel", "channel"}, Coerce: AsInt, Default: 0},
	{Target: "active", Keys: []string{"State", "Active", "active"}, Coerce: AsBool, Default: false},
	{Target: "time", Keys: []string{"Time", "EventTime", "time"}, Coerce: AsTime, Default: time.Time{}},
}

// Watch opens the pushed event stream and delivers normalized events until
// ctx is cancelled or the device closes the stream. The returned channel is
// closed when the stream ends. Messages that do not parse as events are
// discarded.
//
// The stream is authenticated with the current session but is not part of
// the request pipeline: a rejected upgrade surfaces as the returned error,
// and an expiring token mid-stream closes the stream rather than
// re-authenticating.
func (e *Events) Watch(ctx context.Context) (<-chan Event, error) {
	if err := e.client.EnsureAuthenticated(ctx); err != nil {
		return nil, err
	}

	header := http.Header{}
	if session, ok := e.client.sessions.Current(); ok {
		header.Set("Authorization", "Bearer "+session.Token)
		if session.SessionID != "" {
			header.Set("X-Session-ID", session.SessionID)
		}
	}

	scheme := "ws"
	if e.client.config.Protocol == "https" {
		scheme = "wss"
	}
	wsURL := fmt.Sprintf("%s://%s:%d%s", scheme, e.client.config.Host, e.client.config.Port, eventStreamPath)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, ClassifyStatus(resp.StatusCode, nil)
		}
		return nil, NewConnectionError("failed to open event stream", err, e.client.config.Host)
	}
	logging.Debug("Event stream opened", zap.String("url", wsURL))

	events := make(chan Event)
	done := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = conn.Close()
	}()

	go func() {
		defer close(events)
		defer close(done)
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				logging.Debug("Event stream closed", zap.Error(err))
				return
			}

			var raw map[string]interface{}
			if err := json.Unmarshal(payload, &raw); err != nil {
				logging.Debug("Discarding unparseable event", zap.Error(err))
				continue
			}
			ev, err := Normalize[Event](raw, eventSchema)
			if err != nil {
				continue
			}

			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}
