package sunapi

import (
	"context"
	"time"
)

// System exposes device-level operations: identity, clock, and power
// control.
type System struct {
	client *Client
}

// System returns the system feature module
func (c *Client) System() *System {
	return &System{client: c}
}

// DeviceInfo is the normalized device identity record.
type DeviceInfo struct {
	DeviceName      string `json:"deviceName"`
	Model           string `json:"model"`
	SerialNumber    string `json:"serialNumber"`
	FirmwareVersion string `json:"firmwareVersion"`
	MACAddress      string `json:"macAddress"`
	Uptime          int    `json:"uptime"`
}

// deviceInfoSchema tolerates the key variants seen across firmware
// generations. Identity fields default to "Unknown" so a sparse response
// still yields a complete record.
var deviceInfoSchema = Schema{
	{Target: "deviceName", Keys: []string{"DeviceName", "deviceName", "Name"}, Coerce: AsString, Default: "Unknown"},
	{Target: "model", Keys: []string{"Model", "DeviceModel", "model"}, Coerce: AsString, Default: "Unknown"},
	{Target: "serialNumber", Keys: []string{"SerialNumber", "serialNum", "serial"}, Coerce: AsString, Default: "Unknown"},
	{Target: "firmwareVersion", Keys: []string{"FirmwareVersion", "firmwareVer", "SWVersion"}, Coerce: AsString, Default: "Unknown"},
	{Target: "macAddress", Keys: []string{"ConnectedMACAddress", "MACAddress", "macAddr"}, Coerce: AsString, Default: "Unknown"},
	{Target: "uptime", Keys: []string{"UpTime", "Uptime", "uptime"}, Coerce: AsInt, Default: 0},
}

// DeviceInfo fetches and normalizes the device identity
func (s *System) DeviceInfo(ctx context.Context) (Result[DeviceInfo], error) {
	res, err := get(ctx, s.client, epDeviceInfo.path(), epDeviceInfo.query(nil))
	if err != nil || !res.Success {
		return forward[DeviceInfo](res), err
	}

	info, derr := Normalize[DeviceInfo](*res.Data, deviceInfoSchema)
	if derr != nil {
		return Fail[DeviceInfo](&Error{Kind: KindAPI, Message: "undecodable device response", Err: derr}), nil
	}
	return OK(info), nil
}

// Reboot restarts the device. The session usually survives a reboot but
// requests issued while the device is down fail as connection errors.
func (s *System) Reboot(ctx context.Context) (Result[Ack], error) {
	return post(ctx, s.client, epReboot.path(), nil, epReboot.query(nil))
}

// FactoryDefault resets the device to factory settings
func (s *System) FactoryDefault(ctx context.Context) (Result[Ack], error) {
	return post(ctx, s.client, epFactoryDefault.path(), nil, epFactoryDefault.query(nil))
}

// DeviceTime is the normalized device clock record.
type DeviceTime struct {
	Time     time.Time `json:"time"`
	Timezone string    `json:"timezone"`
	SyncMode string    `json:"syncMode"`
}

var deviceTimeSchema = Schema{
	{Target: "time", Keys: []string{"LocalTime", "CurrentTime", "localTime"}, Coerce: AsTime, Default: time.Time{}},
	{Target: "timezone", Keys: []string{"TimeZone", "Timezone", "timezone"}, Coerce: AsString, Default: "Unknown"},
	{Target: "syncMode", Keys: []string{"SyncType", "SyncMode", "syncMode"}, Coerce: AsString, Default: "Unknown"},
}

// Date fetches the device clock
func (s *System) Date(ctx context.Context) (Result[DeviceTime], error) {
	res, err := get(ctx, s.client, epDateView.path(), epDateView.query(nil))
	if err != nil || !res.Success {
		return forward[DeviceTime](res), err
	}

	clock, derr := Normalize[DeviceTime](*res.Data, deviceTimeSchema)
	if derr != nil {
		return Fail[DeviceTime](&Error{Kind: KindAPI, Message: "undecodable device response", Err: derr}), nil
	}
	return OK(clock), nil
}

// SetDate sets the device clock and timezone
func (s *System) SetDate(ctx context.Context, t time.Time, timezone string) (Result[Ack], error) {
	body := map[string]interface{}{
		"LocalTime": t.Format(deviceTimeLayout),
	}
	if timezone != "" {
		body["TimeZone"] = timezone
	}
	return post(ctx, s.client, epDateSet.path(), body, epDateSet.query(nil))
}
