package sunapi

import "net/url"

// Device control endpoints follow the /stw-cgi/<module>.cgi convention,
// with msubmenu and action query parameters selecting the operation.

const cgiPrefix = "/stw-cgi/"

// eventStreamPath is the WebSocket endpoint for pushed events
const eventStreamPath = "/stw-cgi/eventstream"

type endpoint struct {
	module  string
	submenu string
	action  string
}

// path returns the CGI path for the endpoint's module
func (e endpoint) path() string {
	return cgiPrefix + e.module + ".cgi"
}

// query builds the selector parameters, merged with any extra values
func (e endpoint) query(extra url.Values) url.Values {
	q := url.Values{}
	q.Set("msubmenu", e.submenu)
	q.Set("action", e.action)
	for key, values := range extra {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	return q
}

var (
	epLogin  = endpoint{"attributes", "auth", "login"}
	epLogout = endpoint{"attributes", "auth", "logout"}

	epDeviceInfo     = endpoint{"system", "deviceinfo", "view"}
	epReboot         = endpoint{"system", "reboot", "control"}
	epFactoryDefault = endpoint{"system", "factorydefault", "control"}
	epDateView       = endpoint{"system", "date", "view"}
	epDateSet        = endpoint{"system", "date", "set"}

	epVideoSources  = endpoint{"media", "videosource", "view"}
	epVideoProfiles = endpoint{"media", "videoprofile", "view"}
	epSnapshot      = endpoint{"video", "snapshot", "view"}

	epPTZContinuous = endpoint{"ptzcontrol", "continuous", "control"}
	epPTZStop       = endpoint{"ptzcontrol", "stop", "control"}
	epPTZHome       = endpoint{"ptzcontrol", "home", "control"}
	epPresetGoto    = endpoint{"ptzcontrol", "preset", "control"}
	epPresetList    = endpoint{"ptzconfig", "preset", "view"}
	epPresetAdd     = endpoint{"ptzconfig", "preset", "add"}
	epPresetRemove  = endpoint{"ptzconfig", "preset", "remove"}

	epEventStatus = endpoint{"eventstatus", "eventstatus", "view"}
	epEventRules  = endpoint{"eventrules", "rule", "view"}
	epAlarmOutput = endpoint{"io", "alarmoutput", "control"}

	epRecordStatus  = endpoint{"recording", "general", "view"}
	epRecordControl = endpoint{"recording", "record", "control"}
	epRecordSearch  = endpoint{"recording", "search", "view"}
)
