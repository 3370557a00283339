// Package simulator implements an in-process SUNAPI device: the CGI
// control surface, token-based sessions, and the websocket event
// stream.
//
// The simulator backs two consumers. The sunapi-sim binary runs it as a
// standalone process for manual testing against the CLI, and the
// integration tests mount Handler on an httptest server to drive the
// client library end to end, including the re-login path via
// ExpireSessions.
//
// With LegacyKeys enabled the simulator answers with the field names of
// older firmware generations (abbreviated keys, numbers as strings,
// "On"/"Off" toggles), which exercises the client's response
// normalization.
package simulator
