// Package logging provides structured logging for the SUNAPI tools.
//
// This package wraps zap logger with convenience functions for common logging
// patterns shared by the client library, the CLI, and the device simulator.
// It provides both general logging functions and specialized functions for
// request/response logging.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (request URLs, response timings)
//   - Info: Normal operations (connections, re-authentication, state changes)
//   - Warn: Non-fatal issues (connection drops, retries)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Camera connected",
//	    zap.String("address", "192.168.1.100"),
//	    zap.String("model", "XND-6080"),
//	    zap.String("firmware", "1.41.02"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
// Client Request Logging:
//
//	logging.LogRequest("GET", url)
//	logging.LogResponse("GET", url, statusCode, duration)
//	logging.LogRelogin(url)
//
// Simulator Logging:
//
//	logging.LogConnection(remoteAddr, "stream_subscribed")
//	logging.LogHTTPRequest(remoteAddr, "POST", path)
//	logging.LogHTTPResponse(remoteAddr, statusCode)
//	logging.LogEventPush(remoteAddr, "MotionDetection")
//
// # Configuration
//
// Logging is silent by default so that command output stays clean. Set the
// SUNAPI_LOG_LEVEL environment variable to enable it:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Output Format
//
// Logs are written to stderr in console format (human-readable), leaving
// stdout for command output:
//
//	2025-11-25T10:30:45.123-0800  INFO  Session rejected, re-authenticating
//	  url=http://192.168.1.100/stw-cgi/system.cgi
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
