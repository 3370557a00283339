package sunapi

import "errors"

// Result is the uniform envelope returned by every device operation.
// Success=false implies Data is absent and Error carries the classified
// message. StatusCode is the HTTP status of the response, or 0 when the
// request never reached the device.
type Result[T any] struct {
	Success    bool   `json:"success"`
	Data       *T     `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// Ack is the empty payload for operations that acknowledge without data.
type Ack struct{}

// OK wraps data in a successful envelope
func OK[T any](data T) Result[T] {
	return Result[T]{
		Success: true,
		Data:    &data,
	}
}

// Fail wraps a failure in an envelope. Classified errors contribute their
// status code; anything else reports status 0.
func Fail[T any](err error) Result[T] {
	res := Result[T]{
		Success: false,
		Error:   err.Error(),
	}
	var clsErr *Error
	if errors.As(err, &clsErr) {
		res.StatusCode = clsErr.StatusCode
	}
	return res
}

// forward carries a failed envelope across payload types, preserving the
// error message and status code.
func forward[T, U any](res Result[U]) Result[T] {
	return Result[T]{
		Error:      res.Error,
		StatusCode: res.StatusCode,
	}
}
