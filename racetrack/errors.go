package racetrack

import (
	"errors"
	"fmt"
)

// An ArgumentError reports a request that the device cannot serve, such as an
// unknown strategy or an access port outside the track. It is returned before
// the offending operation touches the storage.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string {
	return e.Msg
}

func newArgumentError(format string, args ...any) error {
	return &ArgumentError{Msg: fmt.Sprintf(format, args...)}
}

// IsArgumentError reports whether err is, or wraps, an *ArgumentError.
func IsArgumentError(err error) bool {
	var ae *ArgumentError
	return errors.As(err, &ae)
}
