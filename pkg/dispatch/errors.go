package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueFull is returned when an AsyncSink drops a batch.
	ErrQueueFull = errors.New("dispatch: queue full")
	// ErrClosed is returned when sending to a closed sink.
	ErrClosed = errors.New("dispatch: sink closed")
)

// StatusError is returned when the PTZ backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
	RequestID  string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("dispatch: backend returned %d (request %s)", e.StatusCode, e.RequestID)
	}
	return fmt.Sprintf("dispatch: backend returned %d (request %s): %s", e.StatusCode, e.RequestID, e.Body)
}
