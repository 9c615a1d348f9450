package main

import (
	"github.com/teslashibe/go-ptz/pkg/autotrack"
	"github.com/teslashibe/go-ptz/pkg/tracking"
	"github.com/teslashibe/go-ptz/pkg/web"
)

// tickMsg carries one debug event from the daemon.
type tickMsg struct {
	Region string
	Debug  tracking.Debug
}

// regionStatusMsg carries a status event pushed after a region changed.
type regionStatusMsg struct {
	Status autotrack.Status
}

// connMsg reports the debug stream's connection state.
type connMsg struct {
	Connected bool
	Err       error
}

// statusMsg carries a REST status poll.
type statusMsg struct {
	Status web.StatusResponse
	Err    error
}

// actionMsg reports the result of an enable/disable request.
type actionMsg struct {
	Region  string
	Enabled bool
	Err     error
}
