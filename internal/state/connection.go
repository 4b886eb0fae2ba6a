package state

import (
	"errors"
	"fmt"

	"github.com/oxprint/oxdash/internal/api"
)

// ConnectionState is the derived backend reachability shown to the user.
type ConnectionState int

const (
	Checking ConnectionState = iota
	Connected
	Disconnected
	Error
)

var connectionNames = map[ConnectionState]string{
	Checking:     "checking",
	Connected:    "connected",
	Disconnected: "disconnected",
	Error:        "error",
}

var connectionLabels = map[ConnectionState]string{
	Checking:     "Checking...",
	Connected:    "Connected",
	Disconnected: "Disconnected",
	Error:        "Error",
}

func (c ConnectionState) String() string {
	if name, ok := connectionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ConnectionState(%d)", int(c))
}

// Label returns the short text shown next to the status indicator.
func (c ConnectionState) Label() string {
	if label, ok := connectionLabels[c]; ok {
		return label
	}
	return connectionLabels[Error]
}

// MarshalText implements encoding.TextMarshaler.
func (c ConnectionState) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Classify maps one poll outcome to a connection state. Transport failures
// and non-2xx responses are Disconnected; a reachable server that reports
// anything other than healthy, or answers with an undecodable body, is Error.
func Classify(result api.HealthCheckResult, err error) ConnectionState {
	if err != nil {
		if errors.Is(err, api.ErrMalformedResponse) {
			return Error
		}
		return Disconnected
	}
	if result.Healthy() {
		return Connected
	}
	return Error
}
