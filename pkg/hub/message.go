// Package hub provides a thread-safe websocket broadcast hub
// using the idiomatic Go channel-based fan-out pattern.
package hub

import "encoding/json"

// Event types published to debug clients.
const (
	EventTick   = "tick"
	EventStatus = "status"
)

// Message is an encoded event ready to be written to clients.
type Message struct {
	Region string // Used for client filters; empty reaches everyone
	Data   []byte
}

// Event is the JSON envelope every broadcast uses.
type Event struct {
	Type   string `json:"type"`
	Region string `json:"region,omitempty"`
	Data   any    `json:"data"`
}

// NewEventMessage encodes an event into a message.
func NewEventMessage(eventType, region string, data any) (Message, error) {
	b, err := json.Marshal(Event{Type: eventType, Region: region, Data: data})
	if err != nil {
		return Message{}, err
	}
	return Message{Region: region, Data: b}, nil
}
