package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"signaldesk/internal/core"
)

// ChangeMessage announces one successful mutation of a collection.
// Record carries the record as it was after the change, so consumers do
// not need access to the server's storage.
type ChangeMessage struct {
	Kind      string          `json:"kind"`
	Op        core.Op         `json:"op"`
	ID        string          `json:"id"`
	Summary   string          `json:"summary"`
	Timestamp time.Time       `json:"timestamp"`
	Record    json.RawMessage `json:"record,omitempty"`
}

var errIncompleteMessage = errors.New("message is missing kind, op or id")

func NewChangeMessage(ev core.ChangeEvent) *ChangeMessage {
	ts := ev.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &ChangeMessage{
		Kind:      ev.Kind,
		Op:        ev.Op,
		ID:        ev.ID,
		Summary:   ev.Summary,
		Timestamp: ts,
		Record:    json.RawMessage(ev.Record),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ToEvent converts the message back into a change event.
func (m *ChangeMessage) ToEvent() core.ChangeEvent {
	return core.ChangeEvent{
		Kind:    m.Kind,
		Op:      m.Op,
		ID:      m.ID,
		Summary: m.Summary,
		At:      m.Timestamp,
		Record:  []byte(m.Record),
	}
}

// ChangeMessageFromJSON decodes and checks a message body.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" || msg.Op == "" || msg.ID == "" {
		return nil, errIncompleteMessage
	}
	return &msg, nil
}
