package amqp

import (
	"encoding/json"
	"time"
)

// MovementChangeMessage announces that a movement was created, edited or
// voided. Consumers refresh the local snapshot from the record store; the
// message carries identity only, never the data.
type MovementChangeMessage struct {
	ID        string    `json:"id"`
	Row       int       `json:"row,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMovementChangeMessage(id string, row int) *MovementChangeMessage {
	return &MovementChangeMessage{ID: id, Row: row, Timestamp: time.Now()}
}

func (m *MovementChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MovementChangeMessageFromJSON(data []byte) (*MovementChangeMessage, error) {
	var msg MovementChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
