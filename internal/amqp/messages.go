package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kinds of stored input a DocumentUpdatedMessage refers to.
const (
	KindAggregated = "aggregated"
	KindDocument   = "document"
	KindPlan       = "plan"
	KindTexts      = "texts"
)

// DocumentUpdatedMessage announces that a stored input changed. Year 0 means
// the change is not tied to a single year.
type DocumentUpdatedMessage struct {
	Year      int       `json:"year"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDocumentUpdatedMessage(year int, kind string) *DocumentUpdatedMessage {
	return &DocumentUpdatedMessage{
		Year:      year,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

// Validate checks the kind and year.
func (m *DocumentUpdatedMessage) Validate() error {
	switch m.Kind {
	case KindAggregated, KindDocument, KindPlan, KindTexts:
	default:
		return fmt.Errorf("unknown update kind %q", m.Kind)
	}
	if m.Year < 0 {
		return fmt.Errorf("invalid year %d", m.Year)
	}
	return nil
}

func (m *DocumentUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DocumentUpdatedMessageFromJSON decodes and validates a message.
func DocumentUpdatedMessageFromJSON(data []byte) (*DocumentUpdatedMessage, error) {
	var msg DocumentUpdatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
