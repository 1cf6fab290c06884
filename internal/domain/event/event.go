// Package event defines the domain events the service announces and the
// publisher port that carries them.
package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/InfringeScope/pkg/errors"
)

// Type names an event. It doubles as the topic suffix.
type Type string

const (
	AnalysisCompleted Type = "analysis.completed"
	ReportSaved       Type = "report.saved"
)

// Event is the envelope published for every domain event.
type Event struct {
	ID         string          `json:"event_id"`
	Type       Type            `json:"event_type"`
	Source     string          `json:"source"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurred_at"`
	Version    string          `json:"schema_version"`
	Payload    json.RawMessage `json:"payload"`
}

// New wraps payload in an envelope. key selects the partition.
func New(t Type, source, key string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "failed to marshal event payload")
	}
	return &Event{
		ID:         uuid.NewString(),
		Type:       t,
		Source:     source,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Version:    "v1",
		Payload:    data,
	}, nil
}

// Decode unmarshals the payload into target.
func (e *Event) Decode(target any) error {
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to unmarshal event payload")
	}
	return nil
}

// Publisher delivers events. Callers treat delivery as best effort.
type Publisher interface {
	Publish(ctx context.Context, e *Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *Event) error { return nil }

//Personal.AI order the ending
