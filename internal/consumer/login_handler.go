package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"example.com/practice/internal/domain"
)

// EventSessionStarted is emitted by the identity service when a subject
// opens a session anywhere on the platform.
const EventSessionStarted = "session.started"

// SessionStarted is the session_events payload consumed by this service.
type SessionStarted struct {
	SubjectID  string    `json:"subject_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// LoginHandler records consumed session events as engagement days through
// the idempotent day recorder. Replayed events for an already-recorded day
// are no-ops, so at-least-once delivery is safe.
type LoginHandler struct {
	engine *domain.Engine
}

// NewLoginHandler constructs a handler backed by the provided engine.
func NewLoginHandler(engine *domain.Engine) *LoginHandler {
	return &LoginHandler{engine: engine}
}

// Handle implements Handler. Unknown event types are ignored so new
// upstream events never wedge the consumer group.
func (h *LoginHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != EventSessionStarted {
		return nil
	}

	var event SessionStarted
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("decode session.started payload: %w", err)
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = msg.Timestamp
	}

	// Engagement days from the session stream are bucketed in UTC, matching
	// the streak query default.
	_, err := h.engine.RecordLogin(ctx, event.SubjectID, occurredAt, time.UTC)
	return err
}
