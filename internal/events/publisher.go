// Package events provides a fire-and-forget NATS publisher for comment
// lifecycle events. Downstream consumers (notification fan-out, analytics)
// subscribe to the discussion.comment.* subjects.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subject constants for every comment lifecycle event.
const (
	SubjectCommentCreated = "discussion.comment.created"
	SubjectCommentVoted   = "discussion.comment.voted"
	SubjectCommentDeleted = "discussion.comment.deleted"
	SubjectCommentFlagged = "discussion.comment.flagged"
)

// Event is the canonical envelope sent to all discussion.comment.* subjects.
type Event struct {
	EventID    string         `json:"event_id"`
	ThreadID   string         `json:"thread_id,omitempty"`
	CommentID  string         `json:"comment_id,omitempty"`
	ActorID    string         `json:"actor_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Publisher publishes lifecycle events to NATS JetStream.
// The zero value and a nil pointer are both safe no-op stubs.
type Publisher struct {
	js  nats.JetStreamContext
	log *zap.Logger
}

// New creates a Publisher using an existing JetStream context.
// Pass js=nil to get a no-op stub (useful in tests and deployments without NATS).
func New(js nats.JetStreamContext, log *zap.Logger) *Publisher {
	return &Publisher{js: js, log: log}
}

// Publish sends an event asynchronously (fire-and-forget). Failures are
// logged as warnings and never surface to the caller; the publisher is safe
// to call with a nil receiver.
func (p *Publisher) Publish(subject string, ev Event) {
	if p == nil || p.js == nil {
		return
	}
	ev.EventID = uuid.NewString()
	ev.OccurredAt = time.Now().UTC()

	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("events: marshal failed", zap.String("subject", subject), zap.Error(err))
		return
	}
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		p.log.Warn("events: publish failed", zap.String("subject", subject), zap.Error(err))
	}
}
