package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/feedback-go-api/internal/models"
)

// FeedbackCreatedEvent is the message announced for every accepted submission. Contact
// details stay out of it.
type FeedbackCreatedEvent struct {
	ID        string    `json:"id"`
	RollNo    string    `json:"roll_no"`
	Branch    string    `json:"branch"`
	Useful    string    `json:"useful"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFeedbackCreatedEvent builds the event for record.
func NewFeedbackCreatedEvent(record models.Feedback) FeedbackCreatedEvent {
	return FeedbackCreatedEvent{
		ID:        record.ID,
		RollNo:    record.RollNo,
		Branch:    record.Branch,
		Useful:    record.Useful,
		Rating:    record.Rating,
		CreatedAt: record.CreatedAt,
	}
}

// LogFeedbackPublisher is a basic publisher that only logs accepted feedback.
type LogFeedbackPublisher struct {
	logger zerolog.Logger
}

// NewLogFeedbackPublisher constructs a logging publisher.
func NewLogFeedbackPublisher(logger zerolog.Logger) *LogFeedbackPublisher {
	return &LogFeedbackPublisher{logger: logger.With().Str("component", "feedback_events").Logger()}
}

// Publish logs the event and returns nil.
func (l *LogFeedbackPublisher) Publish(ctx context.Context, record models.Feedback) error {
	l.logger.Debug().Str("feedback_id", record.ID).Str("branch", record.Branch).Msg("feedback created")
	return nil
}

// NATSFeedbackPublisher publishes FeedbackCreatedEvent messages on a NATS subject.
type NATSFeedbackPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSFeedbackPublisher constructs a NATS backed publisher.
func NewNATSFeedbackPublisher(conn *nats.Conn, subject string) *NATSFeedbackPublisher {
	return &NATSFeedbackPublisher{conn: conn, subject: subject}
}

// Publish encodes the event as JSON and hands it to the NATS connection.
func (p *NATSFeedbackPublisher) Publish(ctx context.Context, record models.Feedback) error {
	payload, err := json.Marshal(NewFeedbackCreatedEvent(record))
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject, payload)
}
