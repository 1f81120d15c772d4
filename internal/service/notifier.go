package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type EventType string

const (
	EventContentPublished EventType = "content_published"
	EventContentHidden    EventType = "content_hidden"
	EventContentRestored  EventType = "content_restored"
	EventPollVote         EventType = "poll_vote"
)

type Notification struct {
	RecipientID string    `json:"recipient_id"`
	Type        EventType `json:"type"`
	ContentID   string    `json:"content_id"`
	ActorID     string    `json:"actor_id,omitempty"`
	At          time.Time `json:"at"`
}

// Notifier delivers out-of-band notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) error { return nil }

// notify never fails the caller: delivery errors are logged and dropped.
func notify(ctx context.Context, n Notifier, log *logrus.Logger, ev Notification) {
	if n == nil || ev.RecipientID == "" {
		return
	}
	if err := n.Notify(ctx, ev); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"recipient_id": ev.RecipientID,
			"type":         ev.Type,
			"content_id":   ev.ContentID,
		}).Warn("notification dropped")
	}
}
