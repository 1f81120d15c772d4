package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/BorisDmv/snip-api/internal/service"
)

// LogNotifier writes notifications to the log. Used when Redis is not configured.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n LogNotifier) Notify(_ context.Context, msg service.Notification) error {
	n.Logger.WithFields(logrus.Fields{
		"recipient_id": msg.RecipientID,
		"type":         msg.Type,
		"content_id":   msg.ContentID,
		"actor_id":     msg.ActorID,
	}).Info("notification")
	return nil
}
