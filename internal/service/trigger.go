package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BorisDmv/snip-api/internal/models"
)

// Trigger promotes scheduled drafts whose time has come. RunOnce is
// idempotent: published items no longer match, so a repeated or concurrent
// run changes nothing.
type Trigger struct {
	store ContentStore
	opts  Options
}

func NewTrigger(store ContentStore, opts Options) *Trigger {
	return &Trigger{store: store, opts: opts.withDefaults()}
}

func (t *Trigger) RunOnce(ctx context.Context, now time.Time) ([]models.Content, error) {
	published, err := t.store.PublishDue(ctx, now.UTC())
	if err != nil {
		t.opts.Metrics.TriggerRun("error")
		return nil, fmt.Errorf("publish due content: %w", err)
	}
	t.opts.Metrics.TriggerRun("ok")
	t.opts.Metrics.ContentPublished("trigger", len(published))

	if len(published) > 0 {
		t.opts.Logger.WithFields(logrus.Fields{
			"count": len(published),
			"now":   now.UTC().Format(time.RFC3339),
		}).Info("published scheduled content")
	}
	for _, c := range published {
		notify(ctx, t.opts.Notifier, t.opts.Logger, Notification{
			RecipientID: c.AuthorID,
			Type:        EventContentPublished,
			ContentID:   c.ID,
			At:          now.UTC(),
		})
	}
	return published, nil
}
