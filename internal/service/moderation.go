package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/BorisDmv/snip-api/internal/models"
)

// Moderation hides content and collects appeals. Restoring hidden content is
// an explicit moderator action; an appeal never restores anything by itself.
type Moderation struct {
	store interface {
		ContentStore
		AppealStore
	}
	opts Options
}

func NewModeration(store interface {
	ContentStore
	AppealStore
}, opts Options) *Moderation {
	return &Moderation{store: store, opts: opts.withDefaults()}
}

func (m *Moderation) requireModerator(ctx context.Context, actor models.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !m.opts.Authorizer.CanModerate(ctx, actor) {
		return fmt.Errorf("%w: moderator capability required", models.ErrForbidden)
	}
	return nil
}

// Hide moves published content to hidden. Hiding hidden content is a no-op.
func (m *Moderation) Hide(ctx context.Context, actor models.Actor, id string) (*models.Content, error) {
	if err := m.requireModerator(ctx, actor); err != nil {
		return nil, err
	}
	now := m.opts.now()
	changed := false
	c, err := m.store.UpdateContent(ctx, id, func(c *models.Content) error {
		if c.Status == models.StatusHidden {
			return nil
		}
		changed = true
		return c.Hide(now)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		m.opts.Metrics.Moderation("hide")
		m.opts.Logger.WithField("content_id", id).WithField("moderator_id", actor.UserID).Info("content hidden")
		notify(ctx, m.opts.Notifier, m.opts.Logger, Notification{
			RecipientID: c.AuthorID,
			Type:        EventContentHidden,
			ContentID:   c.ID,
			ActorID:     actor.UserID,
			At:          now,
		})
	}
	return c, nil
}

// Restore is the manual resolution of a hidden item: hidden→published.
func (m *Moderation) Restore(ctx context.Context, actor models.Actor, id string) (*models.Content, error) {
	if err := m.requireModerator(ctx, actor); err != nil {
		return nil, err
	}
	now := m.opts.now()
	c, err := m.store.UpdateContent(ctx, id, func(c *models.Content) error {
		return c.Restore(now)
	})
	if err != nil {
		return nil, err
	}
	m.opts.Metrics.Moderation("restore")
	m.opts.Logger.WithField("content_id", id).WithField("moderator_id", actor.UserID).Info("content restored")
	notify(ctx, m.opts.Notifier, m.opts.Logger, Notification{
		RecipientID: c.AuthorID,
		Type:        EventContentRestored,
		ContentID:   c.ID,
		ActorID:     actor.UserID,
		At:          now,
	})
	return c, nil
}

// SubmitAppeal records the author's request to reconsider hidden content.
// A second appeal for the same item is a conflict and leaves the first intact.
func (m *Moderation) SubmitAppeal(ctx context.Context, actor models.Actor, id, reason string) (*models.Appeal, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if err := validateReason(reason); err != nil {
		return nil, err
	}
	c, err := m.store.GetContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != actor.UserID {
		return nil, models.ErrForbidden
	}
	if c.Status != models.StatusHidden {
		return nil, fmt.Errorf("%w: only hidden content can be appealed", models.ErrConflict)
	}

	appeal, err := m.store.CreateAppeal(ctx, models.Appeal{
		ContentID:   id,
		Reason:      reason,
		SubmitterID: actor.UserID,
		CreatedAt:   m.opts.now(),
	})
	if err != nil {
		return nil, err
	}
	m.opts.Metrics.Moderation("appeal")
	return appeal, nil
}

// GetAppeal is visible to the content author and to moderators.
func (m *Moderation) GetAppeal(ctx context.Context, actor models.Actor, id string) (*models.Appeal, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	appeal, err := m.store.GetAppeal(ctx, id)
	if err != nil {
		return nil, err
	}
	if appeal.SubmitterID != actor.UserID && !m.opts.Authorizer.CanModerate(ctx, actor) {
		return nil, fmt.Errorf("%w: appeal for %s", models.ErrNotFound, id)
	}
	return appeal, nil
}
