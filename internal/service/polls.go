package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/BorisDmv/snip-api/internal/models"
)

// Polls records one vote per user per poll and serves tallies.
type Polls struct {
	store interface {
		PollStore
		ContentStore
	}
	opts          Options
	enforceExpiry bool
}

func NewPolls(store interface {
	PollStore
	ContentStore
}, enforceExpiry bool, opts Options) *Polls {
	return &Polls{store: store, opts: opts.withDefaults(), enforceExpiry: enforceExpiry}
}

func (p *Polls) CastVote(ctx context.Context, actor models.Actor, pollID, optionID string) (*models.Tally, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if optionID == "" {
		return nil, validationf("option_id is required")
	}
	now := p.opts.now()
	var authorID string

	tally, err := p.store.CastVote(ctx, models.Vote{
		PollID:    pollID,
		OptionID:  optionID,
		UserID:    actor.UserID,
		CreatedAt: now,
	}, func(c *models.Content) error {
		if !c.IsPoll() || c.Status != models.StatusPublished {
			return fmt.Errorf("%w: poll %s", models.ErrNotFound, pollID)
		}
		if _, ok := c.Poll.Option(optionID); !ok {
			return fmt.Errorf("%w: option %s in poll %s", models.ErrNotFound, optionID, pollID)
		}
		if p.enforceExpiry && c.Poll.Expired(now) {
			return fmt.Errorf("%w: poll has closed", models.ErrConflict)
		}
		authorID = c.AuthorID
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			p.opts.Metrics.Vote("conflict")
		case errors.Is(err, models.ErrNotFound):
			p.opts.Metrics.Vote("not_found")
		default:
			p.opts.Metrics.Vote("error")
		}
		return nil, err
	}
	p.opts.Metrics.Vote("ok")

	if authorID != actor.UserID {
		notify(ctx, p.opts.Notifier, p.opts.Logger, Notification{
			RecipientID: authorID,
			Type:        EventPollVote,
			ContentID:   pollID,
			ActorID:     actor.UserID,
			At:          now,
		})
	}
	return tally, nil
}

func (p *Polls) GetTally(ctx context.Context, pollID string) (*models.Tally, error) {
	c, err := p.store.GetContent(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !c.IsPoll() || c.Status != models.StatusPublished {
		return nil, fmt.Errorf("%w: poll %s", models.ErrNotFound, pollID)
	}
	return p.store.GetTally(ctx, pollID)
}
