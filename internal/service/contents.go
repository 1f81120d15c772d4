package service

import (
	"context"
	"fmt"

	"github.com/BorisDmv/snip-api/internal/models"
)

// Contents owns the author-facing lifecycle of posts and blogs.
type Contents struct {
	store ContentStore
	opts  Options
}

func NewContents(store ContentStore, opts Options) *Contents {
	return &Contents{store: store, opts: opts.withDefaults()}
}

func (s *Contents) Create(ctx context.Context, actor models.Actor, in CreateInput) (*models.Content, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	now := s.opts.now()
	in.normalize()
	if err := in.validate(now); err != nil {
		return nil, err
	}

	c := models.Content{
		AuthorID:  actor.UserID,
		Kind:      in.Kind,
		Title:     in.Title,
		Body:      in.Body,
		MediaURL:  in.MediaURL,
		Status:    models.StatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if at := in.Schedule.At(now); at != nil {
		c.Status = models.StatusDraft
		c.ScheduledAt = at
	} else if in.Draft {
		c.Status = models.StatusDraft
	}
	if in.Poll != nil {
		c.Poll = &models.Poll{Question: in.Poll.Question, ExpiresAt: in.Poll.ExpiresAt}
		for _, text := range in.Poll.Options {
			c.Poll.Options = append(c.Poll.Options, models.PollOption{Text: text})
		}
	}

	created, err := s.store.CreateContent(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	if created.Status == models.StatusPublished {
		s.opts.Metrics.ContentPublished("create", 1)
	}
	return created, nil
}

// Get returns published content to anyone; drafts and hidden items are only
// visible to their author and to moderators.
func (s *Contents) Get(ctx context.Context, actor models.Actor, id string) (*models.Content, error) {
	c, err := s.store.GetContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canSee(ctx, actor, c) {
		return nil, fmt.Errorf("%w: content %s", models.ErrNotFound, id)
	}
	return c, nil
}

func (s *Contents) canSee(ctx context.Context, actor models.Actor, c *models.Content) bool {
	if c.Status == models.StatusPublished {
		return true
	}
	if actor.IsZero() {
		return false
	}
	return actor.UserID == c.AuthorID || s.opts.Authorizer.CanModerate(ctx, actor)
}

func (s *Contents) Update(ctx context.Context, actor models.Actor, id string, patch Patch) (*models.Content, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	now := s.opts.now()
	return s.store.UpdateContent(ctx, id, func(c *models.Content) error {
		if c.AuthorID != actor.UserID {
			return models.ErrForbidden
		}
		title, body, media := c.Title, c.Body, c.MediaURL
		if patch.Title != nil {
			title = *patch.Title
		}
		if patch.Body != nil {
			body = *patch.Body
		}
		if patch.MediaURL != nil {
			media = *patch.MediaURL
		}
		in := CreateInput{Kind: c.Kind, Title: title, Body: body, MediaURL: media}
		in.normalize()
		if in.Body == "" && in.MediaURL == "" && !c.IsPoll() {
			return validationf("body or media is required")
		}
		if err := checkFields(in); err != nil {
			return err
		}
		if err := checkKindRules(in.Kind, in.Title, in.Body); err != nil {
			return err
		}
		if c.Status != models.StatusDraft && !patch.Schedule.IsZero() {
			return validationf("only drafts can be scheduled")
		}

		c.Title, c.Body, c.MediaURL = in.Title, in.Body, in.MediaURL
		if c.Status == models.StatusDraft {
			c.ScheduledAt = patch.Schedule.At(now)
		}
		c.UpdatedAt = now
		return nil
	})
}

// Publish is the author's explicit draft→published action.
func (s *Contents) Publish(ctx context.Context, actor models.Actor, id string) (*models.Content, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	now := s.opts.now()
	c, err := s.store.UpdateContent(ctx, id, func(c *models.Content) error {
		if c.AuthorID != actor.UserID {
			return models.ErrForbidden
		}
		return c.Publish(now)
	})
	if err != nil {
		return nil, err
	}
	s.opts.Metrics.ContentPublished("manual", 1)
	return c, nil
}

func (s *Contents) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	c, err := s.store.GetContent(ctx, id)
	if err != nil {
		return err
	}
	if c.AuthorID != actor.UserID {
		return models.ErrForbidden
	}
	return s.store.DeleteContent(ctx, id)
}

// Feed lists published content, optionally for one author.
func (s *Contents) Feed(ctx context.Context, authorID string, page int) (*models.ContentPage, error) {
	return s.list(ctx, models.ContentFilter{
		AuthorID: authorID,
		Statuses: []models.Status{models.StatusPublished},
		Page:     page,
	})
}

// Mine lists the actor's own content in any status, or only in status when set.
func (s *Contents) Mine(ctx context.Context, actor models.Actor, status string, page int) (*models.ContentPage, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	filter := models.ContentFilter{AuthorID: actor.UserID, Page: page}
	if status != "" {
		st, err := models.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Statuses = []models.Status{st}
	}
	return s.list(ctx, filter)
}

func (s *Contents) list(ctx context.Context, filter models.ContentFilter) (*models.ContentPage, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	items, total, err := s.store.ListContent(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return &models.ContentPage{Data: items, Page: filter.Page, Limit: models.PageSize, Total: total}, nil
}
