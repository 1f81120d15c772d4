package models

import (
	"fmt"
	"time"
)

type Kind string

const (
	KindPost Kind = "post"
	KindBlog Kind = "blog"
)

func (k Kind) Valid() bool {
	return k == KindPost || k == KindBlog
}

type Content struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`
	Kind     Kind   `json:"kind"`
	Title    string `json:"title,omitempty"`
	Body     string `json:"body"`
	MediaURL string `json:"media_url,omitempty"`
	Status   Status `json:"status"`
	// ScheduledAt is only set while Status is draft.
	ScheduledAt *time.Time `json:"scheduled_at"`
	Poll        *Poll      `json:"poll,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsPoll reports whether the content carries a poll.
func (c *Content) IsPoll() bool {
	return c.Poll != nil
}

// Clone returns a deep copy so stores can hand out values without sharing
// pointers into their own state.
func (c Content) Clone() Content {
	out := c
	if c.ScheduledAt != nil {
		at := *c.ScheduledAt
		out.ScheduledAt = &at
	}
	if c.Poll != nil {
		p := *c.Poll
		if c.Poll.ExpiresAt != nil {
			exp := *c.Poll.ExpiresAt
			p.ExpiresAt = &exp
		}
		p.Options = append([]PollOption(nil), c.Poll.Options...)
		out.Poll = &p
	}
	return out
}

// Publish moves a draft to published, clearing the schedule and restamping
// CreatedAt so it lands at the top of the feed.
func (c *Content) Publish(now time.Time) error {
	if c.Status != StatusDraft {
		return fmt.Errorf("%w: only drafts can be published, content is %s", ErrConflict, c.Status)
	}
	c.Status = StatusPublished
	c.ScheduledAt = nil
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

func (c *Content) Hide(now time.Time) error {
	if err := c.Status.TransitionTo(StatusHidden); err != nil {
		return err
	}
	c.Status = StatusHidden
	c.ScheduledAt = nil
	c.UpdatedAt = now
	return nil
}

// Restore makes hidden content visible again. CreatedAt is left untouched.
func (c *Content) Restore(now time.Time) error {
	if c.Status != StatusHidden {
		return fmt.Errorf("%w: only hidden content can be restored, content is %s", ErrConflict, c.Status)
	}
	c.Status = StatusPublished
	c.UpdatedAt = now
	return nil
}

// ContentFilter selects a page of content for listing.
type ContentFilter struct {
	AuthorID string
	Statuses []Status
	Page     int
}

const PageSize = 10

func (f ContentFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * PageSize
}

func (f ContentFilter) Matches(c Content) bool {
	if f.AuthorID != "" && c.AuthorID != f.AuthorID {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if c.Status == s {
			return true
		}
	}
	return false
}

type ContentPage struct {
	Data  []Content `json:"data"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
	Total int       `json:"total"`
}
