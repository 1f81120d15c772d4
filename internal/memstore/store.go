// Package memstore keeps the whole content graph in process memory behind a
// single mutex. It backs STORE_DRIVER=memory and the service tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BorisDmv/snip-api/internal/models"
	"github.com/BorisDmv/snip-api/internal/service"
)

var _ service.Store = (*Store)(nil)

type Store struct {
	mu       sync.Mutex
	contents map[string]*models.Content
	// votes is keyed by poll id, then user id.
	votes      map[string]map[string]models.Vote
	appeals    map[string]models.Appeal
	users      map[string]*models.User
	byUsername map[string]string
}

func New() *Store {
	return &Store{
		contents:   make(map[string]*models.Content),
		votes:      make(map[string]map[string]models.Vote),
		appeals:    make(map[string]models.Appeal),
		users:      make(map[string]*models.User),
		byUsername: make(map[string]string),
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", models.ErrNotFound, kind, id)
}

func (s *Store) CreateContent(ctx context.Context, c models.Content) (*models.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c = c.Clone()
	c.ID = uuid.NewString()
	if c.Poll != nil {
		c.Poll.TotalVotes = 0
		for i := range c.Poll.Options {
			c.Poll.Options[i].ID = uuid.NewString()
			c.Poll.Options[i].Votes = 0
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := c.Clone()
	s.contents[c.ID] = &stored
	return &c, nil
}

func (s *Store) GetContent(ctx context.Context, id string) (*models.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contents[id]
	if !ok {
		return nil, notFound("content", id)
	}
	out := c.Clone()
	return &out, nil
}

func (s *Store) ListContent(ctx context.Context, filter models.ContentFilter) ([]models.Content, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.mu.Lock()
	matched := make([]models.Content, 0)
	for _, c := range s.contents {
		if filter.Matches(*c) {
			matched = append(matched, c.Clone())
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := filter.Offset()
	if start >= total {
		return []models.Content{}, total, nil
	}
	end := start + models.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *Store) UpdateContent(ctx context.Context, id string, mutate func(*models.Content) error) (*models.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.contents[id]
	if !ok {
		return nil, notFound("content", id)
	}
	working := current.Clone()
	if err := mutate(&working); err != nil {
		return nil, err
	}
	// Identity, ownership and poll counters are not editable through mutate.
	working.ID = current.ID
	working.AuthorID = current.AuthorID
	working.Poll = current.Clone().Poll
	stored := working.Clone()
	s.contents[id] = &stored
	return &working, nil
}

func (s *Store) DeleteContent(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contents[id]; !ok {
		return notFound("content", id)
	}
	delete(s.contents, id)
	delete(s.votes, id)
	delete(s.appeals, id)
	return nil
}

func (s *Store) PublishDue(ctx context.Context, now time.Time) ([]models.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	published := make([]models.Content, 0)
	for _, c := range s.contents {
		if c.Status != models.StatusDraft || c.ScheduledAt == nil || c.ScheduledAt.After(now) {
			continue
		}
		if err := c.Publish(now); err != nil {
			return nil, err
		}
		published = append(published, c.Clone())
	}
	return published, nil
}

func (s *Store) CreateAppeal(ctx context.Context, a models.Appeal) (*models.Appeal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contents[a.ContentID]; !ok {
		return nil, notFound("content", a.ContentID)
	}
	if _, exists := s.appeals[a.ContentID]; exists {
		return nil, fmt.Errorf("%w: appeal already submitted for %s", models.ErrConflict, a.ContentID)
	}
	s.appeals[a.ContentID] = a
	return &a, nil
}

func (s *Store) GetAppeal(ctx context.Context, contentID string) (*models.Appeal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appeals[contentID]
	if !ok {
		return nil, notFound("appeal", contentID)
	}
	return &a, nil
}

func (s *Store) CastVote(ctx context.Context, v models.Vote, check func(*models.Content) error) (*models.Tally, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contents[v.PollID]
	if !ok || c.Poll == nil {
		return nil, notFound("poll", v.PollID)
	}
	snapshot := c.Clone()
	if err := check(&snapshot); err != nil {
		return nil, err
	}
	idx := -1
	for i, o := range c.Poll.Options {
		if o.ID == v.OptionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, notFound("poll option", v.OptionID)
	}
	byUser := s.votes[v.PollID]
	if byUser == nil {
		byUser = make(map[string]models.Vote)
		s.votes[v.PollID] = byUser
	}
	if _, voted := byUser[v.UserID]; voted {
		return nil, fmt.Errorf("%w: user already voted on poll %s", models.ErrConflict, v.PollID)
	}

	v.ID = uuid.NewString()
	byUser[v.UserID] = v
	c.Poll.Options[idx].Votes++
	c.Poll.TotalVotes = len(byUser)
	return c.Poll.Tally(c.ID), nil
}

func (s *Store) GetTally(ctx context.Context, pollID string) (*models.Tally, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contents[pollID]
	if !ok || c.Poll == nil {
		return nil, notFound("poll", pollID)
	}
	return c.Poll.Tally(c.ID), nil
}

// VoteCount returns the number of stored votes referencing pollID.
func (s *Store) VoteCount(pollID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.votes[pollID])
}

func (s *Store) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(u.Username)
	if _, exists := s.byUsername[key]; exists {
		return nil, fmt.Errorf("%w: username %s", models.ErrConflict, u.Username)
	}
	u.ID = uuid.NewString()
	stored := u
	s.users[u.ID] = &stored
	s.byUsername[key] = u.ID
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, notFound("user", username)
	}
	u := *s.users[id]
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	out := *u
	return &out, nil
}

// SetModerator grants or revokes moderator capability. There is no HTTP
// surface for it.
func (s *Store) SetModerator(ctx context.Context, userID string, moderator bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return notFound("user", userID)
	}
	u.Moderator = moderator
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Migrate is a no-op; the maps are ready after New.
func (s *Store) Migrate(context.Context) error {
	return nil
}

func (s *Store) Close() {}
