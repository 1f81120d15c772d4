package memstore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BorisDmv/snip-api/internal/models"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedPoll(t *testing.T, s *Store) *models.Content {
	t.Helper()
	c, err := s.CreateContent(context.Background(), models.Content{
		AuthorID:  "author",
		Kind:      models.KindPost,
		Body:      "tabs or spaces?",
		Status:    models.StatusPublished,
		CreatedAt: t0,
		Poll: &models.Poll{
			Question: "tabs or spaces?",
			Options:  []models.PollOption{{Text: "tabs"}, {Text: "spaces"}},
		},
	})
	require.NoError(t, err)
	return c
}

func TestCreateContentAssignsIDs(t *testing.T) {
	s := New()
	c := seedPoll(t, s)
	assert.NotEmpty(t, c.ID)
	require.Len(t, c.Poll.Options, 2)
	assert.NotEmpty(t, c.Poll.Options[0].ID)
	assert.NotEqual(t, c.Poll.Options[0].ID, c.Poll.Options[1].ID)

	// Callers cannot reach into stored state through the returned value.
	c.Poll.Options[0].Votes = 50
	got, err := s.GetContent(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Poll.Options[0].Votes)
}

func TestListContentOrdersNewestFirstAndPaginates(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_, err := s.CreateContent(ctx, models.Content{
			AuthorID:  "a",
			Kind:      models.KindPost,
			Body:      "x",
			Status:    models.StatusPublished,
			CreatedAt: t0.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, err := s.CreateContent(ctx, models.Content{AuthorID: "a", Kind: models.KindPost, Status: models.StatusDraft, CreatedAt: t0.Add(time.Hour)})
	require.NoError(t, err)

	filter := models.ContentFilter{Statuses: []models.Status{models.StatusPublished}, Page: 1}
	page1, total, err := s.ListContent(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, page1, 10)
	assert.Equal(t, t0.Add(11*time.Minute), page1[0].CreatedAt)

	filter.Page = 2
	page2, _, err := s.ListContent(ctx, filter)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, t0, page2[1].CreatedAt)

	filter.Page = 5
	empty, total, err := s.ListContent(ctx, filter)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, 12, total)
}

func TestUpdateContentKeepsIdentityAndPoll(t *testing.T) {
	s := New()
	c := seedPoll(t, s)

	updated, err := s.UpdateContent(context.Background(), c.ID, func(w *models.Content) error {
		w.ID = "other"
		w.AuthorID = "intruder"
		w.Poll.TotalVotes = 99
		w.Body = "edited"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, "author", updated.AuthorID)
	assert.Equal(t, 0, updated.Poll.TotalVotes)
	assert.Equal(t, "edited", updated.Body)
}

func TestUpdateContentAbortsOnMutateError(t *testing.T) {
	s := New()
	c := seedPoll(t, s)

	_, err := s.UpdateContent(context.Background(), c.ID, func(w *models.Content) error {
		w.Body = "half-written"
		return models.ErrConflict
	})
	require.ErrorIs(t, err, models.ErrConflict)

	got, err := s.GetContent(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "tabs or spaces?", got.Body)

	_, err = s.UpdateContent(context.Background(), "missing", func(*models.Content) error { return nil })
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteContentCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	c := seedPoll(t, s)
	_, err := s.CastVote(ctx, models.Vote{PollID: c.ID, OptionID: c.Poll.Options[0].ID, UserID: "u1"}, func(*models.Content) error { return nil })
	require.NoError(t, err)
	_, err = s.CreateAppeal(ctx, models.Appeal{ContentID: c.ID, Reason: "please", SubmitterID: "author"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteContent(ctx, c.ID))
	assert.Equal(t, 0, s.VoteCount(c.ID))
	_, err = s.GetAppeal(ctx, c.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.GetTally(ctx, c.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, s.DeleteContent(ctx, c.ID), models.ErrNotFound)
}

func TestPublishDueIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	due := t0.Add(-time.Minute)
	later := t0.Add(time.Hour)
	dueItem, err := s.CreateContent(ctx, models.Content{AuthorID: "a", Kind: models.KindPost, Status: models.StatusDraft, ScheduledAt: &due, CreatedAt: t0.Add(-time.Hour)})
	require.NoError(t, err)
	_, err = s.CreateContent(ctx, models.Content{AuthorID: "a", Kind: models.KindPost, Status: models.StatusDraft, ScheduledAt: &later, CreatedAt: t0})
	require.NoError(t, err)
	_, err = s.CreateContent(ctx, models.Content{AuthorID: "a", Kind: models.KindPost, Status: models.StatusDraft, CreatedAt: t0})
	require.NoError(t, err)

	published, err := s.PublishDue(ctx, t0)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, dueItem.ID, published[0].ID)
	assert.Equal(t, models.StatusPublished, published[0].Status)
	assert.Nil(t, published[0].ScheduledAt)
	assert.Equal(t, t0, published[0].CreatedAt)

	again, err := s.PublishDue(ctx, t0)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestCreateAppealRejectsDuplicate(t *testing.T) {
	s := New()
	ctx := context.Background()
	c := seedPoll(t, s)

	_, err := s.CreateAppeal(ctx, models.Appeal{ContentID: c.ID, Reason: "first", SubmitterID: "author", CreatedAt: t0})
	require.NoError(t, err)
	_, err = s.CreateAppeal(ctx, models.Appeal{ContentID: c.ID, Reason: "second", SubmitterID: "author"})
	require.ErrorIs(t, err, models.ErrConflict)

	a, err := s.GetAppeal(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", a.Reason)

	_, err = s.CreateAppeal(ctx, models.Appeal{ContentID: "missing"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCastVoteRejectsSecondVote(t *testing.T) {
	s := New()
	ctx := context.Background()
	c := seedPoll(t, s)
	ok := func(*models.Content) error { return nil }

	tally, err := s.CastVote(ctx, models.Vote{PollID: c.ID, OptionID: c.Poll.Options[1].ID, UserID: "u1"}, ok)
	require.NoError(t, err)
	assert.Equal(t, 1, tally.TotalVotes)
	assert.Equal(t, 1, tally.Options[1].Votes)

	_, err = s.CastVote(ctx, models.Vote{PollID: c.ID, OptionID: c.Poll.Options[0].ID, UserID: "u1"}, ok)
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = s.CastVote(ctx, models.Vote{PollID: c.ID, OptionID: "nope", UserID: "u2"}, ok)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = s.CastVote(ctx, models.Vote{PollID: c.ID, OptionID: c.Poll.Options[0].ID, UserID: "u3"}, func(*models.Content) error {
		return models.ErrConflict
	})
	assert.ErrorIs(t, err, models.ErrConflict)

	got, err := s.GetTally(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalVotes)
	assert.Equal(t, 1, s.VoteCount(c.ID))
}

func TestCastVoteConcurrentSameUser(t *testing.T) {
	s := New()
	c := seedPoll(t, s)

	var wg sync.WaitGroup
	var succeeded int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.CastVote(context.Background(), models.Vote{
				PollID:   c.ID,
				OptionID: c.Poll.Options[i%2].ID,
				UserID:   "same-user",
			}, func(*models.Content) error { return nil })
			if err == nil {
				atomic.AddInt32(&succeeded, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded)
	tally, err := s.GetTally(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tally.TotalVotes)
	assert.Equal(t, 1, tally.Options[0].Votes+tally.Options[1].Votes)
}

func TestUsersAreCaseInsensitive(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, err := s.CreateUser(ctx, models.User{Username: "Alice", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, models.User{Username: "alice"})
	assert.ErrorIs(t, err, models.ErrConflict)

	got, err := s.GetUserByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, s.SetModerator(ctx, u.ID, true))
	got, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.Moderator)
	assert.ErrorIs(t, s.SetModerator(ctx, "missing", true), models.ErrNotFound)
}

func TestCanceledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.GetContent(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)
}
