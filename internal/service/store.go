package service

import (
	"context"
	"time"

	"github.com/BorisDmv/snip-api/internal/models"
)

// ContentStore is the storage-of-record contract. Every method is atomic:
// implementations run multi-step mutations in one transaction (or under one
// lock) so a failed call leaves no partial state behind.
type ContentStore interface {
	CreateContent(ctx context.Context, c models.Content) (*models.Content, error)
	GetContent(ctx context.Context, id string) (*models.Content, error)
	ListContent(ctx context.Context, filter models.ContentFilter) ([]models.Content, int, error)
	// UpdateContent locks the row, hands a copy to mutate and persists the
	// result if mutate returns nil.
	UpdateContent(ctx context.Context, id string, mutate func(*models.Content) error) (*models.Content, error)
	// DeleteContent removes the item together with its poll options and votes.
	DeleteContent(ctx context.Context, id string) error
	// PublishDue promotes every draft whose schedule is at or before now.
	PublishDue(ctx context.Context, now time.Time) ([]models.Content, error)
}

type AppealStore interface {
	CreateAppeal(ctx context.Context, a models.Appeal) (*models.Appeal, error)
	GetAppeal(ctx context.Context, contentID string) (*models.Appeal, error)
}

type PollStore interface {
	// CastVote records v and bumps the option counter and the poll total. It
	// returns ErrConflict when v.UserID already voted on v.PollID. check runs
	// against the locked poll before anything is written.
	CastVote(ctx context.Context, v models.Vote, check func(*models.Content) error) (*models.Tally, error)
	GetTally(ctx context.Context, pollID string) (*models.Tally, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u models.User) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type Store interface {
	ContentStore
	AppealStore
	PollStore
	UserStore
}
