package service

import (
	"context"

	"github.com/BorisDmv/snip-api/internal/models"
)

// Authorizer decides moderator capability for a verified actor.
type Authorizer interface {
	CanModerate(ctx context.Context, actor models.Actor) bool
}

// ClaimsAuthorizer trusts the moderator flag carried in the actor's token.
type ClaimsAuthorizer struct{}

func (ClaimsAuthorizer) CanModerate(_ context.Context, actor models.Actor) bool {
	return !actor.IsZero() && actor.Moderator
}

// StoreAuthorizer reads the moderator flag from the user record on every call,
// so a revoke applies to tokens that are already issued.
type StoreAuthorizer struct {
	users UserStore
}

func NewStoreAuthorizer(users UserStore) *StoreAuthorizer {
	return &StoreAuthorizer{users: users}
}

func (a *StoreAuthorizer) CanModerate(ctx context.Context, actor models.Actor) bool {
	if actor.IsZero() {
		return false
	}
	u, err := a.users.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return false
	}
	return u.Moderator
}

func requireActor(actor models.Actor) error {
	if actor.IsZero() {
		return models.ErrUnauthorized
	}
	return nil
}
