package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BorisDmv/snip-api/internal/auth"
	"github.com/BorisDmv/snip-api/internal/models"
)

const minPasswordLen = 8

type Accounts struct {
	store      UserStore
	tokens     *auth.TokenManager
	opts       Options
	bcryptCost []int
}

func NewAccounts(store UserStore, tokens *auth.TokenManager, opts Options) *Accounts {
	return &Accounts{store: store, tokens: tokens, opts: opts.withDefaults()}
}

func (a *Accounts) Signup(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, validationf("username and password required")
	}
	if len(password) < minPasswordLen {
		return nil, validationf("password must be at least %d characters", minPasswordLen)
	}
	hash, err := auth.HashPassword(password, a.bcryptCost...)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	created, err := a.store.CreateUser(ctx, models.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    a.opts.now(),
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: username already exists", models.ErrConflict)
		}
		return nil, err
	}
	return created, nil
}

// Login checks credentials and returns a signed bearer token.
func (a *Accounts) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", validationf("username and password required")
	}
	user, err := a.store.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return "", err
	}
	if user == nil || !auth.CheckPassword(password, user.PasswordHash) {
		return "", fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}
	return a.tokens.Issue(*user)
}
