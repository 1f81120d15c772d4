package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/BorisDmv/snip-api/internal/auth"
	"github.com/BorisDmv/snip-api/internal/memstore"
	"github.com/BorisDmv/snip-api/internal/models"
	"github.com/BorisDmv/snip-api/internal/service"
)

func newAccounts(t *testing.T) (*service.Accounts, *auth.TokenManager, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	accounts := service.NewAccounts(store, tokens, service.Options{})
	accounts.SetBcryptCost(bcrypt.MinCost)
	return accounts, tokens, store
}

func TestSignupAndLogin(t *testing.T) {
	accounts, tokens, _ := newAccounts(t)
	ctx := context.Background()

	user, err := accounts.Signup(ctx, "  carol ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	token, err := accounts.Login(ctx, "carol", "correct horse")
	require.NoError(t, err)
	actor, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.UserID)
	assert.False(t, actor.Moderator)
}

func TestSignupRejects(t *testing.T) {
	accounts, _, _ := newAccounts(t)
	ctx := context.Background()

	_, err := accounts.Signup(ctx, "", "password1")
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = accounts.Signup(ctx, "dave", "short")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = accounts.Signup(ctx, "dave", "password1")
	require.NoError(t, err)
	_, err = accounts.Signup(ctx, "Dave", "password2")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestLoginRejects(t *testing.T) {
	accounts, _, _ := newAccounts(t)
	ctx := context.Background()
	_, err := accounts.Signup(ctx, "erin", "password1")
	require.NoError(t, err)

	_, err = accounts.Login(ctx, "erin", "wrong-password")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	_, err = accounts.Login(ctx, "nobody", "password1")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	_, err = accounts.Login(ctx, "", "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestLoginCarriesModeratorFlag(t *testing.T) {
	accounts, tokens, store := newAccounts(t)
	ctx := context.Background()
	user, err := accounts.Signup(ctx, "frank", "password1")
	require.NoError(t, err)
	require.NoError(t, store.SetModerator(ctx, user.ID, true))

	token, err := accounts.Login(ctx, "frank", "password1")
	require.NoError(t, err)
	actor, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.True(t, actor.Moderator)
}

func TestLoginTrimsUsername(t *testing.T) {
	accounts, _, _ := newAccounts(t)
	ctx := context.Background()
	_, err := accounts.Signup(ctx, " gina ", "password1")
	require.NoError(t, err)

	_, err = accounts.Login(ctx, "  gina\t", "password1")
	assert.NoError(t, err)
	_, err = accounts.Login(ctx, "   ", "password1")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestRevokeAppliesToIssuedTokens(t *testing.T) {
	accounts, tokens, store := newAccounts(t)
	ctx := context.Background()
	opts := service.Options{Authorizer: service.NewStoreAuthorizer(store)}
	contents := service.NewContents(store, opts)
	moderation := service.NewModeration(store, opts)

	author, err := accounts.Signup(ctx, "hank", "password1")
	require.NoError(t, err)
	c, err := contents.Create(ctx, models.Actor{UserID: author.ID, Username: author.Username}, service.CreateInput{Body: "hello"})
	require.NoError(t, err)

	user, err := accounts.Signup(ctx, "ivy", "password1")
	require.NoError(t, err)
	require.NoError(t, store.SetModerator(ctx, user.ID, true))
	token, err := accounts.Login(ctx, "ivy", "password1")
	require.NoError(t, err)
	actor, err := tokens.Parse(token)
	require.NoError(t, err)
	require.True(t, actor.Moderator)

	_, err = moderation.Hide(ctx, actor, c.ID)
	require.NoError(t, err)
	_, err = moderation.Restore(ctx, actor, c.ID)
	require.NoError(t, err)

	require.NoError(t, store.SetModerator(ctx, user.ID, false))
	_, err = moderation.Hide(ctx, actor, c.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	// A stale non-moderator token gains the capability once granted.
	require.NoError(t, store.SetModerator(ctx, author.ID, true))
	_, err = moderation.Hide(ctx, models.Actor{UserID: author.ID, Username: author.Username}, c.ID)
	assert.NoError(t, err)
}

func TestStoreAuthorizerUnknownUser(t *testing.T) {
	a := service.NewStoreAuthorizer(memstore.New())
	assert.False(t, a.CanModerate(context.Background(), models.Actor{UserID: "ghost", Moderator: true}))
	assert.False(t, a.CanModerate(context.Background(), models.Actor{}))
}
