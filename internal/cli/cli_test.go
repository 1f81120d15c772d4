package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BorisDmv/snip-api/internal/auth"
	"github.com/BorisDmv/snip-api/internal/memstore"
	"github.com/BorisDmv/snip-api/internal/service"
)

func TestRootRegistersSubcommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"serve", "migrate", "publish-due", "notifications", "moderator"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestPublishDueOnEmptyMemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REDIS_URL", "")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"publish-due"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Empty(t, out.String())
}

func TestModeratorRefusesMemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	root := NewRootCmd()
	root.SetArgs([]string{"moderator", "grant", "alice"})
	assert.ErrorContains(t, root.ExecuteContext(context.Background()), "persistent store")
}

func TestServeRequiresSecrets(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("AUTH_TOKEN", "")

	root := NewRootCmd()
	root.SetArgs([]string{"serve"})
	assert.ErrorContains(t, root.ExecuteContext(context.Background()), "JWT_SECRET")
}

func TestSeedModerators(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	store := memstore.New()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	accounts := service.NewAccounts(store, tokens, service.Options{Logger: log})

	existing, err := accounts.Signup(ctx, "judy", "password1")
	require.NoError(t, err)

	require.NoError(t, seedModerators(ctx, store, accounts, []string{"root:password1", "judy:ignored-pass"}, log))

	root, err := store.GetUserByUsername(ctx, "root")
	require.NoError(t, err)
	assert.True(t, root.Moderator)
	judy, err := store.GetUserByUsername(ctx, "judy")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, judy.ID)
	assert.True(t, judy.Moderator)

	token, err := accounts.Login(ctx, "root", "password1")
	require.NoError(t, err)
	actor, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.True(t, actor.Moderator)

	assert.ErrorContains(t, seedModerators(ctx, store, accounts, []string{"nopassword"}, log), "username:password")
	assert.Error(t, seedModerators(ctx, store, accounts, []string{"weak:123"}, log))
}
