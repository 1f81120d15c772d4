package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/BorisDmv/snip-api/internal/config"
	"github.com/BorisDmv/snip-api/internal/models"
	"github.com/BorisDmv/snip-api/internal/service"
)

func newModeratorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moderator",
		Short: "Grant or revoke moderator capability",
	}
	cmd.AddCommand(newModeratorSetCmd("grant", true))
	cmd.AddCommand(newModeratorSetCmd("revoke", false))
	return cmd
}

func newModeratorSetCmd(use string, moderator bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: use + " moderator capability for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.StoreDriver == config.DriverMemory {
				return errors.New("moderator changes need a persistent store (STORE_DRIVER=postgres)")
			}
			store, err := openBackend(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			user, err := store.GetUserByUsername(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("lookup %s: %w", args[0], err)
			}
			if err := store.SetModerator(cmd.Context(), user.ID, moderator); err != nil {
				return err
			}
			log.WithFields(logrus.Fields{"user_id": user.ID, "moderator": moderator}).Info("moderator updated")
			return nil
		},
	}
}

// seedModerators creates each username:password account if missing and marks
// it as a moderator. It is the only way to get a moderator on the memory driver.
func seedModerators(ctx context.Context, store backend, accounts *service.Accounts, specs []string, log *logrus.Logger) error {
	for _, spec := range specs {
		name, password, ok := strings.Cut(spec, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("--seed-moderator %q: want username:password", spec)
		}
		user, err := accounts.Signup(ctx, name, password)
		if errors.Is(err, models.ErrConflict) {
			user, err = store.GetUserByUsername(ctx, name)
		}
		if err != nil {
			return fmt.Errorf("seed moderator %s: %w", name, err)
		}
		if err := store.SetModerator(ctx, user.ID, true); err != nil {
			return fmt.Errorf("seed moderator %s: %w", name, err)
		}
		log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("moderator seeded")
	}
	return nil
}
