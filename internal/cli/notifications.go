package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BorisDmv/snip-api/internal/notify"
	"github.com/BorisDmv/snip-api/internal/service"
)

func newNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Inspect the notification stream",
	}
	cmd.AddCommand(newNotificationsWatchCmd())
	return cmd
}

func newNotificationsWatchCmd() *cobra.Command {
	var recipient string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print notifications published to Redis as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.RedisURL == "" {
				return errors.New("REDIS_URL is required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := notify.NewRedisClient(ctx, cfg.RedisURL)
			if err != nil {
				return err
			}
			defer client.Close()

			out := json.NewEncoder(cmd.OutOrStdout())
			sub := notify.NewRedisNotifier(client, cfg.NotifyChannel)
			err = sub.Subscribe(ctx, log, func(n service.Notification) {
				if recipient != "" && n.RecipientID != recipient {
					return
				}
				if err := out.Encode(n); err != nil {
					log.WithError(err).Warn("write notification")
				}
			})
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("subscribe: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&recipient, "recipient", "", "only show notifications for this user id")
	return cmd
}
