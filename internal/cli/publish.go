package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/BorisDmv/snip-api/internal/service"
)

func newPublishDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish-due",
		Short: "Publish every draft whose schedule has passed, once",
		Long:  "Runs one publish trigger pass. Intended for an external cron; safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			store, err := openBackend(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			sink, closeSink, err := openSink(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closeSink()

			trigger := service.NewTrigger(store, service.Options{Notifier: sink, Logger: log})
			published, err := trigger.RunOnce(cmd.Context(), time.Now().UTC())
			if err != nil {
				return err
			}
			for _, c := range published {
				fmt.Fprintln(cmd.OutOrStdout(), c.ID)
			}
			return nil
		},
	}
}
