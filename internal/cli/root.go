package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/BorisDmv/snip-api/internal/config"
	"github.com/BorisDmv/snip-api/internal/logging"
)

const serviceName = "snip"

// NewRootCmd returns the root command for the snip binary.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "snip",
		Short:         "Snip content API",
		Long:          "Snip serves short posts, blogs and polls with scheduled publishing and moderation.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newPublishDueCmd())
	rootCmd.AddCommand(newNotificationsCmd())
	rootCmd.AddCommand(newModeratorCmd())

	return rootCmd
}

func Execute() int {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

// setup loads configuration and the logger every subcommand shares.
func setup() (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, fmt.Errorf("config: %w", err)
	}
	return cfg, logging.NewLogger(serviceName, cfg.LogLevel), nil
}
