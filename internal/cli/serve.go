package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/BorisDmv/snip-api/internal/auth"
	"github.com/BorisDmv/snip-api/internal/config"
	"github.com/BorisDmv/snip-api/internal/handlers"
	"github.com/BorisDmv/snip-api/internal/metrics"
	appmiddleware "github.com/BorisDmv/snip-api/internal/middleware"
	"github.com/BorisDmv/snip-api/internal/notify"
	"github.com/BorisDmv/snip-api/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		publishInterval time.Duration
		seeds           []string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if err := cfg.ValidateServer(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log, publishInterval, seeds)
		},
	}
	cmd.Flags().DurationVar(&publishInterval, "publish-interval", 0, "run the publish trigger in-process at this interval (0 disables)")
	cmd.Flags().StringArrayVar(&seeds, "seed-moderator", nil, "username:password of a moderator to create or promote at startup (repeatable)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, log *logrus.Logger, publishInterval time.Duration, seeds []string) error {
	store, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	sink, closeSink, err := openSink(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()

	m := metrics.New(serviceName)
	dispatcher := notify.NewDispatcher(sink, cfg.NotifyQueueSize, log, m)
	opts := service.Options{
		Notifier:   dispatcher,
		Authorizer: service.NewStoreAuthorizer(store),
		Metrics:    m,
		Logger:     log,
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	trigger := service.NewTrigger(store, opts)
	accounts := service.NewAccounts(store, tokens, opts)
	if err := seedModerators(ctx, store, accounts, seeds, log); err != nil {
		return err
	}

	loginLimiter := appmiddleware.NewRateLimiter(5, time.Minute)
	voteLimiter := appmiddleware.NewRateLimiter(30, time.Minute)

	router := handlers.NewRouter(handlers.RouterConfig{
		Accounts:       handlers.NewAccountsHandler(accounts, log),
		Contents:       handlers.NewContentsHandler(service.NewContents(store, opts), log),
		Polls:          handlers.NewPollsHandler(service.NewPolls(store, cfg.PollEnforceExpiry, opts), log),
		Moderation:     handlers.NewModerationHandler(service.NewModeration(store, opts), log),
		Scheduler:      handlers.NewSchedulerHandler(trigger, log),
		Tokens:         tokens,
		SchedulerToken: cfg.AuthToken,
		CorsOrigins:    cfg.CorsAllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		LoginLimiter:   loginLimiter,
		VoteLimiter:    voteLimiter,
		Metrics:        m,
		Health:         store,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dispatcher.Run()
		return nil
	})
	g.Go(func() error {
		loginLimiter.Janitor(gctx)
		return nil
	})
	g.Go(func() error {
		voteLimiter.Janitor(gctx)
		return nil
	})
	if publishInterval > 0 {
		g.Go(func() error {
			runTriggerLoop(gctx, trigger, publishInterval, log)
			return nil
		})
	}
	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("shutdown error")
		}
		if err := dispatcher.Stop(shutdownCtx); err != nil {
			log.WithError(err).Warn("notification queue not drained")
		}
		return nil
	})

	err = g.Wait()
	log.Info("stopped")
	return err
}

func runTriggerLoop(ctx context.Context, trigger *service.Trigger, every time.Duration, log *logrus.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := trigger.RunOnce(ctx, now.UTC()); err != nil {
				log.WithError(err).Error("publish trigger run failed")
			}
		}
	}
}
