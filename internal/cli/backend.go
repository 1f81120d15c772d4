package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/BorisDmv/snip-api/internal/config"
	"github.com/BorisDmv/snip-api/internal/db"
	"github.com/BorisDmv/snip-api/internal/memstore"
	"github.com/BorisDmv/snip-api/internal/notify"
	"github.com/BorisDmv/snip-api/internal/service"
)

type backend interface {
	service.Store
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	SetModerator(ctx context.Context, userID string, moderator bool) error
	Close()
}

var (
	_ backend = (*db.Store)(nil)
	_ backend = (*memstore.Store)(nil)
)

func openBackend(ctx context.Context, cfg config.Config, log *logrus.Logger) (backend, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on exit")
		return memstore.New(), nil
	default:
		store, err := db.NewStore(ctx, cfg.DatabaseURL, db.Options{
			MaxConns:   int32(cfg.DBMaxConns),
			MaxRetries: cfg.DBRetryMax,
			Logger:     log,
		})
		if err != nil {
			return nil, fmt.Errorf("db connect failed: %w", err)
		}
		return store, nil
	}
}

// openSink returns the delivery target for notifications: Redis pub/sub when
// REDIS_URL is set, the log otherwise. The returned func releases it.
func openSink(ctx context.Context, cfg config.Config, log *logrus.Logger) (service.Notifier, func(), error) {
	if cfg.RedisURL == "" {
		return notify.LogNotifier{Logger: log}, func() {}, nil
	}
	client, err := notify.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return notify.NewRedisNotifier(client, cfg.NotifyChannel), func() { _ = client.Close() }, nil
}
