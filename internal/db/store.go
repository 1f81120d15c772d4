package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/BorisDmv/snip-api/internal/service"
)

var _ service.Store = (*Store)(nil)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Options struct {
	MaxConns     int32
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *logrus.Logger
}

type Store struct {
	db     DB
	retry  retrypolicy.RetryPolicy[any]
	logger *logrus.Logger
}

// NewStore connects a pgx pool to databaseURL and pings it.
func NewStore(ctx context.Context, databaseURL string, opts Options) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	cfg.ConnConfig.StatementCacheCapacity = 256

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return New(pool, opts), nil
}

// New wraps an existing connection (a pool or a mock).
func New(db DB, opts Options) *Store {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 20 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Store{db: db, logger: logger}
	s.retry = retrypolicy.NewBuilder[any]().
		HandleIf(func(_ any, err error) bool {
			return isRetryable(err)
		}).
		WithBackoff(opts.RetryBackoff, 10*opts.RetryBackoff).
		WithJitterFactor(0.1).
		WithMaxRetries(opts.MaxRetries).
		ReturnLastFailure().
		OnRetry(func(e failsafe.ExecutionEvent[any]) {
			s.logger.WithError(e.LastError()).WithField("attempt", e.Attempts()).Warn("retrying database operation")
		}).
		Build()
	return s
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// run executes fn under the retry policy and maps driver errors onto the
// domain taxonomy.
func (s *Store) run(ctx context.Context, fn func() error) error {
	err := failsafe.With(s.retry).WithContext(ctx).Run(fn)
	return classify(err)
}

// inTx runs fn in a transaction, retrying the whole transaction on
// serialization failures and deadlocks.
func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return s.run(ctx, func() error {
		return within(ctx, s.db.Begin, fn)
	})
}

// readSnapshot gives every statement in the transaction the same view, so a
// page and its total count agree.
var readSnapshot = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

func (s *Store) inReadTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return s.run(ctx, func() error {
		return within(ctx, func(ctx context.Context) (pgx.Tx, error) {
			return s.db.BeginTx(ctx, readSnapshot)
		}, fn)
	})
}

func within(ctx context.Context, begin func(context.Context) (pgx.Tx, error), fn func(tx pgx.Tx) error) error {
	tx, err := begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

var errNoRowsAffected = errors.New("no rows affected")
