package db

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	    username TEXT NOT NULL,
	    password_hash TEXT NOT NULL,
	    moderator BOOLEAN NOT NULL DEFAULT false,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (lower(username));`,
	`CREATE TABLE IF NOT EXISTS contents (
	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	    author_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	    kind TEXT NOT NULL DEFAULT 'post',
	    title TEXT NOT NULL DEFAULT '',
	    body TEXT NOT NULL DEFAULT '',
	    media_url TEXT NOT NULL DEFAULT '',
	    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'published', 'hidden')),
	    scheduled_at TIMESTAMPTZ,
	    poll_question TEXT,
	    poll_expires_at TIMESTAMPTZ,
	    total_votes INTEGER NOT NULL DEFAULT 0,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	    CONSTRAINT contents_schedule_draft_only CHECK (scheduled_at IS NULL OR status = 'draft')
	);`,
	`CREATE INDEX IF NOT EXISTS contents_feed_idx ON contents (status, created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS contents_author_idx ON contents (author_id, created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS contents_due_idx ON contents (scheduled_at) WHERE status = 'draft';`,
	`CREATE TABLE IF NOT EXISTS poll_options (
	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	    content_id UUID NOT NULL REFERENCES contents(id) ON DELETE CASCADE,
	    position INTEGER NOT NULL,
	    text TEXT NOT NULL,
	    votes INTEGER NOT NULL DEFAULT 0,
	    UNIQUE (content_id, position)
	);`,
	`CREATE TABLE IF NOT EXISTS votes (
	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	    poll_id UUID NOT NULL REFERENCES contents(id) ON DELETE CASCADE,
	    option_id UUID NOT NULL REFERENCES poll_options(id) ON DELETE CASCADE,
	    user_id UUID NOT NULL,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	    UNIQUE (poll_id, user_id)
	);`,
	`CREATE TABLE IF NOT EXISTS appeals (
	    content_id UUID PRIMARY KEY REFERENCES contents(id) ON DELETE CASCADE,
	    reason TEXT NOT NULL,
	    submitter_id UUID NOT NULL,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
}

// Migrate creates any missing tables and indexes. It is safe to run on every boot.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	return nil
}
