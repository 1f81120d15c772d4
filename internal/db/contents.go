package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/BorisDmv/snip-api/internal/models"
)

const contentColumns = `
	id::text,
	author_id::text,
	kind,
	title,
	body,
	media_url,
	status,
	scheduled_at,
	poll_question,
	poll_expires_at,
	total_votes,
	created_at,
	updated_at`

func scanContent(row pgx.Row) (*models.Content, error) {
	var (
		c           models.Content
		question    *string
		expiresAt   *time.Time
		totalVotes  int
		kind        string
		status      string
		scheduledAt *time.Time
	)
	if err := row.Scan(
		&c.ID,
		&c.AuthorID,
		&kind,
		&c.Title,
		&c.Body,
		&c.MediaURL,
		&status,
		&scheduledAt,
		&question,
		&expiresAt,
		&totalVotes,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Kind = models.Kind(kind)
	c.Status = models.Status(status)
	c.ScheduledAt = scheduledAt
	if question != nil {
		c.Poll = &models.Poll{Question: *question, ExpiresAt: expiresAt, TotalVotes: totalVotes}
	}
	return &c, nil
}

func collectContents(rows pgx.Rows) ([]models.Content, error) {
	defer rows.Close()
	items := make([]models.Content, 0)
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}

func pollQuestion(c models.Content) (*string, *time.Time) {
	if c.Poll == nil {
		return nil, nil
	}
	q := c.Poll.Question
	return &q, c.Poll.ExpiresAt
}

func (s *Store) CreateContent(ctx context.Context, c models.Content) (*models.Content, error) {
	var created *models.Content
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		question, expiresAt := pollQuestion(c)
		row := tx.QueryRow(ctx, `
			INSERT INTO contents (author_id, kind, title, body, media_url, status, scheduled_at,
			                      poll_question, poll_expires_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING`+contentColumns,
			c.AuthorID, string(c.Kind), c.Title, c.Body, c.MediaURL, string(c.Status), c.ScheduledAt,
			question, expiresAt, c.CreatedAt, c.UpdatedAt,
		)
		var err error
		created, err = scanContent(row)
		if err != nil {
			return fmt.Errorf("create content: %w", err)
		}
		if c.Poll == nil {
			return nil
		}
		for i, opt := range c.Poll.Options {
			var id string
			err := tx.QueryRow(ctx, `
				INSERT INTO poll_options (content_id, position, text)
				VALUES ($1, $2, $3)
				RETURNING id::text`,
				created.ID, i, opt.Text,
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("create poll option: %w", err)
			}
			created.Poll.Options = append(created.Poll.Options, models.PollOption{ID: id, Text: opt.Text})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) GetContent(ctx context.Context, id string) (*models.Content, error) {
	var c *models.Content
	err := s.run(ctx, func() error {
		var err error
		c, err = scanContent(s.db.QueryRow(ctx, `SELECT`+contentColumns+` FROM contents WHERE id = $1`, id))
		if err != nil {
			return fmt.Errorf("get content %s: %w", id, err)
		}
		return loadOptions(ctx, s.db, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func loadOptions(ctx context.Context, q querier, c *models.Content) error {
	if c.Poll == nil {
		return nil
	}
	rows, err := q.Query(ctx, `
		SELECT id::text, text, votes
		FROM poll_options
		WHERE content_id = $1
		ORDER BY position`, c.ID)
	if err != nil {
		return fmt.Errorf("load poll options: %w", err)
	}
	defer rows.Close()
	c.Poll.Options = c.Poll.Options[:0]
	for rows.Next() {
		var o models.PollOption
		if err := rows.Scan(&o.ID, &o.Text, &o.Votes); err != nil {
			return fmt.Errorf("scan poll option: %w", err)
		}
		c.Poll.Options = append(c.Poll.Options, o)
	}
	return rows.Err()
}

func (s *Store) ListContent(ctx context.Context, filter models.ContentFilter) ([]models.Content, int, error) {
	var (
		where []string
		args  []any
	)
	if filter.AuthorID != "" {
		args = append(args, filter.AuthorID)
		where = append(where, fmt.Sprintf("author_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		args = append(args, statuses)
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var (
		items []models.Content
		total int
	)
	err := s.inReadTx(ctx, func(tx pgx.Tx) error {
		pageArgs := append(append([]any(nil), args...), models.PageSize, filter.Offset())
		rows, err := tx.Query(ctx, `SELECT`+contentColumns+` FROM contents`+clause+
			fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2),
			pageArgs...)
		if err != nil {
			return fmt.Errorf("list content: %w", err)
		}
		items, err = collectContents(rows)
		if err != nil {
			return err
		}
		for i := range items {
			if err := loadOptions(ctx, tx, &items[i]); err != nil {
				return err
			}
		}
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM contents`+clause, args...).Scan(&total); err != nil {
			return fmt.Errorf("count content: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Store) UpdateContent(ctx context.Context, id string, mutate func(*models.Content) error) (*models.Content, error) {
	var updated *models.Content
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		current, err := scanContent(tx.QueryRow(ctx, `SELECT`+contentColumns+` FROM contents WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return fmt.Errorf("lock content %s: %w", id, err)
		}
		if err := loadOptions(ctx, tx, current); err != nil {
			return err
		}
		working := current.Clone()
		if err := mutate(&working); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE contents
			SET title = $2, body = $3, media_url = $4, status = $5,
			    scheduled_at = $6, created_at = $7, updated_at = $8
			WHERE id = $1`,
			id, working.Title, working.Body, working.MediaURL, string(working.Status),
			working.ScheduledAt, working.CreatedAt, working.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update content %s: %w", id, err)
		}
		working.ID, working.AuthorID, working.Poll = current.ID, current.AuthorID, current.Poll
		updated = &working
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteContent relies on ON DELETE CASCADE for poll options, votes and appeals.
func (s *Store) DeleteContent(ctx context.Context, id string) error {
	return s.run(ctx, func() error {
		tag, err := s.db.Exec(ctx, `DELETE FROM contents WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete content %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("delete content %s: %w", id, errNoRowsAffected)
		}
		return nil
	})
}

// PublishDue is a single UPDATE, so concurrent runs cannot publish an item twice.
// Returned items carry poll questions but not their options.
func (s *Store) PublishDue(ctx context.Context, now time.Time) ([]models.Content, error) {
	var published []models.Content
	err := s.run(ctx, func() error {
		rows, err := s.db.Query(ctx, `
			UPDATE contents
			SET status = 'published', scheduled_at = NULL, created_at = $1, updated_at = $1
			WHERE status = 'draft' AND scheduled_at IS NOT NULL AND scheduled_at <= $1
			RETURNING`+contentColumns, now)
		if err != nil {
			return fmt.Errorf("publish due: %w", err)
		}
		published, err = collectContents(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return published, nil
}
