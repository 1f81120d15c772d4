package db

import (
	"context"
	"fmt"

	"github.com/BorisDmv/snip-api/internal/models"
)

// CreateAppeal relies on the primary key over content_id: a second insert is
// a unique violation and surfaces as ErrConflict.
func (s *Store) CreateAppeal(ctx context.Context, a models.Appeal) (*models.Appeal, error) {
	var created models.Appeal
	err := s.run(ctx, func() error {
		err := s.db.QueryRow(ctx, `
			INSERT INTO appeals (content_id, reason, submitter_id, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING content_id::text, reason, submitter_id::text, created_at`,
			a.ContentID, a.Reason, a.SubmitterID, a.CreatedAt,
		).Scan(&created.ContentID, &created.Reason, &created.SubmitterID, &created.CreatedAt)
		if err != nil {
			return fmt.Errorf("create appeal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) GetAppeal(ctx context.Context, contentID string) (*models.Appeal, error) {
	var a models.Appeal
	err := s.run(ctx, func() error {
		err := s.db.QueryRow(ctx, `
			SELECT content_id::text, reason, submitter_id::text, created_at
			FROM appeals
			WHERE content_id = $1`,
			contentID,
		).Scan(&a.ContentID, &a.Reason, &a.SubmitterID, &a.CreatedAt)
		if err != nil {
			return fmt.Errorf("get appeal %s: %w", contentID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}
