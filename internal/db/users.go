package db

import (
	"context"
	"fmt"

	"github.com/BorisDmv/snip-api/internal/models"
)

const userColumns = `id::text, username, password_hash, moderator, created_at`

func (s *Store) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	var created models.User
	err := s.run(ctx, func() error {
		err := s.db.QueryRow(ctx, `
			INSERT INTO users (username, password_hash, created_at)
			VALUES ($1, $2, $3)
			RETURNING `+userColumns,
			user.Username, user.PasswordHash, user.CreatedAt,
		).Scan(&created.ID, &created.Username, &created.PasswordHash, &created.Moderator, &created.CreatedAt)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var user models.User
	err := s.run(ctx, func() error {
		err := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg).
			Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Moderator, &user.CreatedAt)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `lower(username) = lower($1)`, username)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, `id = $1`, id)
}

func (s *Store) SetModerator(ctx context.Context, userID string, moderator bool) error {
	return s.run(ctx, func() error {
		tag, err := s.db.Exec(ctx, `UPDATE users SET moderator = $2 WHERE id = $1`, userID, moderator)
		if err != nil {
			return fmt.Errorf("set moderator: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("set moderator %s: %w", userID, errNoRowsAffected)
		}
		return nil
	})
}
