package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/BorisDmv/snip-api/internal/models"
)

// CastVote locks the poll row for the whole transaction, so concurrent votes
// on one poll are serialized and the duplicate check cannot race. The
// UNIQUE (poll_id, user_id) constraint backs it up.
func (s *Store) CastVote(ctx context.Context, v models.Vote, check func(*models.Content) error) (*models.Tally, error) {
	var tally *models.Tally
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		poll, err := scanContent(tx.QueryRow(ctx, `SELECT`+contentColumns+` FROM contents WHERE id = $1 FOR UPDATE`, v.PollID))
		if err != nil {
			return fmt.Errorf("lock poll %s: %w", v.PollID, err)
		}
		if poll.Poll == nil {
			return fmt.Errorf("%w: poll %s", models.ErrNotFound, v.PollID)
		}
		if err := loadOptions(ctx, tx, poll); err != nil {
			return err
		}
		if err := check(poll); err != nil {
			return err
		}
		idx := -1
		for i, o := range poll.Poll.Options {
			if o.ID == v.OptionID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: poll option %s", models.ErrNotFound, v.OptionID)
		}

		var voted bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM votes WHERE poll_id = $1 AND user_id = $2)`,
			v.PollID, v.UserID,
		).Scan(&voted); err != nil {
			return fmt.Errorf("check vote: %w", err)
		}
		if voted {
			return fmt.Errorf("%w: user already voted on poll %s", models.ErrConflict, v.PollID)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO votes (poll_id, option_id, user_id, created_at)
			VALUES ($1, $2, $3, $4)`,
			v.PollID, v.OptionID, v.UserID, v.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert vote: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE poll_options SET votes = votes + 1 WHERE id = $1 AND content_id = $2`,
			v.OptionID, v.PollID,
		); err != nil {
			return fmt.Errorf("increment option: %w", err)
		}
		var total int
		if err := tx.QueryRow(ctx, `
			UPDATE contents
			SET total_votes = (SELECT COUNT(*) FROM votes WHERE poll_id = $1)
			WHERE id = $1
			RETURNING total_votes`,
			v.PollID,
		).Scan(&total); err != nil {
			return fmt.Errorf("recount votes: %w", err)
		}

		poll.Poll.Options[idx].Votes++
		poll.Poll.TotalVotes = total
		tally = poll.Poll.Tally(poll.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tally, nil
}

func (s *Store) GetTally(ctx context.Context, pollID string) (*models.Tally, error) {
	c, err := s.GetContent(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if c.Poll == nil {
		return nil, fmt.Errorf("%w: poll %s", models.ErrNotFound, pollID)
	}
	return c.Poll.Tally(c.ID), nil
}
