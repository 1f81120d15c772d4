package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/BorisDmv/snip-api/internal/models"
)

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeInvalidText          = "22P02"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return pgconn.SafeToRetry(err)
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, domain := range []error{
		models.ErrValidation, models.ErrUnauthorized, models.ErrNotFound,
		models.ErrConflict, models.ErrTransient,
	} {
		if errors.Is(err, domain) {
			return err
		}
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, errNoRowsAffected) {
		return fmt.Errorf("%w: %v", models.ErrNotFound, err)
	}
	switch pgCode(err) {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %v", models.ErrConflict, err)
	case codeForeignKeyViolation, codeInvalidText:
		return fmt.Errorf("%w: %v", models.ErrNotFound, err)
	case codeCheckViolation:
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %v", models.ErrTransient, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %v", models.ErrTransient, err)
	}
	return err
}
