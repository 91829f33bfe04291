package adapters

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"survey_backend/internal/feature/surveys/usecase"
)

// PostgreSQL SQLSTATE codes for constraint violations.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// translateError maps storage constraint failures to usecase.ErrReferentialIntegrity
// and returns every other error unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return usecase.ErrReferentialIntegrity
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation, pgUniqueViolation:
			return usecase.ErrReferentialIntegrity
		}
		return err
	}

	// SQLite without error translation only exposes the message.
	msg := err.Error()
	if strings.Contains(msg, "FOREIGN KEY constraint failed") || strings.Contains(msg, "UNIQUE constraint failed") {
		return usecase.ErrReferentialIntegrity
	}
	return err
}
