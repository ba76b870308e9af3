package repositories

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	domainerrors "sportsadmin.backend/internal/domain/errors"
)

const pqUniqueViolation = "23505"

// translate maps driver and gorm errors onto domain sentinels.
// gorm's postgres translator only understands pgx errors, so lib/pq codes are checked here.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainerrors.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainerrors.ErrAlreadyExists
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
		return domainerrors.ErrAlreadyExists
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domainerrors.ErrAlreadyExists
	}
	return err
}
