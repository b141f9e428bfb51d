package data

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/sankulkush/UTHBUS-sub001/internal/errors"
)

// mapPgError converts pgx/postgres errors into the application taxonomy so
// callers never see driver types.
func mapPgError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound(notFoundMsg)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperrors.Wrap(err, apperrors.ErrCodeConflict, "record already exists")
		case pgerrcode.ForeignKeyViolation:
			return apperrors.Wrap(err, apperrors.ErrCodeConflict, "referenced record missing")
		}
	}

	return apperrors.Wrap(err, apperrors.ErrCodeUpstream, "profile store query failed")
}
