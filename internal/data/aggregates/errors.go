package aggregates

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
)

var sentinels = []error{
	perr.ErrNotFound,
	perr.ErrInvalidArgument,
	perr.ErrInvalidReference,
	perr.ErrConflict,
	perr.ErrForbidden,
	perr.ErrUnauthorized,
}

// MapError folds database failures into the shared error sentinels so
// handlers can map them to HTTP statuses. Errors that already carry a
// sentinel pass through untouched.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w: %v", op, perr.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return fmt.Errorf("%s: %w: %v", op, perr.ErrConflict, err) // unique_violation
		case "23503":
			return fmt.Errorf("%s: %w: %v", op, perr.ErrInvalidReference, err) // foreign_key_violation
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint failed"):
		return fmt.Errorf("%s: %w: %v", op, perr.ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func errorStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, perr.ErrConflict):
		return "conflict"
	case errors.Is(err, perr.ErrNotFound):
		return "not_found"
	case errors.Is(err, perr.ErrInvalidArgument), errors.Is(err, perr.ErrInvalidReference):
		return "invalid"
	default:
		return "failure"
	}
}
