package pg

import (
	"errors"

	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// classify maps a pgx error onto the storage error kinds using the SQLSTATE class.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.NewError(storage.KindNotFound, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return storage.NewError(sqlStateKind(pgErr.Code), op, err)
	}
	if pgconn.Timeout(err) {
		return storage.NewError(storage.KindTransient, op, err)
	}
	return storage.NewError(storage.KindOf(err), op, err)
}

func sqlStateKind(code string) storage.ErrorKind {
	if code == "42501" {
		return storage.KindPermissionDenied
	}
	if len(code) < 2 {
		return storage.KindUnknown
	}
	switch code[:2] {
	case "08", "40", "53", "57":
		// connection, rollback, resources, operator intervention
		return storage.KindTransient
	case "28":
		return storage.KindPermissionDenied
	case "22", "23":
		return storage.KindValidation
	default:
		return storage.KindUnknown
	}
}
