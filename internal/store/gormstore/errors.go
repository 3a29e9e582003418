package gormstore

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"blood-request-coordinator/internal/store"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// MySQL server error numbers
const (
	mysqlDBAccessDenied      = 1044
	mysqlAccessDenied        = 1045
	mysqlTableAccessDenied   = 1142
	mysqlSpecificAccessDeny  = 1227
	mysqlKeyDoesNotExist     = 1176
	mysqlFulltextIndexAbsent = 1191
)

// classify maps driver errors onto the store sentinels, keeping the
// original error in the chain.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, store.ErrNotFound) {
		return store.ErrNotFound
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDBAccessDenied, mysqlAccessDenied, mysqlTableAccessDenied, mysqlSpecificAccessDeny:
			return fmt.Errorf("%s: %w: %w", op, store.ErrPermissionDenied, err)
		case mysqlKeyDoesNotExist, mysqlFulltextIndexAbsent:
			return fmt.Errorf("%s: %w: %w", op, store.ErrIndexRequired, err)
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "42501":
			return fmt.Errorf("%s: %w: %w", op, store.ErrPermissionDenied, err)
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == "08":
			return fmt.Errorf("%s: %w: %w", op, store.ErrUnavailable, err)
		}
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%s: %w: %w", op, store.ErrUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
