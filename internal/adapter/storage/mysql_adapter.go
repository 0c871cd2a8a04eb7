package storage

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/velocar/velocar/internal/port"
)

// The MySQL adapters implement the repository ports over a shared *sql.DB,
// one store per aggregate: MySQLCatalog (read-only lookups), MySQLCartStore,
// MySQLOrderStore and MySQLFavoriteStore.

// MySQL error numbers this module reacts to.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// translateErr converts driver-level failures into port sentinels so the
// service layer never inspects MySQL error numbers itself.
func translateErr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlErrDuplicateEntry:
			return fmt.Errorf("%w: %v", port.ErrDuplicateKey, err)
		case mysqlErrDeadlock, mysqlErrLockWaitTimeout:
			return fmt.Errorf("%w: %v", port.ErrConflict, err)
		}
	}
	return err
}
