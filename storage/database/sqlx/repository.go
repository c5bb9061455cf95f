package sqlxrepos

import (
	"github.com/jmoiron/sqlx"

	"github.com/ajolotes/ajolotes/core"
)

type repository struct {
	db *sqlx.DB
}

// executor returns the first exec if given (e.g. a transaction), the repository's DB otherwise.
func (repo repository) executor(exec []core.DBExecutor) core.DBExecutor {
	if len(exec) > 0 && exec[0] != nil {
		return exec[0]
	}
	return repo.db
}
