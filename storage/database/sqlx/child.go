package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/child"
	"github.com/ajolotes/ajolotes/core/tutor"
	"github.com/ajolotes/ajolotes/storage/database"
)

const childColumns = "id_nino, id_tutor, genero, nombres, apellidos, password_figuras"

type childRepository struct {
	repository
}

var _ child.Repository = (*childRepository)(nil)

func NewChildRepository(db *sqlx.DB) *childRepository {
	return &childRepository{repository{db: db}}
}

// CreateChildren inserts children one by one; pass a transaction in exec to make the batch atomic.
func (repo childRepository) CreateChildren(ctx context.Context, children []child.Child, exec ...core.DBExecutor) ([]child.Child, error) {
	ex := repo.executor(exec)
	q := ex.Rebind(`INSERT INTO ninos (id_tutor, genero, nombres, apellidos, password_figuras)
		VALUES (?, ?, ?, ?, ?) RETURNING id_nino`)

	created := make([]child.Child, 0, len(children))
	for _, c := range children {
		if err := sqlx.GetContext(ctx, ex, &c.ID, q, c.TutorID, c.Gender, c.Names, c.Surnames, c.PictureHash); err != nil {
			if database.IsForeignKeyViolation(err) {
				return nil, tutor.ErrNotFound
			}
			return nil, errors.Wrap(err, "inserting child")
		}
		created = append(created, c)
	}
	return created, nil
}

func (repo childRepository) QueryChildren(ctx context.Context, filter child.QueryFilter, exec ...core.DBExecutor) ([]child.Child, error) {
	ex := repo.executor(exec)

	var (
		where []string
		args  []interface{}
	)
	if filter.TutorID > 0 {
		where = append(where, "id_tutor = ?")
		args = append(args, filter.TutorID)
	}
	if filter.Names != "" {
		where = append(where, "lower(nombres) = lower(?)")
		args = append(args, filter.Names)
	}
	if filter.Surnames != "" {
		where = append(where, "lower(apellidos) = lower(?)")
		args = append(args, filter.Surnames)
	}

	q := "SELECT " + childColumns + " FROM ninos"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY nombres, id_nino"

	var children []child.Child
	if err := sqlx.SelectContext(ctx, ex, &children, ex.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting children")
	}
	return children, nil
}
