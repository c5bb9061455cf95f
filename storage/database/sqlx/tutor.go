package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/tutor"
	"github.com/ajolotes/ajolotes/storage/database"
)

const tutorColumns = "id_tutor, rol, nombres, apellidos, correo, password"

type tutorRepository struct {
	repository
}

var _ tutor.Repository = (*tutorRepository)(nil)

func NewTutorRepository(db *sqlx.DB) *tutorRepository {
	return &tutorRepository{repository{db: db}}
}

func (repo tutorRepository) CreateTutor(ctx context.Context, t tutor.Tutor, exec ...core.DBExecutor) (tutor.Tutor, error) {
	ex := repo.executor(exec)
	q := ex.Rebind(`INSERT INTO tutores (rol, nombres, apellidos, correo, password)
		VALUES (?, ?, ?, ?, ?) RETURNING id_tutor`)

	if err := sqlx.GetContext(ctx, ex, &t.ID, q, t.Role, t.Names, t.Surnames, t.Email, t.PasswordHash); err != nil {
		if database.IsUniqueViolation(err) {
			return tutor.Tutor{}, tutor.ErrEmailExists
		}
		return tutor.Tutor{}, errors.Wrap(err, "inserting tutor")
	}
	return t, nil
}

func (repo tutorRepository) GetTutor(ctx context.Context, filter tutor.GetFilter, exec ...core.DBExecutor) (tutor.Tutor, error) {
	ex := repo.executor(exec)

	var (
		q    string
		args []interface{}
	)
	switch {
	case filter.ID > 0:
		q = "SELECT " + tutorColumns + " FROM tutores WHERE id_tutor = ?"
		args = append(args, filter.ID)
	case filter.Email != "":
		q = "SELECT " + tutorColumns + " FROM tutores WHERE lower(correo) = lower(?)"
		args = append(args, filter.Email)
	default:
		return tutor.Tutor{}, tutor.ErrNotFound
	}

	var t tutor.Tutor
	if err := sqlx.GetContext(ctx, ex, &t, ex.Rebind(q), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tutor.Tutor{}, tutor.ErrNotFound
		}
		return tutor.Tutor{}, errors.Wrap(err, "selecting tutor")
	}
	return t, nil
}

func (repo tutorRepository) UpdateTutor(ctx context.Context, t tutor.Tutor, exec ...core.DBExecutor) (tutor.Tutor, error) {
	ex := repo.executor(exec)
	q := ex.Rebind(`UPDATE tutores SET rol = ?, nombres = ?, apellidos = ?, correo = ?, password = ?
		WHERE id_tutor = ?`)

	res, err := ex.ExecContext(ctx, q, t.Role, t.Names, t.Surnames, t.Email, t.PasswordHash, t.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return tutor.Tutor{}, tutor.ErrEmailExists
		}
		return tutor.Tutor{}, errors.Wrap(err, "updating tutor")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tutor.Tutor{}, tutor.ErrNotFound
	}
	return t, nil
}

func (repo tutorRepository) DeleteTutor(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	ex := repo.executor(exec)

	res, err := ex.ExecContext(ctx, ex.Rebind("DELETE FROM tutores WHERE id_tutor = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting tutor")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tutor.ErrNotFound
	}
	return nil
}
