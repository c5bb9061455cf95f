// Package testutil opens throwaway databases and creates fixtures for tests.
package testutil

import (
	"context"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/child"
	"github.com/ajolotes/ajolotes/core/tutor"
	"github.com/ajolotes/ajolotes/storage/database"
)

// NewConfig returns a test Config rooted in a temporary directory.
func NewConfig(t *testing.T) *core.Config {
	t.Helper()
	return core.NewTestConfig(t.TempDir())
}

// OpenDB opens a migrated SQLite database living in conf's work dir. It is closed when the test ends.
func OpenDB(t *testing.T, conf *core.Config) *sqlx.DB {
	t.Helper()
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("database.Open(): %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("db.Close(): %v", err)
		}
	})
	if err = database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("database.Migrate(): %v", err)
	}
	return db
}

// NewValidator returns a validator with every custom tag registered, and its Spanish translator.
func NewValidator(conf *core.Config) (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	tutor.InitValidators(validate, translator, conf)
	child.InitValidators(validate, translator)
	return validate, translator
}

func CreateTutor(t *testing.T, repo tutor.Repository, names, surnames, email, pwd, role string) tutor.Tutor {
	t.Helper()
	tt := tutor.Tutor{
		Role:     role,
		Names:    names,
		Surnames: surnames,
		Email:    email,
	}
	if err := tt.SetPassword(pwd); err != nil {
		t.Fatalf("CreateTutor() failed: %v", err)
	}
	tt, err := repo.CreateTutor(context.Background(), tt)
	if err != nil {
		t.Fatalf("CreateTutor() failed: %v", err)
	}
	return tt
}

func CreateChild(t *testing.T, repo child.Repository, tutorID int64, names, surnames, gender, picturePwd string) child.Child {
	t.Helper()
	c := child.Child{
		TutorID:  tutorID,
		Gender:   gender,
		Names:    names,
		Surnames: surnames,
	}
	if err := c.SetPicturePassword(picturePwd); err != nil {
		t.Fatalf("CreateChild() failed: %v", err)
	}
	children, err := repo.CreateChildren(context.Background(), []child.Child{c})
	if err != nil {
		t.Fatalf("CreateChild() failed: %v", err)
	}
	return children[0]
}

// CountRows returns the number of rows of table.
func CountRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	if err := db.Get(&n, "SELECT count(*) FROM "+table); err != nil {
		t.Fatalf("CountRows(%s): %v", table, err)
	}
	return n
}
