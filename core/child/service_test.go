package child_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/child"
	"github.com/ajolotes/ajolotes/core/tutor"
	sqlxrepos "github.com/ajolotes/ajolotes/storage/database/sqlx"
	"github.com/ajolotes/ajolotes/tests"
)

type fixture struct {
	svc       child.Service
	childRepo child.Repository
	tutorRepo tutor.Repository
	count     func() int
}

func setup(t *testing.T) fixture {
	conf := testutil.NewConfig(t)
	db := testutil.OpenDB(t, conf)
	validate, translator := testutil.NewValidator(conf)
	childRepo := sqlxrepos.NewChildRepository(db)
	return fixture{
		svc:       child.NewService(db, childRepo, validate, translator),
		childRepo: childRepo,
		tutorRepo: sqlxrepos.NewTutorRepository(db),
		count:     func() int { return testutil.CountRows(t, db, "ninos") },
	}
}

func newChild(names, gender, pwd string) child.NewChild {
	return child.NewChild{Names: names, Surnames: "López Pérez", Gender: gender, PicturePassword: pwd}
}

func TestService_RegisterBatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	rosa := testutil.CreateTutor(t, f.tutorRepo, "Rosa", "López", "rosa@mail.com", "abc123", tutor.RoleParent)

	tooMany := make([]child.NewChild, child.MaxBatchSize+1)
	for i := range tooMany {
		tooMany[i] = newChild(fmt.Sprintf("Niño %d", i), child.GenderBoy, "oso,oso,oso,oso")
	}

	tests := []struct {
		name       string
		tutorID    int64
		batch      []child.NewChild
		wantErr    error
		wantFields []string
	}{
		{name: "empty batch", tutorID: rosa.ID, wantErr: child.ErrEmptyBatch},
		{name: "too many", tutorID: rosa.ID, batch: tooMany, wantErr: child.ErrBatchTooLarge},
		{
			name:    "one bad entry fails the batch",
			tutorID: rosa.ID,
			batch: []child.NewChild{
				newChild("Ana", child.GenderGirl, "ajolote,oso,perro,borrego"),
				newChild("Beto", "Ajolote", "oso,oso,oso"),
			},
			wantErr:    core.ErrBadGender,
			wantFields: []string{"tipo_usuario_2", "contraseña_2"},
		},
		{
			name:       "unknown animal",
			tutorID:    rosa.ID,
			batch:      []child.NewChild{{Names: "Ana", Surnames: "López", Gender: child.GenderGirl, PicturePassword: "oso,oso,oso,gato", Index: 3}},
			wantErr:    core.ErrBadPictureToken,
			wantFields: []string{"contraseña_3"},
		},
		{name: "unknown tutor", tutorID: rosa.ID + 100, batch: []child.NewChild{newChild("Ana", child.GenderGirl, "oso,oso,oso,oso")}, wantErr: tutor.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RegisterBatch(ctx, tt.tutorID, tt.batch)
			assert.ErrorIs(t, err, tt.wantErr)
			if verr, ok := core.AsValidationError(err); ok {
				for _, fld := range tt.wantFields {
					assert.Contains(t, verr.FieldMap(), fld)
				}
			}
			assert.Equal(t, 0, f.count(), "nothing written")
		})
	}

	t.Run("valid", func(t *testing.T) {
		got, err := f.svc.RegisterBatch(ctx, rosa.ID, []child.NewChild{
			newChild(" Ana ", child.GenderGirl, " ajolote , oso,perro,borrego"),
			newChild("Beto", child.GenderBoy, "oso,oso,oso,oso"),
		})
		if !assert.NoError(t, err) {
			return
		}
		if assert.Len(t, got, 2) {
			assert.NotZero(t, got[0].ID)
			assert.NotEqual(t, got[0].ID, got[1].ID)
			assert.Equal(t, "Ana", got[0].Names)
			assert.Equal(t, rosa.ID, got[1].TutorID)
		}
		assert.Equal(t, 2, f.count())
	})
}

func TestService_Authenticate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	rosa := testutil.CreateTutor(t, f.tutorRepo, "Rosa", "López", "rosa@mail.com", "abc123", tutor.RoleParent)
	juan := testutil.CreateTutor(t, f.tutorRepo, "Juan", "Pérez", "juan@mail.com", "abc123", tutor.RoleTeacher)
	ana := testutil.CreateChild(t, f.childRepo, rosa.ID, "Ana", "Ruiz", child.GenderGirl, "ajolote,oso,perro,borrego")
	// same names, another tutor and password
	ana2 := testutil.CreateChild(t, f.childRepo, juan.ID, "Ana", "Ruiz", child.GenderGirl, "perro,perro,oso,oso")

	tests := []struct {
		name     string
		names    string
		surnames string
		pwd      string
		wantID   int64
		wantErr  error
	}{
		{name: "blank names", surnames: "Ruiz", pwd: "ajolote,oso,perro,borrego", wantErr: child.ErrNotFound},
		{name: "unknown child", names: "Luis", surnames: "Ruiz", pwd: "ajolote,oso,perro,borrego", wantErr: child.ErrNotFound},
		{name: "wrong order", names: "Ana", surnames: "Ruiz", pwd: "oso,ajolote,perro,borrego", wantErr: child.ErrNotFound},
		{name: "first homonym", names: "Ana", surnames: "Ruiz", pwd: "ajolote,oso,perro,borrego", wantID: ana.ID},
		{name: "second homonym", names: "ana", surnames: "RUIZ", pwd: "perro, perro, oso, oso", wantID: ana2.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Authenticate(ctx, tt.names, tt.surnames, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			if assert.NoError(t, err) {
				assert.Equal(t, tt.wantID, got.ID)
			}
		})
	}

	t.Run("query by tutor", func(t *testing.T) {
		got, err := f.svc.QueryByTutor(ctx, juan.ID)
		if assert.NoError(t, err) && assert.Len(t, got, 1) {
			assert.Equal(t, ana2.ID, got[0].ID)
		}
	})
}
