package child

import (
	"context"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/tutor"
)

var (
	// errors
	ErrNotFound      = errors.New("child not found")
	ErrEmptyBatch    = errors.New("no se recibieron niños")
	ErrBatchTooLarge = errors.New("demasiados niños en un solo registro")

	dummyHash, _ = bcrypt.GenerateFromPassword([]byte("ajolote,ajolote,ajolote,ajolote"), bcrypt.DefaultCost)
)

type (
	QueryFilter struct {
		TutorID int64
		// Names and Surnames are matched case-insensitively.
		Names    string
		Surnames string
	}

	Repository interface {
		// CreateChildren returns tutor.ErrNotFound when the owning Tutor does not exist.
		CreateChildren(ctx context.Context, children []Child, exec ...core.DBExecutor) ([]Child, error)
		QueryChildren(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Child, error)
	}

	Service interface {
		// RegisterBatch validates every entry before writing, then inserts all of them in one transaction.
		RegisterBatch(ctx context.Context, tutorID int64, batch []NewChild) ([]Child, error)
		Authenticate(ctx context.Context, names, surnames, picturePwd string) (Child, error)
		QueryByTutor(ctx context.Context, tutorID int64) ([]Child, error)
	}

	service struct {
		db         core.DB
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository, validate *validator.Validate, translator ut.Translator) Service {
	return &service{
		db:         db,
		repo:       repo,
		validate:   validate,
		translator: translator,
	}
}

func (svc *service) RegisterBatch(ctx context.Context, tutorID int64, batch []NewChild) ([]Child, error) {
	if len(batch) == 0 {
		return nil, core.NewValidationError(ErrEmptyBatch)
	}
	if len(batch) > MaxBatchSize {
		return nil, core.NewValidationError(ErrBatchTooLarge)
	}

	var fldErrs []core.FieldError
	children := make([]Child, 0, len(batch))
	for i := range batch {
		nc := batch[i]
		idx := nc.Index
		if idx == 0 {
			idx = i + 1
		}
		if err := nc.Validate(svc.validate, svc.translator, "_"+strconv.Itoa(idx)); err != nil {
			verr, ok := core.AsValidationError(err)
			if !ok {
				return nil, err
			}
			fldErrs = append(fldErrs, verr.Fields...)
			continue
		}
		c := Child{
			TutorID:  tutorID,
			Gender:   nc.Gender,
			Names:    nc.Names,
			Surnames: nc.Surnames,
		}
		if err := c.SetPicturePassword(nc.PicturePassword); err != nil {
			return nil, errors.Wrap(err, "hashing picture password")
		}
		children = append(children, c)
	}
	if len(fldErrs) > 0 {
		return nil, core.NewValidationError(nil, fldErrs...)
	}

	err := core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		children, err = svc.repo.CreateChildren(ctx, children, tx)
		return err
	})
	if err != nil {
		if errors.Cause(err) == tutor.ErrNotFound {
			return nil, tutor.ErrNotFound
		}
		return nil, errors.Wrap(err, "creating children")
	}
	return children, nil
}

func (svc *service) Authenticate(ctx context.Context, names, surnames, picturePwd string) (Child, error) {
	names = core.CleanString(names)
	surnames = core.CleanString(surnames)
	if names == "" || surnames == "" {
		return Child{}, ErrNotFound
	}

	candidates, err := svc.repo.QueryChildren(ctx, QueryFilter{Names: names, Surnames: surnames})
	if err != nil {
		return Child{}, errors.Wrap(err, "querying children")
	}
	if len(candidates) == 0 {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(picturePwd))
		return Child{}, ErrNotFound
	}
	// same names may be shared by several children; the first matching password wins
	for _, c := range candidates {
		if c.CheckPicturePassword(picturePwd) == nil {
			return c, nil
		}
	}
	return Child{}, ErrNotFound
}

func (svc *service) QueryByTutor(ctx context.Context, tutorID int64) ([]Child, error) {
	return svc.repo.QueryChildren(ctx, QueryFilter{TutorID: tutorID})
}
