package tutor

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/ajolotes/ajolotes/core"
)

var (
	// errors
	ErrNotFound    = errors.New("tutor not found")
	ErrEmailExists = errors.New("ya existe un tutor con este correo")

	// compared against when no tutor matches, so that a miss costs as much as a wrong password
	dummyHash, _ = bcrypt.GenerateFromPassword([]byte("ajolot"), bcrypt.DefaultCost)
)

type (
	Repository interface {
		// CreateTutor returns ErrEmailExists when the email is already taken (case-insensitive).
		CreateTutor(ctx context.Context, t Tutor, exec ...core.DBExecutor) (Tutor, error)
		GetTutor(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Tutor, error)
		UpdateTutor(ctx context.Context, t Tutor, exec ...core.DBExecutor) (Tutor, error)
		// DeleteTutor also removes the Tutor's children.
		DeleteTutor(ctx context.Context, id int64, exec ...core.DBExecutor) error
	}

	Service interface {
		Register(ctx context.Context, nt NewTutor) (Tutor, error)
		Authenticate(ctx context.Context, email, pwd string) (Tutor, error)
		GetByID(ctx context.Context, id int64) (Tutor, error)
		GetByEmail(ctx context.Context, email string) (Tutor, error)
		Update(ctx context.Context, id int64, uu UpdateTutor) (Tutor, error)
		ResetPassword(ctx context.Context, email, pwd string) error
		Delete(ctx context.Context, id int64) error
		MakeRecoveryToken(t Tutor) (string, error)
		VerifyRecoveryToken(token string) (int64, error)
	}

	service struct {
		repo       Repository
		mailSvc    core.EmailService
		conf       *core.Config
		validate   *validator.Validate
		translator ut.Translator
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	mailSvc core.EmailService,
	conf *core.Config,
	validate *validator.Validate,
	translator ut.Translator,
) Service {
	return &service{
		repo:       repo,
		mailSvc:    mailSvc,
		conf:       conf,
		validate:   validate,
		translator: translator,
	}
}

func (svc *service) Register(ctx context.Context, nt NewTutor) (Tutor, error) {
	if err := nt.Validate(svc.validate, svc.translator); err != nil {
		return Tutor{}, err
	}

	t := Tutor{
		Role:     nt.Role,
		Names:    nt.Names,
		Surnames: nt.Surnames,
		Email:    nt.Email,
	}
	if err := t.SetPassword(nt.Password); err != nil {
		return Tutor{}, errors.Wrap(err, "hashing password")
	}

	t, err := svc.repo.CreateTutor(ctx, t)
	if err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return Tutor{}, emailExistsError()
		}
		return Tutor{}, errors.Wrap(err, "creating tutor")
	}

	svc.sendWelcomeMail(t)
	return t, nil
}

func (svc *service) Authenticate(ctx context.Context, email, pwd string) (Tutor, error) {
	t, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(pwd))
			return Tutor{}, ErrNotFound
		}
		return Tutor{}, err
	}
	if err = t.CheckPassword(core.CleanString(pwd)); err != nil {
		return Tutor{}, ErrNotFound
	}
	return t, nil
}

func (svc *service) GetByID(ctx context.Context, id int64) (Tutor, error) {
	return svc.repo.GetTutor(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (Tutor, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" {
		return Tutor{}, ErrNotFound
	}
	return svc.repo.GetTutor(ctx, GetFilter{Email: email})
}

func (svc *service) Update(ctx context.Context, id int64, uu UpdateTutor) (Tutor, error) {
	orig, err := svc.GetByID(ctx, id)
	if err != nil {
		return Tutor{}, err
	}
	if err = uu.Validate(orig, svc.validate, svc.translator); err != nil {
		return Tutor{}, err
	}

	t := Tutor{
		ID:           id,
		Role:         uu.Role,
		Names:        uu.Names,
		Surnames:     uu.Surnames,
		Email:        uu.Email,
		PasswordHash: orig.PasswordHash,
	}
	if uu.Password != "" {
		if err = t.SetPassword(uu.Password); err != nil {
			return Tutor{}, errors.Wrap(err, "hashing password")
		}
	}

	t, err = svc.repo.UpdateTutor(ctx, t)
	if err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return Tutor{}, emailExistsError()
		}
		return Tutor{}, errors.Wrap(err, "updating tutor")
	}
	return t, nil
}

func (svc *service) ResetPassword(ctx context.Context, email, pwd string) error {
	t, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	pwd = core.CleanString(pwd)
	if len([]rune(pwd)) != PasswordLength {
		return core.NewValidationError(nil, core.FieldError{Field: "password", Error: pwdLenText, Err: core.ErrBadPasswordLength})
	}
	if err = t.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	_, err = svc.repo.UpdateTutor(ctx, t)
	return errors.Wrap(err, "updating tutor")
}

func (svc *service) Delete(ctx context.Context, id int64) error {
	return svc.repo.DeleteTutor(ctx, id)
}

func (svc *service) MakeRecoveryToken(t Tutor) (string, error) {
	return makeToken(t, svc.conf.SecretKey, svc.conf.Auth.RecoveryTokenTTL)
}

func (svc *service) VerifyRecoveryToken(token string) (int64, error) {
	return verifyToken(token, svc.conf.SecretKey)
}

func (svc *service) sendWelcomeMail(t Tutor) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(NewWelcomeMessage(t, svc.conf.BaseURL()))
}

func emailExistsError() error {
	return core.NewValidationError(ErrEmailExists, core.FieldError{
		Field: "correo",
		Error: ErrEmailExists.Error(),
		Err:   ErrEmailExists,
	})
}
