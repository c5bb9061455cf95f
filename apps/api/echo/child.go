package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/child"
	"github.com/ajolotes/ajolotes/core/session"
	"github.com/ajolotes/ajolotes/core/tutor"
)

// child login error codes, passed back to the form in ?error=
const (
	loginErrFields      = "campos"
	loginErrCount       = "pass"
	loginErrAnimals     = "animales"
	loginErrCredentials = "credenciales"
	loginErrSystem      = "sistema"
)

var loginErrMessages = map[string]string{
	loginErrFields:      "Por favor llena todos los campos.",
	loginErrCount:       fmt.Sprintf("Tu contraseña debe tener exactamente %d animales.", child.PictureLength),
	loginErrAnimals:     "Tu contraseña solo puede tener ajolote, borrego, oso o perro.",
	loginErrCredentials: "No encontramos a nadie con esos datos. ¡Inténtalo de nuevo!",
	loginErrSystem:      msgSystemError,
}

type childApi struct {
	svc        child.Service
	sessions   *sessionManager
	metrics    *metrics
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
}

func registerChildAPI(
	g *echo.Group,
	sessions *sessionManager,
	m *metrics,
	svc child.Service,
	logger core.Logger,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := childApi{
		svc:        svc,
		sessions:   sessions,
		metrics:    m,
		logger:     logger,
		validate:   validate,
		translator: translator,
	}

	g.GET("/registrar_chiquillo", api.registrationForm)
	g.POST("/registrar_chiquillo", api.register)
	g.GET("/iniciar_sesion", api.loginForm)
	g.POST("/iniciar_sesion", api.login)
	g.GET("/cerrar_sesion", api.logout)
	g.GET("/logout", api.logout)
}

// Handlers

func (api *childApi) registrationForm(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	if _, err = sess.PendingTutor(); err != nil {
		return ctx.Redirect(http.StatusSeeOther, "/registrar_tutor")
	}
	return ctx.Render(http.StatusOK, "registrar_chiquillo", page{Title: "Registra a tus chiquillos", Data: child.AllGenders})
}

func (api *childApi) register(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	tutorID, err := sess.PendingTutor()
	if err != nil {
		api.metrics.registration(session.KindChild, resultRejected)
		return ctx.Redirect(http.StatusSeeOther, "/registrar_tutor")
	}

	form, err := ctx.FormParams()
	if err != nil {
		return errors.Wrap(err, "parsing form")
	}

	children, err := api.svc.RegisterBatch(ctx.Request().Context(), tutorID, bindChildren(form))
	if err != nil {
		if verr, ok := core.AsValidationError(err); ok {
			api.metrics.registration(session.KindChild, resultInvalid)
			return ctx.Render(http.StatusBadRequest, "registrar_chiquillo", page{
				Title:  "Registra a tus chiquillos",
				Error:  validationMessage(verr),
				Errors: verr.FieldMap(),
				Form:   formValues(form),
				Data:   child.AllGenders,
			})
		}
		if errors.Cause(err) == tutor.ErrNotFound { // tutor deleted meanwhile
			api.metrics.registration(session.KindChild, resultRejected)
			sess.CompleteRegistration()
			if err = api.sessions.commit(ctx, sess); err != nil {
				return err
			}
			return ctx.Redirect(http.StatusSeeOther, "/registrar_tutor")
		}
		api.metrics.registration(session.KindChild, resultError)
		return errors.Wrap(err, "registering children")
	}

	sess.CompleteRegistration()
	if err = api.sessions.commit(ctx, sess); err != nil {
		return err
	}
	api.metrics.registration(session.KindChild, resultOK)
	api.logger.Info(fmt.Sprintf("%d children registered for tutor %d", len(children), tutorID))
	return ctx.Redirect(http.StatusSeeOther, "/saludo_chiquillo")
}

func (api *childApi) loginForm(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	p := page{Title: "Inicia sesión", Error: loginErrMessages[ctx.QueryParam("error")]}
	setPrincipal(&p, sess)
	return ctx.Render(http.StatusOK, "iniciar_sesion", p)
}

func (api *childApi) login(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}

	var data child.Credentials
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if data.PicturePassword == "" {
		data.PicturePassword = ctx.FormValue(fieldChildPicture)
	}

	if err = data.Validate(api.validate, api.translator); err != nil {
		if _, ok := core.AsValidationError(err); !ok {
			return errors.Wrap(err, "validating credentials")
		}
		api.metrics.login(session.KindChild, resultInvalid)
		return api.loginFailed(ctx, credentialsErrCode(err))
	}

	c, err := api.svc.Authenticate(ctx.Request().Context(), data.Names, data.Surnames, data.PicturePassword)
	if err != nil {
		if errors.Cause(err) == child.ErrNotFound {
			api.metrics.login(session.KindChild, resultRejected)
			return api.loginFailed(ctx, loginErrCredentials)
		}
		api.metrics.login(session.KindChild, resultError)
		api.logger.Error(fmt.Sprintf("authenticating child: %v", err), err)
		return api.loginFailed(ctx, loginErrSystem)
	}

	sess.LoginChild(session.Child{
		ChildID:  c.ID,
		TutorID:  c.TutorID,
		Names:    c.Names,
		Surnames: c.Surnames,
	})
	if err = api.sessions.commit(ctx, sess); err != nil {
		api.logger.Error(fmt.Sprintf("saving child session: %v", err), err)
		return api.loginFailed(ctx, loginErrSystem)
	}
	api.metrics.login(session.KindChild, resultOK)
	return ctx.Redirect(http.StatusSeeOther, "/saludo_chiquillo")
}

func (api *childApi) loginFailed(ctx echo.Context, code string) error {
	return ctx.Redirect(http.StatusSeeOther, "/iniciar_sesion?error="+code)
}

// credentialsErrCode reports the first problem found, in form order.
func credentialsErrCode(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyField):
		return loginErrFields
	case errors.Is(err, core.ErrBadPictureCount):
		return loginErrCount
	case errors.Is(err, core.ErrBadPictureToken):
		return loginErrAnimals
	default:
		return loginErrFields
	}
}

// logout forgets whoever is logged in and goes back home.
func (api *childApi) logout(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	if sess.Logout() {
		if err = api.sessions.commit(ctx, sess); err != nil {
			return err
		}
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}
