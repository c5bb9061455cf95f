package echoapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/child"
	"github.com/ajolotes/ajolotes/core/session"
	"github.com/ajolotes/ajolotes/core/tutor"
)

const (
	msgAdminFields      = "Por favor ingresa tu correo y contraseña."
	msgAdminEmail       = "Formato de correo inválido."
	msgAdminCredentials = "Correo o contraseña incorrectos."
)

type (
	tutorApi struct {
		svc        tutor.Service
		childSvc   child.Service
		sessions   *sessionManager
		metrics    *metrics
		logger     core.Logger
		validate   *validator.Validate
		translator ut.Translator
	}

	profileData struct {
		Tutor    tutor.Tutor
		Children []child.Child
	}
)

func registerTutorAPI(
	g *echo.Group,
	sessions *sessionManager,
	m *metrics,
	svc tutor.Service,
	childSvc child.Service,
	logger core.Logger,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := tutorApi{
		svc:        svc,
		childSvc:   childSvc,
		sessions:   sessions,
		metrics:    m,
		logger:     logger,
		validate:   validate,
		translator: translator,
	}

	g.GET("/registrar_tutor", api.registrationForm)
	g.POST("/registrar_tutor", api.register)
	g.GET("/inicio_administrador", api.loginForm)
	g.POST("/inicio_administrador", api.login)
	g.GET("/perfil_admin", api.profile)

	ag := g.Group("/editar_perfil", adminMiddleware)
	ag.GET("", api.editForm)
	ag.POST("", api.update)
}

// Handlers

func (api *tutorApi) registrationForm(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "registrar_tutor", page{Title: "Registro de tutor", Data: tutor.Roles})
}

func (api *tutorApi) register(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}

	var data tutor.NewTutor
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTutor")
	}

	t, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		if verr, ok := core.AsValidationError(err); ok {
			api.metrics.registration(session.KindAdmin, resultInvalid)
			form, _ := ctx.FormParams()
			return ctx.Render(http.StatusBadRequest, "registrar_tutor", page{
				Title:  "Registro de tutor",
				Error:  validationMessage(verr),
				Errors: verr.FieldMap(),
				Form:   formValues(form, "password"),
				Data:   tutor.Roles,
			})
		}
		api.metrics.registration(session.KindAdmin, resultError)
		return errors.Wrap(err, "registering tutor")
	}

	sess.BeginRegistration(t.ID)
	if err = api.sessions.commit(ctx, sess); err != nil {
		return err
	}
	api.metrics.registration(session.KindAdmin, resultOK)
	api.logger.Info(fmt.Sprintf("tutor %d registered as %s", t.ID, t.Role))
	return ctx.Redirect(http.StatusSeeOther, "/registrar_chiquillo")
}

func (api *tutorApi) loginForm(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "inicio_administrador", page{Title: "Inicio de administrador"})
}

func (api *tutorApi) login(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}

	var data AdminLoginRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminLoginRequest")
	}
	if err = data.Validate(api.validate, api.translator); err != nil {
		if _, ok := core.AsValidationError(err); !ok {
			return errors.Wrap(err, "validating AdminLoginRequest")
		}
		api.metrics.login(session.KindAdmin, resultInvalid)
		msg := msgAdminFields
		if errors.Is(err, core.ErrBadEmailFormat) && !errors.Is(err, core.ErrEmptyField) {
			msg = msgAdminEmail
		}
		return api.loginFailed(ctx, http.StatusBadRequest, msg, data.Email)
	}

	t, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == tutor.ErrNotFound {
			api.metrics.login(session.KindAdmin, resultRejected)
			return api.loginFailed(ctx, http.StatusUnauthorized, msgAdminCredentials, data.Email)
		}
		api.metrics.login(session.KindAdmin, resultError)
		api.logger.Error(fmt.Sprintf("authenticating tutor: %v", err), err)
		return api.loginFailed(ctx, http.StatusInternalServerError, msgSystemError, data.Email)
	}

	token, err := api.svc.MakeRecoveryToken(t)
	if err != nil {
		return errors.Wrap(err, "making recovery token")
	}
	sess.LoginAdmin(adminFromTutor(t))
	if err = api.sessions.commit(ctx, sess); err != nil {
		return err
	}
	api.metrics.login(session.KindAdmin, resultOK)

	q := url.Values{}
	q.Set("tutor_id", strconv.FormatInt(t.ID, 10))
	q.Set("token", token)
	return ctx.Redirect(http.StatusSeeOther, "/perfil_admin?"+q.Encode())
}

func (api *tutorApi) loginFailed(ctx echo.Context, code int, msg, email string) error {
	return ctx.Render(code, "inicio_administrador", page{
		Title: "Inicio de administrador",
		Error: msg,
		Form:  map[string]string{"correo": email},
	})
}

// profile shows the tutor and their children.
func (api *tutorApi) profile(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}

	t, fromToken, err := adminIdentity(ctx, sess, api.svc)
	if err != nil {
		if errors.Cause(err) != errNotAuthenticated {
			return err
		}
		if sess.Logout() {
			if err = api.sessions.commit(ctx, sess); err != nil {
				return err
			}
		}
		return ctx.Redirect(http.StatusSeeOther, "/inicio_administrador")
	}
	if fromToken {
		if err = api.sessions.commit(ctx, sess); err != nil {
			return err
		}
	}

	children, err := api.childSvc.QueryByTutor(ctx.Request().Context(), t.ID)
	if err != nil {
		return errors.Wrap(err, "querying children")
	}
	if children == nil {
		children = []child.Child{}
	}
	return ctx.Render(http.StatusOK, "perfil_admin", page{
		Title: "Perfil de " + t.FullName(),
		Data:  profileData{Tutor: t, Children: children},
	})
}

func (api *tutorApi) editForm(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	t, _, err := adminIdentity(ctx, sess, api.svc)
	if err != nil {
		return api.lostTutor(ctx, sess, err)
	}
	return ctx.Render(http.StatusOK, "editar_perfil", page{
		Title: "Editar perfil",
		Form:  tutorForm(t),
		Data:  tutor.Roles,
	})
}

func (api *tutorApi) update(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	admin, _ := sess.Admin() // checked by adminMiddleware

	var data tutor.UpdateTutor
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTutor")
	}

	t, err := api.svc.Update(ctx.Request().Context(), admin.TutorID, data)
	if err != nil {
		if verr, ok := core.AsValidationError(err); ok {
			form, _ := ctx.FormParams()
			return ctx.Render(http.StatusBadRequest, "editar_perfil", page{
				Title:  "Editar perfil",
				Error:  validationMessage(verr),
				Errors: verr.FieldMap(),
				Form:   formValues(form, "password"),
				Data:   tutor.Roles,
			})
		}
		if errors.Cause(err) == tutor.ErrNotFound {
			return api.lostTutor(ctx, sess, errNotAuthenticated)
		}
		return errors.Wrap(err, "updating tutor")
	}

	sess.LoginAdmin(adminFromTutor(t))
	if err = api.sessions.commit(ctx, sess); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, "/perfil_admin")
}

// lostTutor logs out an admin whose tutor no longer exists.
func (api *tutorApi) lostTutor(ctx echo.Context, sess *session.Session, err error) error {
	if errors.Cause(err) != errNotAuthenticated {
		return err
	}
	sess.Logout()
	if err = api.sessions.commit(ctx, sess); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, "/inicio_administrador")
}

func tutorForm(t tutor.Tutor) map[string]string {
	return map[string]string{
		"nombres":   t.Names,
		"apellidos": t.Surnames,
		"correo":    t.Email,
		"rol":       t.Role,
	}
}
