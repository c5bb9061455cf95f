package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/session"
)

const (
	msgSystemError = "Ocurrió un error en el sistema. Intenta de nuevo."
	msgCheckFields = "Revisa los datos marcados."
)

type errorData struct {
	Code    int
	Message string
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that renders our errors as HTML pages.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if m, ok := origErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		case *core.ValidationError:
			code = http.StatusBadRequest
			message = origErr.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = msgSystemError

			args := []interface{}{errors.Wrap(err, http.StatusText(code))}
			if sess, sErr := getSession(ctx); sErr == nil {
				if admin, ok := sess.Admin(); ok {
					args = append(args, admin)
				}
			}
			logger.Error(http.StatusText(code), args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = renderError(ctx, code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func renderError(ctx echo.Context, code int, message string) error {
	p := page{Title: http.StatusText(code), Data: errorData{Code: code, Message: message}}
	if sess, err := getSession(ctx); err == nil {
		setPrincipal(&p, sess)
	}
	if err := ctx.Render(code, "error", p); err != nil {
		return ctx.String(code, message)
	}
	return nil
}

// setPrincipal fills the page fields describing who is logged in.
func setPrincipal(p *page, sess *session.Session) {
	if c, ok := sess.Child(); ok {
		p.ChildActive = true
		p.Child = c.Names + " " + c.Surnames
	}
}

// validationMessage is the summary shown above a form that failed validation.
func validationMessage(verr *core.ValidationError) string {
	if verr.Err != nil {
		return verr.Err.Error()
	}
	return msgCheckFields
}
