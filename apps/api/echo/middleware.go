package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// adminMiddleware sends visitors without an admin session to the tutor login.
func adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sess, err := getSession(ctx)
		if err != nil {
			return errors.Wrap(err, "getting session")
		}
		if _, ok := sess.Admin(); ok {
			return next(ctx)
		}
		return ctx.Redirect(http.StatusSeeOther, "/inicio_administrador")
	}
}
