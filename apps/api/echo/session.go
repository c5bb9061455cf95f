package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/session"
)

const contextSessionKey = "session"

var errSessionNotInCtx = errors.New("session not found in echo.Context")

// sessionManager loads the visitor's session before the handler runs and persists it on commit.
type sessionManager struct {
	store  session.Store
	conf   core.SessionConfig
	logger core.Logger
}

func newSessionManager(store session.Store, conf core.SessionConfig, logger core.Logger) *sessionManager {
	return &sessionManager{store: store, conf: conf, logger: logger}
}

func (sm *sessionManager) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctx.Set(contextSessionKey, sm.load(ctx))
		return next(ctx)
	}
}

// load returns the session named by the cookie, or a new anonymous one.
func (sm *sessionManager) load(ctx echo.Context) *session.Session {
	if cookie, err := ctx.Cookie(sm.conf.CookieName); err == nil && session.ValidID(cookie.Value) {
		sess, err := sm.store.Load(ctx.Request().Context(), cookie.Value)
		if err == nil {
			return sess
		}
		if errors.Cause(err) != session.ErrNotFound {
			sm.logger.Warn(fmt.Sprintf("loading session from %s store: %v", sm.store.Name(), err), err)
		}
	}
	return session.New(sm.conf.MaxAge)
}

// commit saves sess, drops the record it replaced and refreshes the cookie.
func (sm *sessionManager) commit(ctx echo.Context, sess *session.Session) error {
	reqCtx := ctx.Request().Context()

	sess.Touch(sm.conf.MaxAge)
	if err := sm.store.Save(reqCtx, sess, sm.conf.MaxAge); err != nil {
		return errors.Wrap(err, "saving session")
	}
	if prev := sess.PreviousID(); prev != "" {
		if err := sm.store.Delete(reqCtx, prev); err != nil {
			sm.logger.Warn(fmt.Sprintf("deleting rotated session: %v", err), err)
		}
	}
	sess.Saved()

	ctx.SetCookie(&http.Cookie{
		Name:     sm.conf.CookieName,
		Value:    sess.ID(),
		Path:     "/",
		MaxAge:   int(sm.conf.MaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func getSession(ctx echo.Context) (*session.Session, error) {
	if sess, ok := ctx.Get(contextSessionKey).(*session.Session); ok {
		return sess, nil
	}
	return nil, errSessionNotInCtx
}
