package echoapi

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ajolotes/ajolotes/core/session"
	"github.com/ajolotes/ajolotes/core/tutor"
)

var errNotAuthenticated = errors.New("tutor not authenticated")

func adminFromTutor(t tutor.Tutor) session.Admin {
	return session.Admin{
		TutorID:  t.ID,
		Names:    t.Names,
		Surnames: t.Surnames,
		Role:     t.Role,
		Email:    t.Email,
	}
}

// adminIdentity resolves the tutor looking at their profile.
// A recovery token in the query string takes precedence over the session and re-establishes it;
// a tutor_id that disagrees with the token is rejected.
// It returns errNotAuthenticated when neither identifies an existing tutor.
func adminIdentity(ctx echo.Context, sess *session.Session, svc tutor.Service) (tutor.Tutor, bool, error) {
	reqCtx := ctx.Request().Context()

	if token := ctx.QueryParam("token"); token != "" {
		id, err := svc.VerifyRecoveryToken(token)
		if err != nil {
			return tutor.Tutor{}, false, errNotAuthenticated
		}
		if qID := ctx.QueryParam("tutor_id"); qID != "" {
			if n, err := strconv.ParseInt(qID, 10, 64); err != nil || n != id {
				return tutor.Tutor{}, false, errNotAuthenticated
			}
		}
		t, err := getTutor(reqCtx, svc, id)
		if err != nil {
			return tutor.Tutor{}, false, err
		}
		sess.LoginAdmin(adminFromTutor(t))
		return t, true, nil
	}

	admin, ok := sess.Admin()
	if !ok {
		return tutor.Tutor{}, false, errNotAuthenticated
	}
	t, err := getTutor(reqCtx, svc, admin.TutorID)
	return t, false, err
}

func getTutor(ctx context.Context, svc tutor.Service, id int64) (tutor.Tutor, error) {
	t, err := svc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == tutor.ErrNotFound {
			return tutor.Tutor{}, errNotAuthenticated
		}
		return tutor.Tutor{}, errors.Wrap(err, "finding tutor by ID")
	}
	return t, nil
}
