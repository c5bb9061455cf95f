package tests

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	. "github.com/ajolotes/ajolotes/apps/api/echo"
	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/child"
	"github.com/ajolotes/ajolotes/core/session"
	"github.com/ajolotes/ajolotes/core/tutor"
	"github.com/ajolotes/ajolotes/services/email"
	"github.com/ajolotes/ajolotes/services/logger"
	"github.com/ajolotes/ajolotes/storage/database/sqlx"
	"github.com/ajolotes/ajolotes/tests"
)

const cookieName = "ajolotes_session"

type env struct {
	conf      *core.Config
	db        *sqlx.DB
	app       *Server
	store     *session.MemoryStore
	tutorRepo tutor.Repository
	childRepo child.Repository
	tutorSvc  tutor.Service
}

// setup builds a Server backed by a fresh SQLite database and an in-memory session store.
func setup(t *testing.T) *env {
	t.Helper()

	conf := testutil.NewConfig(t)
	staticDir, err := filepath.Abs(filepath.Join("..", "..", "..", "..", "static"))
	if err != nil {
		t.Fatalf("filepath.Abs(): %v", err)
	}
	conf.Server.StaticDir = staticDir
	db := testutil.OpenDB(t, conf)
	validate, translator := testutil.NewValidator(conf)

	tutorRepo := sqlxrepos.NewTutorRepository(db)
	childRepo := sqlxrepos.NewChildRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	emailsvc.ResetSentMessages()

	e := &env{
		conf:      conf,
		db:        db,
		store:     session.NewMemoryStore(),
		tutorRepo: tutorRepo,
		childRepo: childRepo,
		tutorSvc:  tutor.NewService(tutorRepo, mailSvc, conf, validate, translator),
	}

	app, err := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logsvc.NewRollbarLogger(zap.NewNop(), conf),
		TutorSvc:   e.tutorSvc,
		ChildSvc:   child.NewService(db, childRepo, validate, translator),
		Sessions:   e.store,
		Validate:   validate,
		Translator: translator,
	})
	if err != nil {
		t.Fatalf("NewServer(): %v", err)
	}
	e.app = app
	return e
}

// client is a browser stand-in: it keeps the session cookie between requests.
type client struct {
	t      *testing.T
	app    http.Handler
	cookie *http.Cookie
}

func (e *env) newClient(t *testing.T) *client {
	return &client{t: t, app: e.app}
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, path, nil)
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, path, form)
}

func (c *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rec := httptest.NewRecorder()
	c.app.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookieName {
			c.cookie = ck
		}
	}
	return rec
}

// sessionID is the id carried by the client's cookie, if any.
func (c *client) sessionID() string {
	if c.cookie == nil {
		return ""
	}
	return c.cookie.Value
}

type httpTest struct {
	name         string
	method       string
	path         string
	form         url.Values
	wantCode     int
	wantLocation string
	wantBody     []string
}

func checkResponse(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code)
	if tt.wantLocation != "" {
		assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
	}
	for _, s := range tt.wantBody {
		assert.Contains(t, rec.Body.String(), s)
	}
}

func tutorForm(names, surnames, email, pwd, role string) url.Values {
	return url.Values{
		"nombres":   {names},
		"apellidos": {surnames},
		"correo":    {email},
		"password":  {pwd},
		"rol":       {role},
	}
}

func childLoginForm(names, surnames, picturePwd string) url.Values {
	return url.Values{
		"nombre":                             {names},
		"primer_apellido-y-segundo-apellido": {surnames},
		"password_animales":                  {picturePwd},
	}
}
