package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/child"
	"github.com/ajolotes/ajolotes/core/session"
	"github.com/ajolotes/ajolotes/core/tutor"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		TutorSvc   tutor.Service
		ChildSvc   child.Service
		Sessions   session.Store
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		sessions *sessionManager
		metrics  *metrics
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) (*Server, error) {
	renderer, err := newPageRenderer()
	if err != nil {
		return nil, errors.Wrap(err, "parsing page templates")
	}

	s := &Server{
		deps:     deps,
		app:      echo.New(),
		sessions: newSessionManager(deps.Sessions, deps.Conf.Session, deps.Logger),
		metrics:  newMetrics(deps.Sessions.Name()),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.app.Renderer = renderer
	s.setup()
	return s, nil
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.metrics.middleware)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.SignalShutdown)
	s.app.Debug = conf.Debug

	// stateless endpoints
	s.app.GET("/health", s.health)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
	s.app.GET("/favicon.ico", favicon)
	s.app.GET("/static/*", newStaticHandler(conf.Server.StaticDir))

	// session-aware endpoints
	g := s.app.Group("", s.sessions.middleware)
	registerPages(g)
	registerChildAPI(g, s.sessions, s.metrics, s.deps.ChildSvc, s.deps.Logger, s.deps.Validate, s.deps.Translator)
	registerTutorAPI(g, s.sessions, s.metrics, s.deps.TutorSvc, s.deps.ChildSvc, s.deps.Logger, s.deps.Validate, s.deps.Translator)
}

// Start listens on the configured address. Listener failures are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the process to shut down gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok", "sessions": s.deps.Sessions.Name()})
}
