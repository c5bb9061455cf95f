package digcontainer

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/ajolotes/ajolotes/apps/api/echo"
	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/child"
	"github.com/ajolotes/ajolotes/core/session"
	"github.com/ajolotes/ajolotes/core/tutor"
	emailsvc "github.com/ajolotes/ajolotes/services/email"
	logsvc "github.com/ajolotes/ajolotes/services/logger"
	"github.com/ajolotes/ajolotes/storage/database"
	sqlxrepos "github.com/ajolotes/ajolotes/storage/database/sqlx"
	sessionstore "github.com/ajolotes/ajolotes/storage/session"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	serverParams struct {
		dig.In
		Conf       *core.Config
		Logger     core.Logger
		TutorSvc   tutor.Service
		ChildSvc   child.Service
		Sessions   session.Store
		Validate   *validator.Validate
		Translator ut.Translator
	}
)

func newZapLogger(conf *core.Config) *zap.Logger {
	return logsvc.NewZapLogger(conf.Env)
}

func newLogger(conf *core.Config, zl *zap.Logger) core.Logger {
	return logsvc.NewRollbarLogger(zl.Named("api"), conf)
}

func newDBLogger(conf *core.Config, zl *zap.Logger) core.Logger {
	return logsvc.NewRollbarLogger(zl.Named("db"), conf)
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DB) {
	setUp := func() (*sqlx.DB, error) {
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(context.Background(), db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// newValidator returns a validator with every custom tag and its Spanish translation registered.
func newValidator(conf *core.Config) (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	tutor.InitValidators(validate, translator, conf)
	child.InitValidators(validate, translator)
	return validate, translator
}

func newSessionStore(conf *core.Config, logger core.Logger) session.Store {
	return sessionstore.Open(context.Background(), conf, logger)
}

func newServer(p serverParams) (*echoapi.Server, error) {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		TutorSvc:   p.TutorSvc,
		ChildSvc:   p.ChildSvc,
		Sessions:   p.Sessions,
		Validate:   p.Validate,
		Translator: p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newZapLogger))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(sqlxrepos.NewTutorRepository, dig.As(new(tutor.Repository))))
	must(c.Provide(sqlxrepos.NewChildRepository, dig.As(new(child.Repository))))
	must(c.Provide(newValidator))
	must(c.Provide(tutor.NewService))
	must(c.Provide(child.NewService))
	must(c.Provide(newSessionStore))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
