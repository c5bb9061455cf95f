package main

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/ajolotes/ajolotes/apps/api/echo"
	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/child"
	"github.com/ajolotes/ajolotes/core/tutor"
	emailsvc "github.com/ajolotes/ajolotes/services/email"
	logsvc "github.com/ajolotes/ajolotes/services/logger"
	"github.com/ajolotes/ajolotes/storage/database"
	sqlxrepos "github.com/ajolotes/ajolotes/storage/database/sqlx"
	sessionstore "github.com/ajolotes/ajolotes/storage/session"
)

func startManual() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	zl := logsvc.NewZapLogger(conf.Env)
	defer func() { _ = zl.Sync() }()
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	dbLogger := logsvc.NewRollbarLogger(zl.Named("db"), conf)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	// set up validation
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	tutor.InitValidators(validate, translator, conf)
	child.InitValidators(validate, translator)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	tutorSvc := tutor.NewService(sqlxrepos.NewTutorRepository(db), mailSvc, conf, validate, translator)
	childSvc := child.NewService(db, sqlxrepos.NewChildRepository(db), validate, translator)
	sessions := sessionstore.Open(context.Background(), conf, logger)

	server, err := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		TutorSvc:   tutorSvc,
		ChildSvc:   childSvc,
		Sessions:   sessions,
		Validate:   validate,
		Translator: translator,
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up server: %v", err), err)
	}

	app{
		conf:     conf,
		logger:   logger,
		db:       db,
		sessions: sessions,
		server:   server,
	}.run()
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
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
