package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/child"
	"github.com/ajolotes/ajolotes/core/tutor"
	logsvc "github.com/ajolotes/ajolotes/services/logger"
	"github.com/ajolotes/ajolotes/storage/database"
	sqlxrepos "github.com/ajolotes/ajolotes/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	zl := logsvc.NewZapLogger(conf.Env).Named("admin")
	logger := logsvc.NewRollbarLogger(zl, conf)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	tutor.InitValidators(validate, translator, conf)
	child.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:       db,
		tutorSvc: tutor.NewService(sqlxrepos.NewTutorRepository(db), nil /* no welcome mail */, conf, validate, translator),
		logger:   logger,
	}
	err = cli.run(os.Args)
	if err != nil && err != errHelp {
		logger.Error(fmt.Sprintf("error: %v", err), err)
	}

	_ = db.Close()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
