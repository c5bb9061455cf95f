package main

import (
	"log"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	digcontainer "github.com/ajolotes/ajolotes/apps/api/di/dig"
	echoapi "github.com/ajolotes/ajolotes/apps/api/echo"
	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/session"
)

func startWithDig() {
	c := digcontainer.New()

	must(c.Invoke(func(
		conf *core.Config,
		zl *zap.Logger,
		apiLogger core.Logger,
		db *sqlx.DB,
		sessions session.Store,
		server *echoapi.Server,
	) {
		defer func() { _ = zl.Sync() }()

		app{
			conf:     conf,
			logger:   apiLogger,
			db:       db,
			sessions: sessions,
			server:   server,
		}.run()
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
