package main

import (
	"context"
	"expvar"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/ajolotes/ajolotes/apps/api/echo"
	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/session"
)

const sessionSweepInterval = time.Hour

// sweeper is implemented by session stores that keep expired records around.
type sweeper interface {
	Cleanup() (int, error)
}

type app struct {
	conf     *core.Config
	logger   core.Logger
	db       *sqlx.DB
	sessions session.Store
	server   *echoapi.Server
}

func main() {
	wiring := flag.String("di", "dig", "how dependencies are wired: dig | manual")
	flag.Parse()

	switch *wiring {
	case "manual":
		startManual()
	default:
		startWithDig()
	}
}

func (a app) run() {
	conf, logger := a.conf, a.logger

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	if err := core.ParseEmailTemplates(); err != nil {
		logger.Fatal(err.Error(), err)
	}

	defer func() {
		if err := a.db.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()
	defer func() {
		if c, ok := a.sessions.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Error(fmt.Sprintf("closing %s session store: %v", a.sessions.Name(), err), err)
			}
		}
	}()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("sessions").Set(a.sessions.Name())

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Sweep expired sessions

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if sw, ok := a.sessions.(sweeper); ok {
		go a.sweepSessions(ctx, sw)
	}

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("API listening on %s (sessions: %s)", conf.Server.Address, a.sessions.Name()))
	go a.server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err := <-a.server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-a.server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shut down and shed load
		if err := a.server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = a.server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func (a app) sweepSessions(ctx context.Context, sw sweeper) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sw.Cleanup()
			if err != nil {
				a.logger.Warn(fmt.Sprintf("sweeping sessions: %v", err), err)
				continue
			}
			if n > 0 {
				a.logger.Debug(fmt.Sprintf("swept %d expired sessions", n))
			}
		}
	}
}
