package logsvc

import (
	"strconv"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/session"
	"github.com/ajolotes/ajolotes/core/tutor"
)

// RollbarLogger reports to rollbar and mirrors every entry to zap.
type RollbarLogger struct {
	zl *zap.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(zl *zap.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)
	return &RollbarLogger{zl: zl.WithOptions(zap.AddCallerSkip(1))}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

func (l RollbarLogger) Sync() error {
	rollbar.Wait()
	return l.zl.Sync()
}

// expected fmt: msg | error, map[string]interface{}, tutor.Tutor | session.Admin
func (l RollbarLogger) prepare(msg string, args []interface{}) (rbArgs []interface{}, zapArgs []interface{}) {
	var personSet bool
	rbArgs = make([]interface{}, 0, len(args)+1)
	rbArgs = append(rbArgs, msg)
	zapArgs = make([]interface{}, 0, len(args))
	setPerson := func(id int64, name, email string) {
		if !personSet { // only set one person
			rollbar.SetPerson(strconv.FormatInt(id, 10), name, email)
			zapArgs = append(zapArgs, zap.Int64("tutor_id", id))
			personSet = true
		}
	}
	for _, arg := range args {
		switch a := arg.(type) {
		case tutor.Tutor:
			setPerson(a.ID, a.FullName(), a.Email)
		case *tutor.Tutor:
			setPerson(a.ID, a.FullName(), a.Email)
		case session.Admin:
			setPerson(a.TutorID, a.Names+" "+a.Surnames, a.Email)
		default:
			rbArgs = append(rbArgs, arg)
			zapArgs = append(zapArgs, arg)
		}
	}
	if !personSet {
		rollbar.ClearPerson()
	}
	return rbArgs, zapArgs
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rbArgs, zapArgs := l.prepare(msg, args)
	rollbar.Debug(rbArgs...)
	l.zl.Debug(msg, fields(zapArgs)...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rbArgs, zapArgs := l.prepare(msg, args)
	rollbar.Info(rbArgs...)
	l.zl.Info(msg, fields(zapArgs)...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rbArgs, zapArgs := l.prepare(msg, args)
	rollbar.Warning(rbArgs...)
	l.zl.Warn(msg, fields(zapArgs)...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rbArgs, zapArgs := l.prepare(msg, args)
	rollbar.Error(rbArgs...)
	l.zl.Error(msg, fields(zapArgs)...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rbArgs, zapArgs := l.prepare(msg, args)
	rollbar.Critical(rbArgs...)
	rollbar.Wait()
	l.zl.Fatal(msg, fields(zapArgs)...)
}
