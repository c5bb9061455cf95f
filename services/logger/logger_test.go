package logsvc

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/session"
	"github.com/ajolotes/ajolotes/core/tutor"
)

func TestFields(t *testing.T) {
	err := errors.New("boom")
	flds := fields([]interface{}{
		err,
		map[string]interface{}{"path": "/perfil_admin"},
		zap.Int("status", 500),
		42,
		"x",
	})
	assert.Equal(t, []zap.Field{
		zap.Error(err),
		zap.Any("path", "/perfil_admin"),
		zap.Int("status", 500),
		zap.Any("arg3", 42),
		zap.Any("arg4", "x"),
	}, flds)
}

func TestRollbarLogger(t *testing.T) {
	conf := core.NewTestConfig(t.TempDir())
	rosa := tutor.Tutor{ID: 7, Names: "Rosa", Surnames: "López", Email: "rosa@mail.com"}

	tests := []struct {
		name       string
		log        func(l *RollbarLogger)
		wantLevel  zapcore.Level
		wantFields map[string]interface{}
		wantKeys   []string // checked instead of wantFields when set
	}{
		{
			name:       "plain",
			log:        func(l *RollbarLogger) { l.Info("servidor iniciado") },
			wantLevel:  zapcore.InfoLevel,
			wantFields: map[string]interface{}{},
		},
		{
			name:       "tutor becomes tutor_id",
			log:        func(l *RollbarLogger) { l.Warn("algo raro", rosa, &rosa) },
			wantLevel:  zapcore.WarnLevel,
			wantFields: map[string]interface{}{"tutor_id": int64(7)},
		},
		{
			name: "admin and error",
			log: func(l *RollbarLogger) {
				l.Error("falló", errors.New("boom"), session.Admin{TutorID: 3, Email: "a@b.c"})
			},
			wantLevel:  zapcore.ErrorLevel,
			wantFields: map[string]interface{}{"tutor_id": int64(3), "error": "boom"},
		},
		{
			name: "stack traces go to errorVerbose",
			log: func(l *RollbarLogger) {
				l.Error("falló", pkgerrors.New("boom"))
			},
			wantLevel: zapcore.ErrorLevel,
			wantKeys:  []string{"error", "errorVerbose"},
		},
		{
			name:       "extra fields",
			log:        func(l *RollbarLogger) { l.Debug("detalle", map[string]interface{}{"id": "x"}) },
			wantLevel:  zapcore.DebugLevel,
			wantFields: map[string]interface{}{"id": "x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, logs := observer.New(zapcore.DebugLevel)
			logger := NewRollbarLogger(zap.New(obs), conf)
			tt.log(logger)

			entries := logs.AllUntimed()
			if !assert.Len(t, entries, 1) {
				return
			}
			assert.Equal(t, tt.wantLevel, entries[0].Level)
			ctxMap := entries[0].ContextMap()
			if tt.wantKeys != nil {
				keys := make([]string, 0, len(ctxMap))
				for k := range ctxMap {
					keys = append(keys, k)
				}
				assert.ElementsMatch(t, tt.wantKeys, keys)
				return
			}
			assert.Equal(t, tt.wantFields, ctxMap)
		})
	}
}

func TestNewZapLogger(t *testing.T) {
	for _, env := range []string{"DEV", "PROD"} {
		l := NewZapLogger(env)
		assert.NotNil(t, l, env)
		assert.Equal(t, env == "PROD", !l.Core().Enabled(zapcore.DebugLevel), env)
	}
}
