// Package sessionstore provides the durable session.Store backends.
package sessionstore

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/ajolotes/ajolotes/core"
	"github.com/ajolotes/ajolotes/core/session"
)

// Backends
const (
	BackendMemory = "memory"
	BackendDisk   = "disk"
	BackendRedis  = "redis"
	BackendValkey = "valkey"
)

// Open builds the configured session backend.
// When the backend cannot be created it logs session.ErrUnavailable and falls back to memory.
func Open(ctx context.Context, conf *core.Config, logger core.Logger) session.Store {
	st, err := open(ctx, conf.Session)
	if err != nil {
		err = errors.Wrap(session.ErrUnavailable, err.Error())
		logger.Warn(fmt.Sprintf("session backend %q: %v; using in-memory sessions", conf.Session.Backend, err), err)
		return session.NewMemoryStore()
	}
	return st
}

func open(ctx context.Context, conf core.SessionConfig) (session.Store, error) {
	switch conf.Backend {
	case BackendMemory:
		return session.NewMemoryStore(), nil
	case BackendDisk, "":
		return NewDiskStore(conf.Dir)
	case BackendRedis:
		if conf.RedisAddr == "" {
			return nil, errors.New("session.redisAddr is not set")
		}
		return NewRedisStore(ctx, conf.RedisAddr, conf.RedisPassword)
	case BackendValkey:
		if conf.ValkeyAddr == "" {
			return nil, errors.New("session.valkeyAddr is not set")
		}
		return NewValkeyStore(ctx, conf.ValkeyAddr)
	default:
		return nil, errors.Errorf("unknown session backend %q", conf.Backend)
	}
}
