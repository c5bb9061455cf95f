package sessionstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/ajolotes/ajolotes/core/session"
)

const keyPrefix = "ajolotes:session:"

func key(id string) string { return keyPrefix + id }

type redisStore struct {
	client *redis.Client
}

var _ session.Store = (*redisStore)(nil)

// NewRedisStore connects to addr and pings the server.
func NewRedisStore(ctx context.Context, addr, password string) (*redisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return &redisStore{client: client}, nil
}

func (st *redisStore) Name() string { return "redis" }

func (st *redisStore) Load(ctx context.Context, id string) (*session.Session, error) {
	if !session.ValidID(id) {
		return nil, session.ErrNotFound
	}
	data, err := st.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, session.ErrNotFound
		}
		return nil, errors.Wrap(err, "redis get")
	}
	return session.Decode(data)
}

func (st *redisStore) Save(ctx context.Context, s *session.Session, ttl time.Duration) error {
	data, err := session.Encode(s)
	if err != nil {
		return err
	}
	return errors.Wrap(st.client.Set(ctx, key(s.ID()), data, ttl).Err(), "redis set")
}

func (st *redisStore) Delete(ctx context.Context, id string) error {
	return errors.Wrap(st.client.Del(ctx, key(id)).Err(), "redis del")
}

func (st *redisStore) Close() error {
	return st.client.Close()
}
